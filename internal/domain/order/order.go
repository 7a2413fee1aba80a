package order

import (
	"strings"
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the fulfilment state of an order
type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusProcessing     Status = "processing"
	StatusReady          Status = "ready"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusReturned       Status = "returned"
)

// IsValid checks if the status is a valid order status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusReady,
		StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusReady
	case StatusReady:
		return target == StatusOutForDelivery || target == StatusDelivered
	case StatusOutForDelivery:
		return target == StatusDelivered
	case StatusDelivered:
		return target == StatusReturned
	case StatusCancelled, StatusReturned:
		return false
	}
	return false
}

// Type distinguishes home delivery from store pickup
type Type string

const (
	TypeDelivery Type = "delivery"
	TypePickup   Type = "pickup"
)

// DefaultShippingFee is the flat delivery charge; pickup orders pay none
var DefaultShippingFee = decimal.NewFromInt(50)

// ReturnWindowDays is how long after delivery a return is accepted
const ReturnWindowDays = 7

// ItemBatch records which stock batch fulfils part of an order line
type ItemBatch struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderItemID uuid.UUID `gorm:"type:uuid;not null;index"`
	BatchID     uuid.UUID `gorm:"type:uuid;not null;index"`
	BatchNumber string    `gorm:"type:varchar(50);not null"`
	Quantity    int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ItemBatch) TableName() string {
	return "order_item_batches"
}

// Item is one product line on an order with a price snapshot
type Item struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName          string          `gorm:"type:varchar(200);not null"`
	HSNCode              string          `gorm:"type:varchar(20)"`
	GSTRate              decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	UnitPrice            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity             int             `gorm:"not null"`
	LineSubtotal         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTax              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RequiresPrescription bool            `gorm:"not null;default:false"`
	Batches              []ItemBatch     `gorm:"foreignKey:OrderItemID"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// TaxDetail aggregates GST per HSN code for the invoice
// CGST and SGST each carry half of the GST amount
type TaxDetail struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	HSNCode      string          `gorm:"type:varchar(20);not null"`
	GSTRate      decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	TaxableValue decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CGST         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SGST         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalTax     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (TaxDetail) TableName() string {
	return "order_tax_details"
}

// BatchUse describes a batch allocation when adding an order line
type BatchUse struct {
	BatchID     uuid.UUID
	BatchNumber string
	Quantity    int
}

// Order represents a customer order aggregate root
// It manages the lifecycle from placement to delivery, cancellation, or return
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName    string          `gorm:"type:varchar(200);not null"`
	Type            Type            `gorm:"type:varchar(10);not null"`
	Status          Status          `gorm:"type:varchar(20);not null;default:'pending';index"`
	DeliveryAddress string          `gorm:"type:text"`
	PrescriptionID  *uuid.UUID      `gorm:"type:uuid"`
	Items           []Item          `gorm:"foreignKey:OrderID"`
	TaxDetails      []TaxDetail     `gorm:"foreignKey:OrderID"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ShippingFee     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ConfirmedAt     *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	ReturnedAt      *time.Time
	CancelReason    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new pending order
// Delivery orders require a delivery address snapshot
func NewOrder(orderNumber string, customerID uuid.UUID, customerName string, orderType Type, deliveryAddress string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if orderType != TypeDelivery && orderType != TypePickup {
		return nil, shared.NewDomainError("INVALID_ORDER_TYPE", "Order type must be delivery or pickup")
	}
	if orderType == TypeDelivery && strings.TrimSpace(deliveryAddress) == "" {
		return nil, shared.NewDomainError("ADDRESS_REQUIRED", "Delivery orders require a delivery address")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		Type:              orderType,
		Status:            StatusPending,
		DeliveryAddress:   strings.TrimSpace(deliveryAddress),
		Subtotal:          decimal.Zero,
		ShippingFee:       decimal.Zero,
		TaxAmount:         decimal.Zero,
		TotalAmount:       decimal.Zero,
	}, nil
}

// AddItem adds a product line with its batch allocations
// Only allowed before the order is finalised
func (o *Order) AddItem(productID uuid.UUID, productName, hsnCode string, gstRate, unitPrice decimal.Decimal, quantity int, requiresPrescription bool, batches []BatchUse) error {
	if o.Status != StatusPending {
		return shared.ErrInvalidState
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if gstRate.IsNegative() {
		return shared.NewDomainError("INVALID_GST_RATE", "GST rate cannot be negative")
	}

	allocated := 0
	for _, b := range batches {
		allocated += b.Quantity
	}
	if len(batches) > 0 && allocated != quantity {
		return shared.NewDomainError("INVALID_ALLOCATION", "Batch allocations must cover the full quantity")
	}

	now := time.Now()
	qty := decimal.NewFromInt(int64(quantity))
	lineSubtotal := unitPrice.Mul(qty).Round(2)
	lineTax := lineSubtotal.Mul(gstRate).Div(decimal.NewFromInt(100)).Round(2)

	item := Item{
		ID:                   uuid.New(),
		OrderID:              o.ID,
		ProductID:            productID,
		ProductName:          productName,
		HSNCode:              hsnCode,
		GSTRate:              gstRate,
		UnitPrice:            unitPrice,
		Quantity:             quantity,
		LineSubtotal:         lineSubtotal,
		LineTax:              lineTax,
		LineTotal:            lineSubtotal.Add(lineTax),
		RequiresPrescription: requiresPrescription,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	for _, b := range batches {
		item.Batches = append(item.Batches, ItemBatch{
			ID:          uuid.New(),
			OrderItemID: item.ID,
			BatchID:     b.BatchID,
			BatchNumber: b.BatchNumber,
			Quantity:    b.Quantity,
		})
	}

	o.Items = append(o.Items, item)

	return nil
}

// AttachPrescription links the approved prescription backing this order
func (o *Order) AttachPrescription(prescriptionID uuid.UUID) {
	o.PrescriptionID = &prescriptionID
	o.UpdatedAt = time.Now()
}

// Finalize computes totals and tax details and publishes the placement event
func (o *Order) Finalize() error {
	if o.Status != StatusPending {
		return shared.ErrInvalidState
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	if o.RequiresPrescription() && o.PrescriptionID == nil {
		return shared.ErrPrescriptionRequired
	}

	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineSubtotal)
		tax = tax.Add(item.LineTax)
	}

	o.Subtotal = subtotal
	o.TaxAmount = tax
	o.ShippingFee = DefaultShippingFee
	if o.Type == TypePickup {
		o.ShippingFee = decimal.Zero
	}
	o.TotalAmount = subtotal.Add(tax).Add(o.ShippingFee)
	o.TaxDetails = o.buildTaxDetails()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return nil
}

// buildTaxDetails groups line taxes by HSN code and splits GST into CGST/SGST
func (o *Order) buildTaxDetails() []TaxDetail {
	type bucket struct {
		rate    decimal.Decimal
		taxable decimal.Decimal
		tax     decimal.Decimal
	}
	buckets := make(map[string]*bucket)
	keys := make([]string, 0)
	for _, item := range o.Items {
		key := item.HSNCode + "@" + item.GSTRate.String()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{rate: item.GSTRate, taxable: decimal.Zero, tax: decimal.Zero}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.taxable = b.taxable.Add(item.LineSubtotal)
		b.tax = b.tax.Add(item.LineTax)
	}

	details := make([]TaxDetail, 0, len(buckets))
	for _, key := range keys {
		b := buckets[key]
		half := b.tax.Div(decimal.NewFromInt(2)).Round(2)
		details = append(details, TaxDetail{
			ID:           uuid.New(),
			OrderID:      o.ID,
			HSNCode:      strings.SplitN(key, "@", 2)[0],
			GSTRate:      b.rate,
			TaxableValue: b.taxable,
			CGST:         half,
			SGST:         b.tax.Sub(half),
			TotalTax:     b.tax,
		})
	}
	return details
}

// Confirm moves the order to confirmed after successful payment
func (o *Order) Confirm() error {
	if err := o.transition(StatusConfirmed); err != nil {
		return err
	}
	now := time.Now()
	o.ConfirmedAt = &now
	return nil
}

// StartProcessing marks the pharmacy as preparing the order
func (o *Order) StartProcessing() error {
	return o.transition(StatusProcessing)
}

// MarkReady marks the order packed and ready
func (o *Order) MarkReady() error {
	return o.transition(StatusReady)
}

// Dispatch hands the order to the courier
// Pickup orders skip this step
func (o *Order) Dispatch() error {
	if o.Type != TypeDelivery {
		return shared.NewDomainError("INVALID_ORDER_TYPE", "Pickup orders are not dispatched")
	}
	return o.transition(StatusOutForDelivery)
}

// MarkDelivered completes the order
func (o *Order) MarkDelivered() error {
	if err := o.transition(StatusDelivered); err != nil {
		return err
	}
	now := time.Now()
	o.DeliveredAt = &now
	return nil
}

// Cancel cancels the order; stock is restored by the caller
// Customers may cancel while pending or confirmed
func (o *Order) Cancel(reason string) error {
	if !o.CanCancel() {
		return shared.ErrInvalidState
	}

	oldStatus := o.Status
	now := time.Now()
	o.Status = StatusCancelled
	o.CancelReason = reason
	o.CancelledAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCancelledEvent(o, oldStatus))

	return nil
}

// Return accepts a delivered order back within the return window
func (o *Order) Return(at time.Time) error {
	if o.Status != StatusDelivered {
		return shared.ErrInvalidState
	}
	if o.DeliveredAt == nil || at.Sub(*o.DeliveredAt) > ReturnWindowDays*24*time.Hour {
		return shared.NewDomainError("RETURN_WINDOW_CLOSED", "Orders can only be returned within 7 days of delivery")
	}

	oldStatus := o.Status
	o.Status = StatusReturned
	o.ReturnedAt = &at
	o.UpdatedAt = at
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, oldStatus))

	return nil
}

func (o *Order) transition(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.ErrInvalidState
	}

	oldStatus := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, oldStatus))

	return nil
}

// CanCancel returns true while cancellation is still allowed
func (o *Order) CanCancel() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// IsTerminal returns true when no further transition is possible
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCancelled || o.Status == StatusReturned
}

// RequiresPrescription returns true if any line is a prescription product
func (o *Order) RequiresPrescription() bool {
	for _, item := range o.Items {
		if item.RequiresPrescription {
			return true
		}
	}
	return false
}

// PrescriptionProductIDs returns the product IDs of prescription lines
func (o *Order) PrescriptionProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0)
	for _, item := range o.Items {
		if item.RequiresPrescription {
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

// ItemCount returns the number of lines on the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}
