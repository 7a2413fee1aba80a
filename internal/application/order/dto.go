package order

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest places an order from the customer's cart
type PlaceOrderRequest struct {
	Type           string     `json:"type" binding:"required,oneof=delivery pickup"`
	AddressID      *uuid.UUID `json:"address_id"`
	PrescriptionID *uuid.UUID `json:"prescription_id"`
}

// UpdateStatusRequest moves an order along the fulfilment flow
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed processing ready out_for_delivery delivered returned"`
}

// CancelRequest cancels an order with a reason
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListFilter filters order listings
type ListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending confirmed processing ready out_for_delivery delivered cancelled returned"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ItemBatchResponse shows which batch fulfils part of a line
type ItemBatchResponse struct {
	BatchID     uuid.UUID `json:"batch_id"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int       `json:"quantity"`
}

// ItemResponse is one order line
type ItemResponse struct {
	ID                   uuid.UUID           `json:"id"`
	ProductID            uuid.UUID           `json:"product_id"`
	ProductName          string              `json:"product_name"`
	HSNCode              string              `json:"hsn_code,omitempty"`
	GSTRate              decimal.Decimal     `json:"gst_rate"`
	UnitPrice            decimal.Decimal     `json:"unit_price"`
	Quantity             int                 `json:"quantity"`
	LineSubtotal         decimal.Decimal     `json:"line_subtotal"`
	LineTax              decimal.Decimal     `json:"line_tax"`
	LineTotal            decimal.Decimal     `json:"line_total"`
	RequiresPrescription bool                `json:"requires_prescription"`
	Batches              []ItemBatchResponse `json:"batches,omitempty"`
}

// TaxDetailResponse is the GST breakup per HSN code
type TaxDetailResponse struct {
	HSNCode      string          `json:"hsn_code"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
	TaxableValue decimal.Decimal `json:"taxable_value"`
	CGST         decimal.Decimal `json:"cgst"`
	SGST         decimal.Decimal `json:"sgst"`
	TotalTax     decimal.Decimal `json:"total_tax"`
}

// Response represents an order in API responses
type Response struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	CustomerName    string              `json:"customer_name"`
	Type            string              `json:"type"`
	Status          string              `json:"status"`
	DeliveryAddress string              `json:"delivery_address,omitempty"`
	PrescriptionID  *uuid.UUID          `json:"prescription_id,omitempty"`
	Items           []ItemResponse      `json:"items"`
	TaxDetails      []TaxDetailResponse `json:"tax_details,omitempty"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	ShippingFee     decimal.Decimal     `json:"shipping_fee"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	ConfirmedAt     *time.Time          `json:"confirmed_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	ReturnedAt      *time.Time          `json:"returned_at,omitempty"`
	CancelReason    string              `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// StatsResponse is the admin order dashboard
type StatsResponse struct {
	ByStatus     []order.StatusCount `json:"by_status"`
	TotalOrders  int64               `json:"total_orders"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
}

// ToResponse converts a domain Order to Response
func ToResponse(o *order.Order) Response {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		batches := make([]ItemBatchResponse, 0, len(item.Batches))
		for _, b := range item.Batches {
			batches = append(batches, ItemBatchResponse{
				BatchID:     b.BatchID,
				BatchNumber: b.BatchNumber,
				Quantity:    b.Quantity,
			})
		}
		items = append(items, ItemResponse{
			ID:                   item.ID,
			ProductID:            item.ProductID,
			ProductName:          item.ProductName,
			HSNCode:              item.HSNCode,
			GSTRate:              item.GSTRate,
			UnitPrice:            item.UnitPrice,
			Quantity:             item.Quantity,
			LineSubtotal:         item.LineSubtotal,
			LineTax:              item.LineTax,
			LineTotal:            item.LineTotal,
			RequiresPrescription: item.RequiresPrescription,
			Batches:              batches,
		})
	}

	taxDetails := make([]TaxDetailResponse, 0, len(o.TaxDetails))
	for _, d := range o.TaxDetails {
		taxDetails = append(taxDetails, TaxDetailResponse{
			HSNCode:      d.HSNCode,
			GSTRate:      d.GSTRate,
			TaxableValue: d.TaxableValue,
			CGST:         d.CGST,
			SGST:         d.SGST,
			TotalTax:     d.TotalTax,
		})
	}

	return Response{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		Type:            string(o.Type),
		Status:          string(o.Status),
		DeliveryAddress: o.DeliveryAddress,
		PrescriptionID:  o.PrescriptionID,
		Items:           items,
		TaxDetails:      taxDetails,
		Subtotal:        o.Subtotal,
		ShippingFee:     o.ShippingFee,
		TaxAmount:       o.TaxAmount,
		TotalAmount:     o.TotalAmount,
		ConfirmedAt:     o.ConfirmedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		ReturnedAt:      o.ReturnedAt,
		CancelReason:    o.CancelReason,
		CreatedAt:       o.CreatedAt,
	}
}

// ToResponses converts a slice of orders
func ToResponses(orders []order.Order) []Response {
	out := make([]Response, 0, len(orders))
	for i := range orders {
		out = append(out, ToResponse(&orders[i]))
	}
	return out
}
