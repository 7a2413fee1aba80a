package billing

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method represents how the customer pays
type Method string

const (
	MethodCard       Method = "card"
	MethodUPI        Method = "upi"
	MethodNetbanking Method = "netbanking"
	MethodCOD        Method = "cod"
)

// IsValid checks if the method is a supported payment method
func (m Method) IsValid() bool {
	switch m {
	case MethodCard, MethodUPI, MethodNetbanking, MethodCOD:
		return true
	}
	return false
}

// PaymentStatus represents the state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment represents a payment attempt against an order
// It is the aggregate root for payment operations
type Payment struct {
	shared.BaseAggregateRoot
	OrderID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method               Method          `gorm:"type:varchar(20);not null"`
	Status               PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	GatewayTransactionID string          `gorm:"type:varchar(100)"`
	FailureReason        string          `gorm:"type:varchar(500)"`
	PaidAt               *time.Time
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a pending payment for an order
func NewPayment(orderID, customerID uuid.UUID, amount decimal.Decimal, method Method) (*Payment, error) {
	if orderID == uuid.Nil || customerID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method must be card, upi, netbanking, or cod")
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		CustomerID:        customerID,
		Amount:            amount,
		Method:            method,
		Status:            PaymentStatusPending,
	}, nil
}

// Complete records a successful gateway charge
func (p *Payment) Complete(gatewayTransactionID string) error {
	if p.Status != PaymentStatusPending {
		return shared.ErrInvalidState
	}
	if gatewayTransactionID == "" {
		return shared.NewDomainError("INVALID_TRANSACTION", "Gateway transaction ID cannot be empty")
	}

	now := time.Now()
	p.Status = PaymentStatusCompleted
	p.GatewayTransactionID = gatewayTransactionID
	p.PaidAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentCompletedEvent(p))

	return nil
}

// Fail records a declined gateway charge
func (p *Payment) Fail(reason string) error {
	if p.Status != PaymentStatusPending {
		return shared.ErrInvalidState
	}

	p.Status = PaymentStatusFailed
	p.FailureReason = reason
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentFailedEvent(p))

	return nil
}

// MarkRefunded flags the payment after its refund is processed
func (p *Payment) MarkRefunded() error {
	if p.Status != PaymentStatusCompleted {
		return shared.ErrInvalidState
	}

	p.Status = PaymentStatusRefunded
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// IsCompleted returns true if the payment went through
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}
