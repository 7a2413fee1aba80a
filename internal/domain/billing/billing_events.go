package billing

import (
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePayment = "Payment"
	AggregateTypeRefund  = "Refund"
)

// Event type constants
const (
	EventTypePaymentCompleted = "PaymentCompleted"
	EventTypePaymentFailed    = "PaymentFailed"
	EventTypeRefundProcessed  = "RefundProcessed"
	EventTypeRefundRejected   = "RefundRejected"
)

// PaymentCompletedEvent is published when a gateway charge succeeds
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	PaymentID            uuid.UUID       `json:"payment_id"`
	OrderID              uuid.UUID       `json:"order_id"`
	CustomerID           uuid.UUID       `json:"customer_id"`
	Amount               decimal.Decimal `json:"amount"`
	Method               Method          `json:"method"`
	GatewayTransactionID string          `json:"gateway_transaction_id"`
}

// NewPaymentCompletedEvent creates a new PaymentCompletedEvent
func NewPaymentCompletedEvent(p *Payment) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(EventTypePaymentCompleted, AggregateTypePayment, p.ID),
		PaymentID:            p.ID,
		OrderID:              p.OrderID,
		CustomerID:           p.CustomerID,
		Amount:               p.Amount,
		Method:               p.Method,
		GatewayTransactionID: p.GatewayTransactionID,
	}
}

// PaymentFailedEvent is published when a gateway charge is declined
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	OrderID       uuid.UUID       `json:"order_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	FailureReason string          `json:"failure_reason,omitempty"`
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent
func NewPaymentFailedEvent(p *Payment) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentFailed, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		FailureReason:   p.FailureReason,
	}
}

// RefundProcessedEvent is published when an admin approves a refund
type RefundProcessedEvent struct {
	shared.BaseDomainEvent
	RefundID   uuid.UUID       `json:"refund_id"`
	OrderID    uuid.UUID       `json:"order_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Policy     Policy          `json:"policy"`
}

// NewRefundProcessedEvent creates a new RefundProcessedEvent
func NewRefundProcessedEvent(r *Refund) *RefundProcessedEvent {
	return &RefundProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundProcessed, AggregateTypeRefund, r.ID),
		RefundID:        r.ID,
		OrderID:         r.OrderID,
		CustomerID:      r.CustomerID,
		Amount:          r.Amount,
		Policy:          r.Policy,
	}
}

// RefundRejectedEvent is published when an admin declines a refund
type RefundRejectedEvent struct {
	shared.BaseDomainEvent
	RefundID   uuid.UUID `json:"refund_id"`
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Note       string    `json:"note,omitempty"`
}

// NewRefundRejectedEvent creates a new RefundRejectedEvent
func NewRefundRejectedEvent(r *Refund) *RefundRejectedEvent {
	return &RefundRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundRejected, AggregateTypeRefund, r.ID),
		RefundID:        r.ID,
		OrderID:         r.OrderID,
		CustomerID:      r.CustomerID,
		Note:            r.Note,
	}
}
