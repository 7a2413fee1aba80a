package billing

import (
	"strings"
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Policy labels which refund rule applied
type Policy string

const (
	PolicyFull     Policy = "full"
	PolicyPartial  Policy = "partial"
	PolicyNoRefund Policy = "no_refund"
)

// RefundStatus represents the state of a refund request
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusProcessed RefundStatus = "processed"
	RefundStatusRejected  RefundStatus = "rejected"
)

// Refund represents a refund request against a paid order
// At most one refund exists per order
type Refund struct {
	shared.BaseAggregateRoot
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	PaymentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Policy      Policy          `gorm:"type:varchar(20);not null"`
	Reason      string          `gorm:"type:varchar(500);not null"`
	Status      RefundStatus    `gorm:"type:varchar(20);not null;default:'pending';index"`
	Note        string          `gorm:"type:varchar(500)"`
	ProcessedBy *uuid.UUID      `gorm:"type:uuid"`
	ProcessedAt *time.Time
}

// TableName returns the table name for GORM
func (Refund) TableName() string {
	return "refunds"
}

// NewRefund creates a pending refund request
func NewRefund(orderID, paymentID, customerID uuid.UUID, amount decimal.Decimal, policy Policy, reason string) (*Refund, error) {
	if orderID == uuid.Nil || paymentID == uuid.Nil || customerID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Refund reason cannot be empty")
	}
	if policy == PolicyNoRefund {
		return nil, shared.NewDomainError("NO_REFUND", "The refund policy does not allow a refund for this order")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}

	return &Refund{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		PaymentID:         paymentID,
		CustomerID:        customerID,
		Amount:            amount,
		Policy:            policy,
		Reason:            strings.TrimSpace(reason),
		Status:            RefundStatusPending,
	}, nil
}

// Process approves the refund and records who processed it
func (r *Refund) Process(adminID uuid.UUID, note string) error {
	if r.Status != RefundStatusPending {
		return shared.ErrInvalidState
	}

	now := time.Now()
	r.Status = RefundStatusProcessed
	r.Note = note
	r.ProcessedBy = &adminID
	r.ProcessedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewRefundProcessedEvent(r))

	return nil
}

// Reject declines the refund with a reason
func (r *Refund) Reject(adminID uuid.UUID, note string) error {
	if r.Status != RefundStatusPending {
		return shared.ErrInvalidState
	}
	if strings.TrimSpace(note) == "" {
		return shared.NewDomainError("INVALID_NOTE", "Rejection requires a note")
	}

	now := time.Now()
	r.Status = RefundStatusRejected
	r.Note = note
	r.ProcessedBy = &adminID
	r.ProcessedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewRefundRejectedEvent(r))

	return nil
}
