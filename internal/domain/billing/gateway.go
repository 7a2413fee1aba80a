package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeRequest describes a payment to collect through the gateway
type ChargeRequest struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Amount     decimal.Decimal
	Method     Method
}

// ChargeResult is the gateway's answer to a charge attempt
type ChargeResult struct {
	Approved      bool
	TransactionID string
	FailureReason string
}

// PaymentGateway abstracts the external payment processor
type PaymentGateway interface {
	// Charge attempts to collect the payment
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
