package billing

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Refund policy windows
const (
	FullRefundWindow    = time.Hour
	PartialRefundWindow = 24 * time.Hour
	ReturnRefundWindow  = 7 * 24 * time.Hour
)

// DefaultCancellationFeePercent is deducted from partial refunds
var DefaultCancellationFeePercent = decimal.NewFromInt(10)

// RefundCalculator decides the refund policy and amount for an order
type RefundCalculator struct {
	cancellationFeePercent decimal.Decimal
}

// NewRefundCalculator creates a calculator with the given cancellation fee
// A non-positive fee falls back to the default
func NewRefundCalculator(cancellationFeePercent decimal.Decimal) *RefundCalculator {
	if !cancellationFeePercent.IsPositive() {
		cancellationFeePercent = DefaultCancellationFeePercent
	}
	return &RefundCalculator{cancellationFeePercent: cancellationFeePercent}
}

// ForCancellation evaluates the policy for a cancelled order
// Within one hour of payment the refund is full; within a day it is
// partial (total minus the cancellation fee); afterwards nothing is owed
func (c *RefundCalculator) ForCancellation(total decimal.Decimal, paidAt, cancelledAt time.Time) (Policy, decimal.Decimal) {
	elapsed := cancelledAt.Sub(paidAt)
	switch {
	case elapsed < FullRefundWindow:
		return PolicyFull, total
	case elapsed < PartialRefundWindow:
		return PolicyPartial, c.partialAmount(total)
	default:
		return PolicyNoRefund, decimal.Zero
	}
}

// ForReturn evaluates the policy for a returned order
// Returns within the window get a partial refund
func (c *RefundCalculator) ForReturn(total decimal.Decimal, deliveredAt, returnedAt time.Time) (Policy, decimal.Decimal) {
	if returnedAt.Sub(deliveredAt) <= ReturnRefundWindow {
		return PolicyPartial, c.partialAmount(total)
	}
	return PolicyNoRefund, decimal.Zero
}

func (c *RefundCalculator) partialAmount(total decimal.Decimal) decimal.Decimal {
	fee := total.Mul(c.cancellationFeePercent).Div(decimal.NewFromInt(100)).Round(2)
	return total.Sub(fee)
}

// ValidateAmount guards against refunds exceeding the payment
func ValidateAmount(refund, paid decimal.Decimal) error {
	if refund.GreaterThan(paid) {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund cannot exceed the paid amount")
	}
	return nil
}
