package billing

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayRequest initiates a payment for a pending order
type PayRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Method  string    `json:"method" binding:"required,oneof=card upi netbanking cod"`
}

// RequestRefundRequest opens a refund request for a cancelled or returned order
type RequestRefundRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Reason  string    `json:"reason" binding:"required,min=1,max=500"`
}

// ProcessRefundRequest approves or rejects a pending refund
type ProcessRefundRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// ListFilter pages payment and refund listings
type ListFilter struct {
	Status   string `form:"status"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID                   uuid.UUID       `json:"id"`
	OrderID              uuid.UUID       `json:"order_id"`
	Amount               decimal.Decimal `json:"amount"`
	Method               string          `json:"method"`
	Status               string          `json:"status"`
	GatewayTransactionID string          `json:"gateway_transaction_id,omitempty"`
	FailureReason        string          `json:"failure_reason,omitempty"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// RefundResponse represents a refund in API responses
type RefundResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	PaymentID   uuid.UUID       `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Policy      string          `json:"policy"`
	Reason      string          `json:"reason"`
	Status      string          `json:"status"`
	Note        string          `json:"note,omitempty"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID,
		OrderID:              p.OrderID,
		Amount:               p.Amount,
		Method:               string(p.Method),
		Status:               string(p.Status),
		GatewayTransactionID: p.GatewayTransactionID,
		FailureReason:        p.FailureReason,
		PaidAt:               p.PaidAt,
		CreatedAt:            p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []billing.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, ToPaymentResponse(&payments[i]))
	}
	return out
}

// ToRefundResponse converts a domain Refund to RefundResponse
func ToRefundResponse(r *billing.Refund) RefundResponse {
	return RefundResponse{
		ID:          r.ID,
		OrderID:     r.OrderID,
		PaymentID:   r.PaymentID,
		Amount:      r.Amount,
		Policy:      string(r.Policy),
		Reason:      r.Reason,
		Status:      string(r.Status),
		Note:        r.Note,
		ProcessedAt: r.ProcessedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// ToRefundResponses converts a slice of refunds
func ToRefundResponses(refunds []billing.Refund) []RefundResponse {
	out := make([]RefundResponse, 0, len(refunds))
	for i := range refunds {
		out = append(out, ToRefundResponse(&refunds[i]))
	}
	return out
}
