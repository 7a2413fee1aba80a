package billing

import (
	"context"

	"github.com/epharmacy/backend/internal/domain/billing"
	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RefundService handles refund requests and admin processing
type RefundService struct {
	refundRepo  billing.RefundRepository
	paymentRepo billing.PaymentRepository
	orderRepo   order.Repository
	calculator  *billing.RefundCalculator
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewRefundService creates a new refund service
func NewRefundService(
	refundRepo billing.RefundRepository,
	paymentRepo billing.PaymentRepository,
	orderRepo order.Repository,
	cancellationFeePercent decimal.Decimal,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *RefundService {
	return &RefundService{
		refundRepo:  refundRepo,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		calculator:  billing.NewRefundCalculator(cancellationFeePercent),
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Request opens a refund for a cancelled or returned order
// The policy and amount follow from how and when the order ended
func (s *RefundService) Request(ctx context.Context, customerID uuid.UUID, req *RequestRefundRequest) (*RefundResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, shared.ErrForbidden
	}

	exists, err := s.refundRepo.ExistsForOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("REFUND_EXISTS", "A refund already exists for this order")
	}

	payment, err := s.paymentRepo.FindCompletedByOrder(ctx, req.OrderID)
	if err != nil {
		return nil, shared.NewDomainError("NO_COMPLETED_PAYMENT", "Only paid orders can be refunded")
	}

	var policy billing.Policy
	var amount decimal.Decimal
	switch o.Status {
	case order.StatusCancelled:
		if o.CancelledAt == nil || payment.PaidAt == nil {
			return nil, shared.ErrInvalidState
		}
		policy, amount = s.calculator.ForCancellation(payment.Amount, *payment.PaidAt, *o.CancelledAt)
	case order.StatusReturned:
		if o.ReturnedAt == nil || o.DeliveredAt == nil {
			return nil, shared.ErrInvalidState
		}
		policy, amount = s.calculator.ForReturn(payment.Amount, *o.DeliveredAt, *o.ReturnedAt)
	default:
		return nil, shared.NewDomainError("ORDER_NOT_REFUNDABLE", "Only cancelled or returned orders can be refunded")
	}

	if err := billing.ValidateAmount(amount, payment.Amount); err != nil {
		return nil, err
	}

	refund, err := billing.NewRefund(o.ID, payment.ID, customerID, amount, policy, req.Reason)
	if err != nil {
		return nil, err
	}

	if err := s.refundRepo.Save(ctx, refund); err != nil {
		return nil, err
	}

	s.logger.Info("refund requested",
		zap.String("order_id", o.ID.String()),
		zap.String("policy", string(policy)),
		zap.String("amount", amount.String()))

	resp := ToRefundResponse(refund)
	return &resp, nil
}

// Process approves a pending refund and marks the payment refunded
func (s *RefundService) Process(ctx context.Context, adminID, refundID uuid.UUID, req *ProcessRefundRequest) (*RefundResponse, error) {
	refund, err := s.refundRepo.FindByID(ctx, refundID)
	if err != nil {
		return nil, err
	}

	if err := refund.Process(adminID, req.Note); err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.FindByID(ctx, refund.PaymentID)
	if err != nil {
		return nil, err
	}
	if err := payment.MarkRefunded(); err != nil {
		return nil, err
	}

	if err := s.refundRepo.Save(ctx, refund); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, refund)

	s.logger.Info("refund processed",
		zap.String("refund_id", refundID.String()),
		zap.String("amount", refund.Amount.String()))

	resp := ToRefundResponse(refund)
	return &resp, nil
}

// Reject declines a pending refund with a note
func (s *RefundService) Reject(ctx context.Context, adminID, refundID uuid.UUID, req *ProcessRefundRequest) (*RefundResponse, error) {
	refund, err := s.refundRepo.FindByID(ctx, refundID)
	if err != nil {
		return nil, err
	}

	if err := refund.Reject(adminID, req.Note); err != nil {
		return nil, err
	}

	if err := s.refundRepo.Save(ctx, refund); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, refund)

	resp := ToRefundResponse(refund)
	return &resp, nil
}

// Get returns a refund; customers see only their own
func (s *RefundService) Get(ctx context.Context, callerID uuid.UUID, isAdmin bool, id uuid.UUID) (*RefundResponse, error) {
	refund, err := s.refundRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && refund.CustomerID != callerID {
		return nil, shared.ErrForbidden
	}

	resp := ToRefundResponse(refund)
	return &resp, nil
}

// ListOwn lists the customer's refunds
func (s *RefundService) ListOwn(ctx context.Context, customerID uuid.UUID, filter *ListFilter) (*shared.Paginated[RefundResponse], error) {
	domainFilter := buildFilter(filter)
	refunds, total, err := s.refundRepo.FindByCustomer(ctx, customerID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToRefundResponses(refunds), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// ListByStatus lists refunds for admin processing
func (s *RefundService) ListByStatus(ctx context.Context, filter *ListFilter) (*shared.Paginated[RefundResponse], error) {
	domainFilter := buildFilter(filter)

	status := billing.RefundStatusPending
	if filter.Status != "" {
		status = billing.RefundStatus(filter.Status)
	}

	refunds, total, err := s.refundRepo.FindByStatus(ctx, status, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToRefundResponses(refunds), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

func (s *RefundService) publishEvents(ctx context.Context, refund *billing.Refund) {
	events := refund.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish refund events",
			zap.String("refund_id", refund.ID.String()),
			zap.Error(err))
	}
	refund.ClearDomainEvents()
}
