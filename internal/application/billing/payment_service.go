package billing

import (
	"context"
	"errors"

	"github.com/epharmacy/backend/internal/domain/billing"
	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService collects payments through the gateway and confirms orders
type PaymentService struct {
	paymentRepo billing.PaymentRepository
	orderRepo   order.Repository
	gateway     billing.PaymentGateway
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	orderRepo order.Repository,
	gateway billing.PaymentGateway,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		gateway:     gateway,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Pay charges the order total; a successful charge confirms the order
// COD orders are confirmed immediately and collected at delivery
func (s *PaymentService) Pay(ctx context.Context, customerID uuid.UUID, req *PayRequest) (*PaymentResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, shared.ErrForbidden
	}
	if o.Status != order.StatusPending {
		return nil, shared.NewDomainError("ORDER_NOT_PENDING", "Order is not awaiting payment")
	}

	if existing, err := s.paymentRepo.FindCompletedByOrder(ctx, req.OrderID); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_PAID", "Order already has a completed payment")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	method := billing.Method(req.Method)
	payment, err := billing.NewPayment(o.ID, customerID, o.TotalAmount, method)
	if err != nil {
		return nil, err
	}

	if method == billing.MethodCOD {
		return s.confirmCOD(ctx, payment, o)
	}

	result, err := s.gateway.Charge(ctx, billing.ChargeRequest{
		OrderID:    o.ID,
		CustomerID: customerID,
		Amount:     o.TotalAmount,
		Method:     method,
	})
	if err != nil {
		s.logger.Error("payment gateway unreachable",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("GATEWAY_ERROR", "Payment could not be processed")
	}

	if result.Approved {
		if err := payment.Complete(result.TransactionID); err != nil {
			return nil, err
		}
	} else {
		if err := payment.Fail(result.FailureReason); err != nil {
			return nil, err
		}
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	if payment.IsCompleted() {
		if err := o.Confirm(); err != nil {
			return nil, err
		}
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return nil, err
		}
		s.publishOrderEvents(ctx, o)
	}

	s.publishEvents(ctx, payment)

	s.logger.Info("payment attempt recorded",
		zap.String("order_id", o.ID.String()),
		zap.String("status", string(payment.Status)))

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// confirmCOD records a pending COD payment and confirms the order
// The payment completes when the order is delivered
func (s *PaymentService) confirmCOD(ctx context.Context, payment *billing.Payment, o *order.Order) (*PaymentResponse, error) {
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	if err := o.Confirm(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishOrderEvents(ctx, o)

	s.logger.Info("cod order confirmed", zap.String("order_id", o.ID.String()))

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// CompleteCODPayment settles the COD payment when the order is delivered
func (s *PaymentService) CompleteCODPayment(ctx context.Context, orderID uuid.UUID) error {
	payments, err := s.paymentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	for i := range payments {
		p := &payments[i]
		if p.Method == billing.MethodCOD && p.Status == billing.PaymentStatusPending {
			if err := p.Complete("COD-" + orderID.String()[:8]); err != nil {
				return err
			}
			if err := s.paymentRepo.Save(ctx, p); err != nil {
				return err
			}
			s.publishEvents(ctx, p)
			return nil
		}
	}
	return shared.ErrNotFound
}

// ListOwn lists the customer's payments
func (s *PaymentService) ListOwn(ctx context.Context, customerID uuid.UUID, filter *ListFilter) (*shared.Paginated[PaymentResponse], error) {
	domainFilter := buildFilter(filter)
	payments, total, err := s.paymentRepo.FindByCustomer(ctx, customerID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToPaymentResponses(payments), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// ListForOrder lists payment attempts for an order the caller may see
func (s *PaymentService) ListForOrder(ctx context.Context, callerID uuid.UUID, isAdmin bool, orderID uuid.UUID) ([]PaymentResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.CustomerID != callerID {
		return nil, shared.ErrForbidden
	}

	payments, err := s.paymentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

func (s *PaymentService) publishEvents(ctx context.Context, payment *billing.Payment) {
	events := payment.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish payment events",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err))
	}
	payment.ClearDomainEvents()
}

func (s *PaymentService) publishOrderEvents(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events", zap.Error(err))
	}
	o.ClearDomainEvents()
}

func buildFilter(filter *ListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	return domainFilter
}
