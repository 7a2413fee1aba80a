package billing

import (
	"context"
	"errors"

	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/epharmacy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CODSettlementHandler completes pending COD payments when orders are delivered
type CODSettlementHandler struct {
	payments *PaymentService
	logger   *zap.Logger
}

// NewCODSettlementHandler creates a new COD settlement handler
func NewCODSettlementHandler(payments *PaymentService, logger *zap.Logger) *CODSettlementHandler {
	return &CODSettlementHandler{payments: payments, logger: logger}
}

// EventTypes returns the order events this handler subscribes to
func (h *CODSettlementHandler) EventTypes() []string {
	return []string{order.EventTypeOrderStatusChanged}
}

// Handle settles the COD payment on delivery
// Prepaid orders have no pending COD payment and are skipped
func (h *CODSettlementHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*order.OrderStatusChangedEvent)
	if !ok || e.NewStatus != order.StatusDelivered {
		return nil
	}

	err := h.payments.CompleteCODPayment(ctx, e.OrderID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		h.logger.Error("cod settlement failed",
			zap.String("order_id", e.OrderID.String()),
			zap.Error(err))
		return err
	}

	h.logger.Info("cod payment settled", zap.String("order_id", e.OrderID.String()))
	return nil
}
