package notification

import (
	"context"
	"fmt"

	"github.com/epharmacy/backend/internal/domain/billing"
	domain "github.com/epharmacy/backend/internal/domain/notification"
	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/epharmacy/backend/internal/domain/prescription"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderEventsHandler turns order lifecycle events into customer notifications
type OrderEventsHandler struct {
	notificationRepo domain.Repository
	logger           *zap.Logger
}

// NewOrderEventsHandler creates a new order events handler
func NewOrderEventsHandler(notificationRepo domain.Repository, logger *zap.Logger) *OrderEventsHandler {
	return &OrderEventsHandler{notificationRepo: notificationRepo, logger: logger}
}

// EventTypes returns the order events this handler subscribes to
func (h *OrderEventsHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
		order.EventTypeOrderCancelled,
	}
}

// Handle creates a notification for the affected customer
func (h *OrderEventsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		return h.notify(ctx, e.CustomerID, "Order placed",
			fmt.Sprintf("Order %s has been placed for ₹%s.", e.OrderNumber, e.TotalAmount.StringFixed(2)),
			e.OrderID)
	case *order.OrderStatusChangedEvent:
		return h.notify(ctx, e.CustomerID, statusTitle(e.NewStatus),
			fmt.Sprintf("Order %s is now %s.", e.OrderNumber, statusText(e.NewStatus)),
			e.OrderID)
	case *order.OrderCancelledEvent:
		msg := fmt.Sprintf("Order %s has been cancelled.", e.OrderNumber)
		if e.CancelReason != "" {
			msg = fmt.Sprintf("Order %s has been cancelled: %s.", e.OrderNumber, e.CancelReason)
		}
		return h.notify(ctx, e.CustomerID, "Order cancelled", msg, e.OrderID)
	}
	return nil
}

func (h *OrderEventsHandler) notify(ctx context.Context, customerID uuid.UUID, title, message string, relatedID uuid.UUID) error {
	related := relatedID
	n, err := domain.NewNotification(customerID, domain.TypeOrderUpdate, title, message, &related)
	if err != nil {
		return err
	}
	return h.notificationRepo.Save(ctx, n)
}

func statusTitle(s order.Status) string {
	switch s {
	case order.StatusConfirmed:
		return "Order confirmed"
	case order.StatusProcessing:
		return "Order being prepared"
	case order.StatusReady:
		return "Order ready"
	case order.StatusOutForDelivery:
		return "Order out for delivery"
	case order.StatusDelivered:
		return "Order delivered"
	case order.StatusReturned:
		return "Return recorded"
	default:
		return "Order update"
	}
}

func statusText(s order.Status) string {
	switch s {
	case order.StatusOutForDelivery:
		return "out for delivery"
	default:
		return string(s)
	}
}

// BillingEventsHandler turns payment and refund events into notifications
type BillingEventsHandler struct {
	notificationRepo domain.Repository
	logger           *zap.Logger
}

// NewBillingEventsHandler creates a new billing events handler
func NewBillingEventsHandler(notificationRepo domain.Repository, logger *zap.Logger) *BillingEventsHandler {
	return &BillingEventsHandler{notificationRepo: notificationRepo, logger: logger}
}

// EventTypes returns the billing events this handler subscribes to
func (h *BillingEventsHandler) EventTypes() []string {
	return []string{
		billing.EventTypePaymentCompleted,
		billing.EventTypePaymentFailed,
		billing.EventTypeRefundProcessed,
		billing.EventTypeRefundRejected,
	}
}

// Handle creates a notification for the affected customer
func (h *BillingEventsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var n *domain.Notification
	var err error

	switch e := event.(type) {
	case *billing.PaymentCompletedEvent:
		orderID := e.OrderID
		n, err = domain.NewNotification(e.CustomerID, domain.TypePaymentUpdate,
			"Payment received",
			fmt.Sprintf("Payment of ₹%s received via %s.", e.Amount.StringFixed(2), e.Method),
			&orderID)
	case *billing.PaymentFailedEvent:
		orderID := e.OrderID
		msg := fmt.Sprintf("Payment of ₹%s failed.", e.Amount.StringFixed(2))
		if e.FailureReason != "" {
			msg = fmt.Sprintf("Payment of ₹%s failed: %s.", e.Amount.StringFixed(2), e.FailureReason)
		}
		n, err = domain.NewNotification(e.CustomerID, domain.TypePaymentUpdate,
			"Payment failed", msg, &orderID)
	case *billing.RefundProcessedEvent:
		orderID := e.OrderID
		n, err = domain.NewNotification(e.CustomerID, domain.TypeRefundUpdate,
			"Refund processed",
			fmt.Sprintf("A refund of ₹%s has been processed for your order.", e.Amount.StringFixed(2)),
			&orderID)
	case *billing.RefundRejectedEvent:
		orderID := e.OrderID
		msg := "Your refund request was declined."
		if e.Note != "" {
			msg = fmt.Sprintf("Your refund request was declined: %s.", e.Note)
		}
		n, err = domain.NewNotification(e.CustomerID, domain.TypeRefundUpdate,
			"Refund declined", msg, &orderID)
	default:
		return nil
	}

	if err != nil {
		return err
	}
	return h.notificationRepo.Save(ctx, n)
}

// PrescriptionEventsHandler notifies customers about review outcomes
type PrescriptionEventsHandler struct {
	notificationRepo domain.Repository
	logger           *zap.Logger
}

// NewPrescriptionEventsHandler creates a new prescription events handler
func NewPrescriptionEventsHandler(notificationRepo domain.Repository, logger *zap.Logger) *PrescriptionEventsHandler {
	return &PrescriptionEventsHandler{notificationRepo: notificationRepo, logger: logger}
}

// EventTypes returns the prescription events this handler subscribes to
func (h *PrescriptionEventsHandler) EventTypes() []string {
	return []string{prescription.EventTypePrescriptionReviewed}
}

// Handle creates a notification for the review outcome
func (h *PrescriptionEventsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*prescription.PrescriptionReviewedEvent)
	if !ok {
		return nil
	}

	rxID := e.PrescriptionID
	var title, message string
	switch e.Status {
	case prescription.StatusApproved:
		title = "Prescription approved"
		message = "Your prescription has been verified and can be used at checkout."
	case prescription.StatusRejected:
		title = "Prescription rejected"
		message = "Your prescription could not be verified."
		if e.ReviewNote != "" {
			message = fmt.Sprintf("Your prescription could not be verified: %s.", e.ReviewNote)
		}
	default:
		return nil
	}

	n, err := domain.NewNotification(e.CustomerID, domain.TypePrescriptionUpdate, title, message, &rxID)
	if err != nil {
		return err
	}
	return h.notificationRepo.Save(ctx, n)
}
