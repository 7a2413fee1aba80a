package notification

import (
	"context"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for notification persistence
type Repository interface {
	// FindByID finds a notification by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindByCustomer finds a customer's notifications, optionally unread only
	FindByCustomer(ctx context.Context, customerID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]Notification, int64, error)

	// CountUnread counts a customer's unread notifications
	CountUnread(ctx context.Context, customerID uuid.UUID) (int64, error)

	// Save creates or updates a notification
	Save(ctx context.Context, n *Notification) error

	// SaveAll persists multiple notifications in one transaction
	SaveAll(ctx context.Context, ns []*Notification) error

	// MarkAllRead flags every unread notification of a customer as read
	MarkAllRead(ctx context.Context, customerID uuid.UUID) error
}
