package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/epharmacy/backend/internal/domain/notification"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var notificationSortFields = sortFieldsWith("type", "is_read")

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID finds a notification by its ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	if err := conn(ctx, r.db).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// FindByCustomer finds a customer's notifications, optionally unread only
func (r *GormNotificationRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]notification.Notification, int64, error) {
	query := conn(ctx, r.db).
		Model(&notification.Notification{}).
		Where("customer_id = ?", customerID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter)
	query = applyOrdering(query, filter, notificationSortFields, "created_at")

	var notifications []notification.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// CountUnread counts a customer's unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&notification.Notification{}).
		Where("customer_id = ? AND is_read = ?", customerID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	return conn(ctx, r.db).Save(n).Error
}

// SaveAll persists multiple notifications in one transaction
func (r *GormNotificationRepository) SaveAll(ctx context.Context, ns []*notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(ns, 200).Error
	})
}

// MarkAllRead flags every unread notification of a customer as read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, customerID uuid.UUID) error {
	now := time.Now()
	return conn(ctx, r.db).
		Model(&notification.Notification{}).
		Where("customer_id = ? AND is_read = ?", customerID, false).
		Updates(map[string]interface{}{
			"is_read":    true,
			"read_at":    now,
			"updated_at": now,
		}).Error
}

// Ensure GormNotificationRepository implements Repository
var _ notification.Repository = (*GormNotificationRepository)(nil)
