package notification

import (
	"strings"
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Type classifies what a notification is about
type Type string

const (
	TypeOrderUpdate        Type = "order_update"
	TypePaymentUpdate      Type = "payment_update"
	TypeRefundUpdate       Type = "refund_update"
	TypePrescriptionUpdate Type = "prescription_update"
	TypePromotion          Type = "promotion"
	TypeSystem             Type = "system"
)

// IsValid checks if the type is a known notification type
func (t Type) IsValid() bool {
	switch t {
	case TypeOrderUpdate, TypePaymentUpdate, TypeRefundUpdate,
		TypePrescriptionUpdate, TypePromotion, TypeSystem:
		return true
	}
	return false
}

// Notification is an in-app message for a customer
type Notification struct {
	shared.BaseEntity
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type       Type       `gorm:"type:varchar(30);not null"`
	Title      string     `gorm:"type:varchar(200);not null"`
	Message    string     `gorm:"type:text;not null"`
	RelatedID  *uuid.UUID `gorm:"type:uuid"`
	IsRead     bool       `gorm:"not null;default:false;index"`
	ReadAt     *time.Time
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// NewNotification creates an unread notification
func NewNotification(customerID uuid.UUID, notifType Type, title, message string, relatedID *uuid.UUID) (*Notification, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if !notifType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown notification type")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}

	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		CustomerID: customerID,
		Type:       notifType,
		Title:      title,
		Message:    message,
		RelatedID:  relatedID,
	}, nil
}

// MarkRead flags the notification as seen
func (n *Notification) MarkRead() {
	if n.IsRead {
		return
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	n.UpdatedAt = now
}
