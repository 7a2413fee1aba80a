package notification

import (
	"time"

	domain "github.com/epharmacy/backend/internal/domain/notification"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ListFilter carries notification list query parameters
type ListFilter struct {
	UnreadOnly bool `form:"unread_only"`
	Page       int  `form:"page" binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BroadcastRequest represents an admin announcement to all active customers
type BroadcastRequest struct {
	Type    string `json:"type" binding:"required,oneof=promotion system"`
	Title   string `json:"title" binding:"required,max=200"`
	Message string `json:"message" binding:"max=2000"`
}

// Response represents a notification in API responses
type Response struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	RelatedID *uuid.UUID `json:"related_id,omitempty"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// UnreadCountResponse reports how many notifications are unseen
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// ToResponse converts a domain Notification to Response
func ToResponse(n *domain.Notification) Response {
	return Response{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		RelatedID: n.RelatedID,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// ToResponses converts a slice of notifications
func ToResponses(ns []domain.Notification) []Response {
	out := make([]Response, 0, len(ns))
	for i := range ns {
		out = append(out, ToResponse(&ns[i]))
	}
	return out
}

func buildFilter(filter *ListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	return f
}
