package invoice

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/google/uuid"
)

// Response represents an invoice in API responses
type Response struct {
	ID            uuid.UUID  `json:"id"`
	OrderID       uuid.UUID  `json:"order_id"`
	InvoiceNumber string     `json:"invoice_number"`
	GeneratedAt   time.Time  `json:"generated_at"`
	DownloadURL   string     `json:"download_url,omitempty"`
	URLExpiresAt  *time.Time `json:"url_expires_at,omitempty"`
}

// ToResponse converts a domain Invoice to Response
func ToResponse(inv *order.Invoice) Response {
	return Response{
		ID:            inv.ID,
		OrderID:       inv.OrderID,
		InvoiceNumber: inv.InvoiceNumber,
		GeneratedAt:   inv.GeneratedAt,
	}
}
