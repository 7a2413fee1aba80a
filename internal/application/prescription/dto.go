package prescription

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/prescription"
	"github.com/google/uuid"
)

// UploadRequest carries the multipart form fields of a prescription upload
// The scan bytes arrive separately from the file part
type UploadRequest struct {
	DoctorName     string      `form:"doctor_name" binding:"required,min=1,max=200"`
	Hospital       string      `form:"hospital" binding:"max=200"`
	PrescribedDate time.Time   `form:"prescribed_date" binding:"required" time_format:"2006-01-02"`
	ProductIDs     []uuid.UUID `form:"product_ids" binding:"required,min=1"`
}

// ReviewRequest approves or rejects a pending prescription
type ReviewRequest struct {
	Note string `json:"note" binding:"max=1000"`
}

// ListFilter filters prescription listings
type ListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Response represents a prescription in API responses
type Response struct {
	ID             uuid.UUID   `json:"id"`
	CustomerID     uuid.UUID   `json:"customer_id"`
	DoctorName     string      `json:"doctor_name"`
	Hospital       string      `json:"hospital,omitempty"`
	PrescribedDate time.Time   `json:"prescribed_date"`
	ExpiryDate     time.Time   `json:"expiry_date"`
	Status         string      `json:"status"`
	ReviewNote     string      `json:"review_note,omitempty"`
	ReviewedAt     *time.Time  `json:"reviewed_at,omitempty"`
	IsUsed         bool        `json:"is_used"`
	UsedInOrderID  *uuid.UUID  `json:"used_in_order_id,omitempty"`
	ProductIDs     []uuid.UUID `json:"product_ids"`
	ScanURL        string      `json:"scan_url,omitempty"`
	ScanExpiresAt  *time.Time  `json:"scan_url_expires_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ToResponse converts a domain Prescription to Response
func ToResponse(p *prescription.Prescription) Response {
	productIDs := make([]uuid.UUID, 0, len(p.Items))
	for _, item := range p.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	return Response{
		ID:             p.ID,
		CustomerID:     p.CustomerID,
		DoctorName:     p.DoctorName,
		Hospital:       p.Hospital,
		PrescribedDate: p.PrescribedDate,
		ExpiryDate:     p.ExpiryDate,
		Status:         string(p.Status),
		ReviewNote:     p.ReviewNote,
		ReviewedAt:     p.ReviewedAt,
		IsUsed:         p.IsUsed,
		UsedInOrderID:  p.UsedInOrderID,
		ProductIDs:     productIDs,
		CreatedAt:      p.CreatedAt,
	}
}

// ToResponses converts a slice of prescriptions
func ToResponses(prescriptions []prescription.Prescription) []Response {
	out := make([]Response, 0, len(prescriptions))
	for i := range prescriptions {
		out = append(out, ToResponse(&prescriptions[i]))
	}
	return out
}
