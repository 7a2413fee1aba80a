package prescription

import (
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypePrescription = "Prescription"

// Event type constants
const (
	EventTypePrescriptionUploaded = "PrescriptionUploaded"
	EventTypePrescriptionReviewed = "PrescriptionReviewed"
)

// PrescriptionUploadedEvent is published when a customer uploads a prescription
type PrescriptionUploadedEvent struct {
	shared.BaseDomainEvent
	PrescriptionID uuid.UUID `json:"prescription_id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	DoctorName     string    `json:"doctor_name"`
	ItemCount      int       `json:"item_count"`
}

// NewPrescriptionUploadedEvent creates a new PrescriptionUploadedEvent
func NewPrescriptionUploadedEvent(p *Prescription) *PrescriptionUploadedEvent {
	return &PrescriptionUploadedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrescriptionUploaded, AggregateTypePrescription, p.ID),
		PrescriptionID:  p.ID,
		CustomerID:      p.CustomerID,
		DoctorName:      p.DoctorName,
		ItemCount:       len(p.Items),
	}
}

// PrescriptionReviewedEvent is published when a pharmacist approves or rejects
type PrescriptionReviewedEvent struct {
	shared.BaseDomainEvent
	PrescriptionID uuid.UUID `json:"prescription_id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	Status         Status    `json:"status"`
	ReviewNote     string    `json:"review_note,omitempty"`
}

// NewPrescriptionReviewedEvent creates a new PrescriptionReviewedEvent
func NewPrescriptionReviewedEvent(p *Prescription) *PrescriptionReviewedEvent {
	return &PrescriptionReviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrescriptionReviewed, AggregateTypePrescription, p.ID),
		PrescriptionID:  p.ID,
		CustomerID:      p.CustomerID,
		Status:          p.Status,
		ReviewNote:      p.ReviewNote,
	}
}
