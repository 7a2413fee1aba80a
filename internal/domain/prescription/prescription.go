package prescription

import (
	"strings"
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status represents the review state of a prescription
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// DefaultValidityDays is how long an approved prescription stays usable
// counted from the prescribed date
const DefaultValidityDays = 180

// Allowed scan content types
var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// Item is one prescribed product on a prescription
type Item struct {
	shared.BaseEntity
	PrescriptionID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "prescription_items"
}

// Prescription is an uploaded doctor's prescription awaiting pharmacist review
// It is the aggregate root; items list the prescribed products
type Prescription struct {
	shared.BaseAggregateRoot
	CustomerID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	DoctorName     string     `gorm:"type:varchar(200);not null"`
	Hospital       string     `gorm:"type:varchar(200)"`
	PrescribedDate time.Time  `gorm:"type:date;not null"`
	ExpiryDate     time.Time  `gorm:"type:date;not null"`
	FileKey        string     `gorm:"type:varchar(500);not null"`
	ContentType    string     `gorm:"type:varchar(100);not null"`
	Status         Status     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewNote     string     `gorm:"type:text"`
	ReviewedBy     *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt     *time.Time
	IsUsed         bool       `gorm:"not null;default:false"`
	UsedInOrderID  *uuid.UUID `gorm:"type:uuid"`
	Items          []Item     `gorm:"foreignKey:PrescriptionID"`
}

// TableName returns the table name for GORM
func (Prescription) TableName() string {
	return "prescriptions"
}

// NewPrescription creates a new pending prescription
func NewPrescription(customerID uuid.UUID, doctorName, hospital string, prescribedDate time.Time, fileKey, contentType string, productIDs []uuid.UUID) (*Prescription, error) {
	doctorName = strings.TrimSpace(doctorName)

	if customerID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if doctorName == "" {
		return nil, shared.NewDomainError("INVALID_DOCTOR", "Doctor name cannot be empty")
	}
	if prescribedDate.After(time.Now()) {
		return nil, shared.NewDomainError("INVALID_DATE", "Prescribed date cannot be in the future")
	}
	if fileKey == "" {
		return nil, shared.NewDomainError("INVALID_FILE", "Prescription scan is required")
	}
	if !allowedContentTypes[contentType] {
		return nil, shared.NewDomainError("INVALID_FILE", "Prescription scan must be JPEG, PNG, or PDF")
	}
	if len(productIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Prescription must list at least one product")
	}

	p := &Prescription{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		DoctorName:        doctorName,
		Hospital:          strings.TrimSpace(hospital),
		PrescribedDate:    prescribedDate,
		ExpiryDate:        prescribedDate.AddDate(0, 0, DefaultValidityDays),
		FileKey:           fileKey,
		ContentType:       contentType,
		Status:            StatusPending,
	}

	seen := make(map[uuid.UUID]bool, len(productIDs))
	for _, productID := range productIDs {
		if productID == uuid.Nil || seen[productID] {
			continue
		}
		seen[productID] = true
		p.Items = append(p.Items, Item{
			BaseEntity:     shared.NewBaseEntity(),
			PrescriptionID: p.ID,
			ProductID:      productID,
		})
	}
	if len(p.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Prescription must list at least one product")
	}

	p.AddDomainEvent(NewPrescriptionUploadedEvent(p))

	return p, nil
}

// Approve marks the prescription usable for ordering
func (p *Prescription) Approve(reviewerID uuid.UUID, note string) error {
	if p.Status != StatusPending {
		return shared.ErrInvalidState
	}

	now := time.Now()
	p.Status = StatusApproved
	p.ReviewNote = note
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPrescriptionReviewedEvent(p))

	return nil
}

// Reject declines the prescription with a reason
func (p *Prescription) Reject(reviewerID uuid.UUID, note string) error {
	if p.Status != StatusPending {
		return shared.ErrInvalidState
	}
	if strings.TrimSpace(note) == "" {
		return shared.NewDomainError("INVALID_NOTE", "Rejection requires a review note")
	}

	now := time.Now()
	p.Status = StatusRejected
	p.ReviewNote = note
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPrescriptionReviewedEvent(p))

	return nil
}

// MarkUsed binds the prescription to an order
// An approved prescription backs exactly one order
func (p *Prescription) MarkUsed(orderID uuid.UUID) error {
	if !p.IsUsable(time.Now()) {
		return shared.ErrInvalidState
	}

	p.IsUsed = true
	p.UsedInOrderID = &orderID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Release frees the prescription when its order is cancelled
func (p *Prescription) Release() {
	p.IsUsed = false
	p.UsedInOrderID = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsUsable returns true if the prescription can back a new order
func (p *Prescription) IsUsable(at time.Time) bool {
	return p.Status == StatusApproved && !p.IsUsed && at.Before(p.ExpiryDate)
}

// Covers returns true if every given product appears on the prescription
func (p *Prescription) Covers(productIDs []uuid.UUID) bool {
	prescribed := make(map[uuid.UUID]bool, len(p.Items))
	for _, item := range p.Items {
		prescribed[item.ProductID] = true
	}
	for _, id := range productIDs {
		if !prescribed[id] {
			return false
		}
	}
	return true
}
