package prescription

import (
	"context"
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for prescription persistence
type Repository interface {
	// FindByID finds a prescription with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Prescription, error)

	// FindByCustomer finds all prescriptions of a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Prescription, int64, error)

	// FindByStatus finds prescriptions in a review state
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]Prescription, int64, error)

	// FindAll finds all prescriptions matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Prescription, int64, error)

	// FindUsableByCustomer finds approved, unused, unexpired prescriptions
	FindUsableByCustomer(ctx context.Context, customerID uuid.UUID, at time.Time) ([]Prescription, error)

	// Save creates or updates a prescription and its items
	Save(ctx context.Context, p *Prescription) error

	// CountByStatus counts prescriptions per review state
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
