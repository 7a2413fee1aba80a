package backup

import (
	"context"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence for backup records
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Record, int64, error)
	FindLatestCompleted(ctx context.Context) (*Record, error)
	Save(ctx context.Context, record *Record) error
}

// RestoreRepository defines persistence for restore records
type RestoreRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RestoreRecord, error)
	FindByBackup(ctx context.Context, backupID uuid.UUID) ([]RestoreRecord, error)
	Save(ctx context.Context, record *RestoreRecord) error
}
