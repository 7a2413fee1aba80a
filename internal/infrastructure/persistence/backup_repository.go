package persistence

import (
	"context"
	"errors"

	"github.com/epharmacy/backend/internal/domain/backup"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var backupSortFields = sortFieldsWith("status", "completed_at", "size_bytes")

// GormBackupRepository implements backup.Repository using GORM
type GormBackupRepository struct {
	db *gorm.DB
}

// NewGormBackupRepository creates a new GormBackupRepository
func NewGormBackupRepository(db *gorm.DB) *GormBackupRepository {
	return &GormBackupRepository{db: db}
}

// FindByID finds a backup record by its ID
func (r *GormBackupRepository) FindByID(ctx context.Context, id uuid.UUID) (*backup.Record, error) {
	var record backup.Record
	if err := conn(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindAll finds backup records matching the filter
func (r *GormBackupRepository) FindAll(ctx context.Context, filter shared.Filter) ([]backup.Record, int64, error) {
	query := conn(ctx, r.db).Model(&backup.Record{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter)
	query = applyOrdering(query, filter, backupSortFields, "created_at")

	var records []backup.Record
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// FindLatestCompleted finds the most recent completed backup
func (r *GormBackupRepository) FindLatestCompleted(ctx context.Context) (*backup.Record, error) {
	var record backup.Record
	if err := conn(ctx, r.db).
		Where("status = ?", backup.StatusCompleted).
		Order("completed_at DESC").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Save creates or updates a backup record
func (r *GormBackupRepository) Save(ctx context.Context, record *backup.Record) error {
	return conn(ctx, r.db).Save(record).Error
}

// GormRestoreRepository implements backup.RestoreRepository using GORM
type GormRestoreRepository struct {
	db *gorm.DB
}

// NewGormRestoreRepository creates a new GormRestoreRepository
func NewGormRestoreRepository(db *gorm.DB) *GormRestoreRepository {
	return &GormRestoreRepository{db: db}
}

// FindByID finds a restore record by its ID
func (r *GormRestoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*backup.RestoreRecord, error) {
	var record backup.RestoreRecord
	if err := conn(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByBackup finds all restore runs from a backup, newest first
func (r *GormRestoreRepository) FindByBackup(ctx context.Context, backupID uuid.UUID) ([]backup.RestoreRecord, error) {
	var records []backup.RestoreRecord
	if err := conn(ctx, r.db).
		Where("backup_id = ?", backupID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a restore record
func (r *GormRestoreRepository) Save(ctx context.Context, record *backup.RestoreRecord) error {
	return conn(ctx, r.db).Save(record).Error
}

// Ensure implementations satisfy the repository interfaces
var (
	_ backup.Repository        = (*GormBackupRepository)(nil)
	_ backup.RestoreRepository = (*GormRestoreRepository)(nil)
)
