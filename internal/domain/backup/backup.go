package backup

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status represents the outcome of a backup or restore run
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record tracks one backup export
type Record struct {
	shared.BaseEntity
	FileName    string    `gorm:"type:varchar(255);not null"`
	FileKey     string    `gorm:"type:varchar(500);not null"`
	SizeBytes   int64     `gorm:"not null;default:0"`
	TableCounts string    `gorm:"type:text"` // JSON map of table name to row count
	Status      Status    `gorm:"type:varchar(20);not null"`
	Error       string    `gorm:"type:text"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "backup_records"
}

// NewRecord starts tracking a backup run
func NewRecord(fileName, fileKey string, createdBy uuid.UUID) *Record {
	return &Record{
		BaseEntity: shared.NewBaseEntity(),
		FileName:   fileName,
		FileKey:    fileKey,
		Status:     StatusRunning,
		CreatedBy:  createdBy,
	}
}

// Complete records a successful export
func (r *Record) Complete(sizeBytes int64, tableCounts string) {
	now := time.Now()
	r.Status = StatusCompleted
	r.SizeBytes = sizeBytes
	r.TableCounts = tableCounts
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// Fail records a failed export
func (r *Record) Fail(errMsg string) {
	now := time.Now()
	r.Status = StatusFailed
	r.Error = errMsg
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// RestoreRecord tracks one restore run from a backup archive
type RestoreRecord struct {
	shared.BaseEntity
	BackupID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Status      Status    `gorm:"type:varchar(20);not null"`
	Error       string    `gorm:"type:text"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (RestoreRecord) TableName() string {
	return "restore_records"
}

// NewRestoreRecord starts tracking a restore run
func NewRestoreRecord(backupID, createdBy uuid.UUID) *RestoreRecord {
	return &RestoreRecord{
		BaseEntity: shared.NewBaseEntity(),
		BackupID:   backupID,
		Status:     StatusRunning,
		CreatedBy:  createdBy,
	}
}

// Complete records a successful restore
func (r *RestoreRecord) Complete() {
	now := time.Now()
	r.Status = StatusCompleted
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// Fail records a failed restore
func (r *RestoreRecord) Fail(errMsg string) {
	now := time.Now()
	r.Status = StatusFailed
	r.Error = errMsg
	r.CompletedAt = &now
	r.UpdatedAt = now
}
