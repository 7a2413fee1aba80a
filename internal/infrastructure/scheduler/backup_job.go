package scheduler

import (
	"context"
	"time"

	appbackup "github.com/epharmacy/backend/internal/application/backup"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BackupJob runs automatic database backups.
// Records created by it carry the nil UUID as the actor.
type BackupJob struct {
	backups  *appbackup.Service
	interval time.Duration
	logger   *zap.Logger
}

// NewBackupJob creates a new automatic backup job
func NewBackupJob(backups *appbackup.Service, interval time.Duration, logger *zap.Logger) *BackupJob {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &BackupJob{
		backups:  backups,
		interval: interval,
		logger:   logger,
	}
}

// Name identifies the job in logs
func (j *BackupJob) Name() string { return "auto_backup" }

// Interval is how often the job runs
func (j *BackupJob) Interval() time.Duration { return j.interval }

// Run exports one backup archive
func (j *BackupJob) Run(ctx context.Context) error {
	resp, err := j.backups.Run(ctx, uuid.Nil)
	if err != nil {
		return err
	}
	j.logger.Info("Automatic backup completed",
		zap.String("backup_id", resp.ID.String()),
		zap.String("file", resp.FileName),
	)
	return nil
}

// Ensure BackupJob implements Job
var _ Job = (*BackupJob)(nil)
