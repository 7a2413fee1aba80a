package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/epharmacy/backend/internal/domain/backup"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/epharmacy/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Archive is the exported snapshot of every persisted table
type Archive struct {
	Version   int                        `json:"version"`
	CreatedAt time.Time                  `json:"created_at"`
	Tables    map[string]json.RawMessage `json:"tables"`
	Counts    map[string]int64           `json:"counts"`
}

// ArchiveVersion guards restores against incompatible archive layouts
const ArchiveVersion = 1

// Exporter dumps and replays the database behind backups
type Exporter interface {
	// Export serialises every table into an archive
	Export(ctx context.Context) (*Archive, error)

	// Import replaces the database content with the archive, inside one
	// transaction
	Import(ctx context.Context, archive *Archive) error
}

// Service runs database backups and restores through the object store
type Service struct {
	backupRepo  backup.Repository
	restoreRepo backup.RestoreRepository
	exporter    Exporter
	store       storage.ObjectStorage
	logger      *zap.Logger
}

// NewService creates a new backup service
func NewService(
	backupRepo backup.Repository,
	restoreRepo backup.RestoreRepository,
	exporter Exporter,
	store storage.ObjectStorage,
	logger *zap.Logger,
) *Service {
	return &Service{
		backupRepo:  backupRepo,
		restoreRepo: restoreRepo,
		exporter:    exporter,
		store:       store,
		logger:      logger,
	}
}

// Run exports every table to a JSON archive and uploads it
// The record is saved before the export starts so failed runs stay visible
func (s *Service) Run(ctx context.Context, createdBy uuid.UUID) (*Response, error) {
	fileName := fmt.Sprintf("backup-%s.json", time.Now().Format("20060102-150405"))
	fileKey := "backups/" + fileName

	record := backup.NewRecord(fileName, fileKey, createdBy)
	if err := s.backupRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	archive, err := s.exporter.Export(ctx)
	if err != nil {
		return s.failBackup(ctx, record, err)
	}

	data, err := json.Marshal(archive)
	if err != nil {
		return s.failBackup(ctx, record, err)
	}

	if err := s.store.Upload(ctx, fileKey, data, "application/json"); err != nil {
		return s.failBackup(ctx, record, err)
	}

	counts, err := json.Marshal(archive.Counts)
	if err != nil {
		return s.failBackup(ctx, record, err)
	}

	record.Complete(int64(len(data)), string(counts))
	if err := s.backupRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("backup completed",
		zap.String("file", fileName),
		zap.Int("size_bytes", len(data)))

	resp := ToResponse(record)
	return &resp, nil
}

func (s *Service) failBackup(ctx context.Context, record *backup.Record, cause error) (*Response, error) {
	record.Fail(cause.Error())
	if err := s.backupRepo.Save(ctx, record); err != nil {
		s.logger.Error("failed to record backup failure", zap.Error(err))
	}
	s.logger.Error("backup failed",
		zap.String("file", record.FileName),
		zap.Error(cause))
	return nil, shared.NewDomainError("BACKUP_FAILED", "Backup could not be completed")
}

// Restore downloads a completed backup archive and replays it
func (s *Service) Restore(ctx context.Context, backupID, createdBy uuid.UUID) (*RestoreResponse, error) {
	record, err := s.backupRepo.FindByID(ctx, backupID)
	if err != nil {
		return nil, err
	}
	if record.Status != backup.StatusCompleted {
		return nil, shared.NewDomainError("BACKUP_NOT_COMPLETED", "Only completed backups can be restored")
	}

	restore := backup.NewRestoreRecord(backupID, createdBy)
	if err := s.restoreRepo.Save(ctx, restore); err != nil {
		return nil, err
	}

	data, _, err := s.store.Download(ctx, record.FileKey)
	if err != nil {
		return s.failRestore(ctx, restore, err)
	}

	var archive Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return s.failRestore(ctx, restore, err)
	}
	if archive.Version != ArchiveVersion {
		return s.failRestore(ctx, restore, fmt.Errorf("unsupported archive version %d", archive.Version))
	}

	if err := s.exporter.Import(ctx, &archive); err != nil {
		return s.failRestore(ctx, restore, err)
	}

	restore.Complete()
	if err := s.restoreRepo.Save(ctx, restore); err != nil {
		return nil, err
	}

	s.logger.Info("restore completed",
		zap.String("backup_id", backupID.String()),
		zap.String("file", record.FileName))

	resp := ToRestoreResponse(restore)
	return &resp, nil
}

func (s *Service) failRestore(ctx context.Context, restore *backup.RestoreRecord, cause error) (*RestoreResponse, error) {
	restore.Fail(cause.Error())
	if err := s.restoreRepo.Save(ctx, restore); err != nil {
		s.logger.Error("failed to record restore failure", zap.Error(err))
	}
	s.logger.Error("restore failed",
		zap.String("backup_id", restore.BackupID.String()),
		zap.Error(cause))
	return nil, shared.NewDomainError("RESTORE_FAILED", "Restore could not be completed")
}

// Get returns a backup record
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Response, error) {
	record, err := s.backupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(record)
	return &resp, nil
}

// List lists backup records, newest first
func (s *Service) List(ctx context.Context, filter *ListFilter) (*shared.Paginated[Response], error) {
	domainFilter := buildFilter(filter)
	records, total, err := s.backupRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToResponses(records), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// DownloadURL returns a link to fetch the archive
func (s *Service) DownloadURL(ctx context.Context, id uuid.UUID, expiresIn time.Duration) (string, time.Time, error) {
	record, err := s.backupRepo.FindByID(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if record.Status != backup.StatusCompleted {
		return "", time.Time{}, shared.NewDomainError("BACKUP_NOT_COMPLETED", "Only completed backups can be downloaded")
	}
	return s.store.DownloadURL(ctx, record.FileKey, expiresIn)
}
