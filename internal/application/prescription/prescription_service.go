package prescription

import (
	"context"
	"fmt"
	"time"

	"github.com/epharmacy/backend/internal/domain/prescription"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/epharmacy/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxScanSize caps an uploaded prescription scan at 5 MiB
const MaxScanSize = 5 * 1024 * 1024

// Service handles prescription upload and pharmacist review
type Service struct {
	prescriptionRepo prescription.Repository
	objectStorage    storage.ObjectStorage
	eventBus         shared.EventPublisher
	urlTTL           time.Duration
	logger           *zap.Logger
}

// NewService creates a new prescription service
func NewService(
	prescriptionRepo prescription.Repository,
	objectStorage storage.ObjectStorage,
	eventBus shared.EventPublisher,
	urlTTL time.Duration,
	logger *zap.Logger,
) *Service {
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	return &Service{
		prescriptionRepo: prescriptionRepo,
		objectStorage:    objectStorage,
		eventBus:         eventBus,
		urlTTL:           urlTTL,
		logger:           logger,
	}
}

// Upload stores the scan and creates a pending prescription
func (s *Service) Upload(ctx context.Context, customerID uuid.UUID, req *UploadRequest, scan []byte, contentType string) (*Response, error) {
	if len(scan) == 0 {
		return nil, shared.NewDomainError("INVALID_FILE", "Prescription scan is required")
	}
	if len(scan) > MaxScanSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "Prescription scan cannot exceed 5 MB")
	}

	fileKey := fmt.Sprintf("prescriptions/%s/%s%s", customerID, uuid.New(), extensionFor(contentType))

	p, err := prescription.NewPrescription(customerID, req.DoctorName, req.Hospital, req.PrescribedDate, fileKey, contentType, req.ProductIDs)
	if err != nil {
		return nil, err
	}

	if err := s.objectStorage.Upload(ctx, fileKey, scan, contentType); err != nil {
		s.logger.Error("failed to store prescription scan", zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_FAILED", "Could not store the prescription scan")
	}

	if err := s.prescriptionRepo.Save(ctx, p); err != nil {
		// keep storage consistent with the database
		if delErr := s.objectStorage.Delete(ctx, fileKey); delErr != nil {
			s.logger.Warn("failed to remove orphaned scan", zap.String("file_key", fileKey), zap.Error(delErr))
		}
		return nil, err
	}

	s.publishEvents(ctx, p)

	s.logger.Info("prescription uploaded",
		zap.String("prescription_id", p.ID.String()),
		zap.String("customer_id", customerID.String()))

	resp := ToResponse(p)
	return &resp, nil
}

// Get returns a prescription with a short-lived scan URL
// Customers can read only their own; admins pass isAdmin true
func (s *Service) Get(ctx context.Context, callerID uuid.UUID, isAdmin bool, id uuid.UUID) (*Response, error) {
	p, err := s.prescriptionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && p.CustomerID != callerID {
		return nil, shared.ErrForbidden
	}

	resp := ToResponse(p)
	if url, expiresAt, err := s.objectStorage.DownloadURL(ctx, p.FileKey, s.urlTTL); err == nil {
		resp.ScanURL = url
		resp.ScanExpiresAt = &expiresAt
	} else {
		s.logger.Warn("failed to build scan URL",
			zap.String("prescription_id", id.String()),
			zap.Error(err))
	}
	return &resp, nil
}

// DownloadScan streams the scan bytes for a prescription
func (s *Service) DownloadScan(ctx context.Context, callerID uuid.UUID, isAdmin bool, id uuid.UUID) ([]byte, string, error) {
	p, err := s.prescriptionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !isAdmin && p.CustomerID != callerID {
		return nil, "", shared.ErrForbidden
	}
	return s.objectStorage.Download(ctx, p.FileKey)
}

// ListOwn lists the customer's prescriptions
func (s *Service) ListOwn(ctx context.Context, customerID uuid.UUID, filter *ListFilter) (*shared.Paginated[Response], error) {
	domainFilter := buildFilter(filter)
	prescriptions, total, err := s.prescriptionRepo.FindByCustomer(ctx, customerID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToResponses(prescriptions), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// ListAll lists prescriptions for admin review, optionally by status
func (s *Service) ListAll(ctx context.Context, filter *ListFilter) (*shared.Paginated[Response], error) {
	domainFilter := buildFilter(filter)

	var (
		prescriptions []prescription.Prescription
		total         int64
		err           error
	)
	if filter.Status != "" {
		prescriptions, total, err = s.prescriptionRepo.FindByStatus(ctx, prescription.Status(filter.Status), domainFilter)
	} else {
		prescriptions, total, err = s.prescriptionRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToResponses(prescriptions), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Approve marks a pending prescription usable for ordering
func (s *Service) Approve(ctx context.Context, reviewerID, id uuid.UUID, req *ReviewRequest) (*Response, error) {
	return s.review(ctx, id, func(p *prescription.Prescription) error {
		return p.Approve(reviewerID, req.Note)
	})
}

// Reject declines a pending prescription with a note
func (s *Service) Reject(ctx context.Context, reviewerID, id uuid.UUID, req *ReviewRequest) (*Response, error) {
	return s.review(ctx, id, func(p *prescription.Prescription) error {
		return p.Reject(reviewerID, req.Note)
	})
}

func (s *Service) review(ctx context.Context, id uuid.UUID, apply func(*prescription.Prescription) error) (*Response, error) {
	p, err := s.prescriptionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(p); err != nil {
		return nil, err
	}

	if err := s.prescriptionRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, p)

	s.logger.Info("prescription reviewed",
		zap.String("prescription_id", id.String()),
		zap.String("status", string(p.Status)))

	resp := ToResponse(p)
	return &resp, nil
}

func (s *Service) publishEvents(ctx context.Context, p *prescription.Prescription) {
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish prescription events",
			zap.String("prescription_id", p.ID.String()),
			zap.Error(err))
	}
	p.ClearDomainEvents()
}

func buildFilter(filter *ListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	return domainFilter
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
