package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/epharmacy/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Renderer turns an order into an invoice PDF
type Renderer interface {
	Render(ctx context.Context, o *order.Order, invoiceNumber string) ([]byte, error)
}

// Service generates and serves order invoices
type Service struct {
	invoiceRepo order.InvoiceRepository
	orderRepo   order.Repository
	renderer    Renderer
	store       storage.ObjectStorage
	logger      *zap.Logger
}

// NewService creates a new invoice service
func NewService(
	invoiceRepo order.InvoiceRepository,
	orderRepo order.Repository,
	renderer Renderer,
	store storage.ObjectStorage,
	logger *zap.Logger,
) *Service {
	return &Service{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		renderer:    renderer,
		store:       store,
		logger:      logger,
	}
}

// Generate renders the invoice PDF for an order and stores it
// Repeated calls return the existing invoice
func (s *Service) Generate(ctx context.Context, callerID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.CustomerID != callerID {
		return nil, shared.ErrForbidden
	}
	if o.Status == order.StatusPending || o.Status == order.StatusCancelled {
		return nil, shared.NewDomainError("ORDER_NOT_INVOICEABLE", "Invoices are issued for paid orders only")
	}

	if existing, err := s.invoiceRepo.FindByOrder(ctx, orderID); err == nil {
		resp := ToResponse(existing)
		return &resp, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	invoiceNumber := order.GenerateInvoiceNumber(o.ID, time.Now())
	pdf, err := s.renderer.Render(ctx, o, invoiceNumber)
	if err != nil {
		s.logger.Error("invoice rendering failed",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("RENDER_FAILED", "Invoice could not be generated")
	}

	fileKey := "invoices/" + invoiceNumber + ".pdf"
	if err := s.store.Upload(ctx, fileKey, pdf, "application/pdf"); err != nil {
		return nil, shared.NewDomainError("UPLOAD_FAILED", "Invoice could not be stored")
	}

	inv, err := order.NewInvoice(o.ID, invoiceNumber, fileKey)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		// keep storage consistent with the database
		if delErr := s.store.Delete(ctx, fileKey); delErr != nil {
			s.logger.Warn("failed to remove orphaned invoice",
				zap.String("key", fileKey),
				zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("invoice generated",
		zap.String("order_id", o.ID.String()),
		zap.String("invoice_number", invoiceNumber))

	resp := ToResponse(inv)
	return &resp, nil
}

// Get returns the invoice of an order with a download link
func (s *Service) Get(ctx context.Context, callerID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.CustomerID != callerID {
		return nil, shared.ErrForbidden
	}

	inv, err := s.invoiceRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	resp := ToResponse(inv)
	if url, expiresAt, err := s.store.DownloadURL(ctx, inv.FileKey, 15*time.Minute); err == nil {
		resp.DownloadURL = url
		resp.URLExpiresAt = &expiresAt
	}
	return &resp, nil
}

// Download returns the rendered PDF bytes
func (s *Service) Download(ctx context.Context, callerID uuid.UUID, isAdmin bool, orderID uuid.UUID) ([]byte, string, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	if !isAdmin && o.CustomerID != callerID {
		return nil, "", shared.ErrForbidden
	}

	inv, err := s.invoiceRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, "", err
	}

	data, _, err := s.store.Download(ctx, inv.FileKey)
	if err != nil {
		return nil, "", err
	}
	return data, inv.InvoiceNumber + ".pdf", nil
}
