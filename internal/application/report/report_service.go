package report

import (
	"context"
	"time"

	"github.com/epharmacy/backend/internal/domain/report"
	"github.com/epharmacy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Defaults applied when the caller leaves report parameters empty
const (
	DefaultRangeDays  = 30
	DefaultTopN       = 10
	DefaultExpiryDays = 30
	MaxTopN           = 100
)

// SalesQuery carries the sales report parameters
type SalesQuery struct {
	From time.Time `form:"from" time_format:"2006-01-02"`
	To   time.Time `form:"to" time_format:"2006-01-02"`
	TopN int       `form:"top_n" binding:"omitempty,min=1,max=100"`
}

// InventoryQuery carries the inventory report parameters
type InventoryQuery struct {
	ExpiryDays int `form:"expiry_days" binding:"omitempty,min=1,max=365"`
}

// CustomerQuery carries the customer report parameters
type CustomerQuery struct {
	NewSince time.Time `form:"new_since" time_format:"2006-01-02"`
	TopN     int       `form:"top_n" binding:"omitempty,min=1,max=100"`
}

// Service exposes the admin reports
type Service struct {
	reportRepo report.Repository
	logger     *zap.Logger
}

// NewService creates a new report service
func NewService(reportRepo report.Repository, logger *zap.Logger) *Service {
	return &Service{reportRepo: reportRepo, logger: logger}
}

// Sales reports revenue, daily breakdown and top products for a date range
// An empty range defaults to the last thirty days
func (s *Service) Sales(ctx context.Context, query *SalesQuery) (*report.SalesReport, error) {
	from, to := query.From, query.To
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -DefaultRangeDays)
	}
	if from.After(to) {
		return nil, shared.NewDomainError("INVALID_RANGE", "Report range start must precede its end")
	}

	topN := query.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	return s.reportRepo.SalesBetween(ctx, from, to, topN)
}

// Inventory reports stock value plus low-stock and expiring batches
func (s *Service) Inventory(ctx context.Context, query *InventoryQuery) (*report.InventoryReport, error) {
	days := query.ExpiryDays
	if days <= 0 {
		days = DefaultExpiryDays
	}
	return s.reportRepo.Inventory(ctx, days)
}

// Customers reports the customer base and top spenders
func (s *Service) Customers(ctx context.Context, query *CustomerQuery) (*report.CustomerReport, error) {
	newSince := query.NewSince
	if newSince.IsZero() {
		newSince = time.Now().AddDate(0, 0, -DefaultRangeDays)
	}

	topN := query.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	return s.reportRepo.Customers(ctx, newSince, topN)
}

// Prescriptions reports the review queue and turnaround
func (s *Service) Prescriptions(ctx context.Context) (*report.PrescriptionReport, error) {
	return s.reportRepo.Prescriptions(ctx)
}
