package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/epharmacy/backend/internal/domain/prescription"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var prescriptionSortFields = sortFieldsWith("doctor_name", "prescribed_date", "status", "reviewed_at")

// GormPrescriptionRepository implements prescription.Repository using GORM
type GormPrescriptionRepository struct {
	db *gorm.DB
}

// NewGormPrescriptionRepository creates a new GormPrescriptionRepository
func NewGormPrescriptionRepository(db *gorm.DB) *GormPrescriptionRepository {
	return &GormPrescriptionRepository{db: db}
}

// FindByID finds a prescription with its items
func (r *GormPrescriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	var p prescription.Prescription
	if err := conn(ctx, r.db).
		Preload("Items").
		First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByCustomer finds all prescriptions of a customer
func (r *GormPrescriptionRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]prescription.Prescription, int64, error) {
	query := conn(ctx, r.db).
		Model(&prescription.Prescription{}).
		Where("customer_id = ?", customerID)
	return r.page(query, filter)
}

// FindByStatus finds prescriptions in a review state
func (r *GormPrescriptionRepository) FindByStatus(ctx context.Context, status prescription.Status, filter shared.Filter) ([]prescription.Prescription, int64, error) {
	query := conn(ctx, r.db).
		Model(&prescription.Prescription{}).
		Where("status = ?", status)
	return r.page(query, filter)
}

// FindAll finds all prescriptions matching the filter
func (r *GormPrescriptionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]prescription.Prescription, int64, error) {
	query := conn(ctx, r.db).Model(&prescription.Prescription{})
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(doctor_name) LIKE ? OR LOWER(hospital) LIKE ?", pattern, pattern)
	}
	return r.page(query, filter)
}

// FindUsableByCustomer finds approved, unused, unexpired prescriptions
func (r *GormPrescriptionRepository) FindUsableByCustomer(ctx context.Context, customerID uuid.UUID, at time.Time) ([]prescription.Prescription, error) {
	var prescriptions []prescription.Prescription
	if err := conn(ctx, r.db).
		Preload("Items").
		Where("customer_id = ? AND status = ? AND is_used = ? AND expiry_date > ?",
			customerID, prescription.StatusApproved, false, at).
		Order("expiry_date ASC").
		Find(&prescriptions).Error; err != nil {
		return nil, err
	}
	return prescriptions, nil
}

// Save creates or updates a prescription and its items
func (r *GormPrescriptionRepository) Save(ctx context.Context, p *prescription.Prescription) error {
	return conn(ctx, r.db).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(p).Error
}

// CountByStatus counts prescriptions per review state
func (r *GormPrescriptionRepository) CountByStatus(ctx context.Context) (map[prescription.Status]int64, error) {
	var rows []struct {
		Status prescription.Status
		Count  int64
	}
	if err := conn(ctx, r.db).
		Model(&prescription.Prescription{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[prescription.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *GormPrescriptionRepository) page(query *gorm.DB, filter shared.Filter) ([]prescription.Prescription, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter)
	query = applyOrdering(query, filter, prescriptionSortFields, "created_at")

	var prescriptions []prescription.Prescription
	if err := query.Preload("Items").Find(&prescriptions).Error; err != nil {
		return nil, 0, err
	}
	return prescriptions, total, nil
}

// Ensure GormPrescriptionRepository implements Repository
var _ prescription.Repository = (*GormPrescriptionRepository)(nil)
