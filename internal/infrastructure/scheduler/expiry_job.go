package scheduler

import (
	"context"
	"fmt"
	"time"

	appinventory "github.com/epharmacy/backend/internal/application/inventory"
	"github.com/epharmacy/backend/internal/domain/identity"
	"github.com/epharmacy/backend/internal/domain/inventory"
	"github.com/epharmacy/backend/internal/domain/notification"
	"go.uber.org/zap"
)

// ExpiryJob deactivates expired stock batches and alerts admins
// about batches approaching expiry
type ExpiryJob struct {
	batchRepo        inventory.StockBatchRepository
	notificationRepo notification.Repository
	customerRepo     identity.CustomerRepository
	stockService     *appinventory.StockService
	interval         time.Duration
	alertDays        int
	logger           *zap.Logger
}

// NewExpiryJob creates a new expiry job
func NewExpiryJob(
	batchRepo inventory.StockBatchRepository,
	notificationRepo notification.Repository,
	customerRepo identity.CustomerRepository,
	stockService *appinventory.StockService,
	interval time.Duration,
	alertDays int,
	logger *zap.Logger,
) *ExpiryJob {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if alertDays <= 0 {
		alertDays = 30
	}
	return &ExpiryJob{
		batchRepo:        batchRepo,
		notificationRepo: notificationRepo,
		customerRepo:     customerRepo,
		stockService:     stockService,
		interval:         interval,
		alertDays:        alertDays,
		logger:           logger,
	}
}

// Name identifies the job in logs
func (j *ExpiryJob) Name() string { return "stock_expiry" }

// Interval is how often the job runs
func (j *ExpiryJob) Interval() time.Duration { return j.interval }

// Run deactivates expired batches, resyncs product availability,
// and notifies admins about batches expiring soon
func (j *ExpiryJob) Run(ctx context.Context) error {
	if err := j.deactivateExpired(ctx); err != nil {
		return err
	}
	return j.alertExpiring(ctx)
}

func (j *ExpiryJob) deactivateExpired(ctx context.Context) error {
	expired, err := j.batchRepo.FindExpiredActive(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("find expired batches: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}

	products := make(map[string]struct{}, len(expired))
	deactivated := make([]*inventory.StockBatch, 0, len(expired))
	for i := range expired {
		batch := &expired[i]
		if err := batch.Deactivate(); err != nil {
			continue
		}
		deactivated = append(deactivated, batch)
		products[batch.ProductID.String()] = struct{}{}
	}
	if err := j.batchRepo.SaveAll(ctx, deactivated); err != nil {
		return fmt.Errorf("save deactivated batches: %w", err)
	}

	for i := range deactivated {
		productID := deactivated[i].ProductID
		if _, seen := products[productID.String()]; !seen {
			continue
		}
		delete(products, productID.String())
		if err := j.stockService.SyncProductAvailability(ctx, productID); err != nil {
			j.logger.Warn("Failed to sync product availability",
				zap.String("product_id", productID.String()),
				zap.Error(err),
			)
		}
	}

	j.logger.Info("Deactivated expired batches", zap.Int("count", len(deactivated)))
	return nil
}

func (j *ExpiryJob) alertExpiring(ctx context.Context) error {
	expiring, err := j.batchRepo.FindExpiringWithin(ctx, j.alertDays)
	if err != nil {
		return fmt.Errorf("find expiring batches: %w", err)
	}
	if len(expiring) == 0 {
		return nil
	}

	admins, err := j.customerRepo.FindActiveByRole(ctx, identity.RoleAdmin)
	if err != nil {
		return fmt.Errorf("find admins: %w", err)
	}
	if len(admins) == 0 {
		return nil
	}

	earliest := expiring[0]
	title := "Stock expiry alert"
	message := fmt.Sprintf(
		"%d batch(es) expire within %d days. Earliest: batch %s on %s.",
		len(expiring), j.alertDays,
		earliest.BatchNumber, earliest.ExpiryDate.Format("02 Jan 2006"),
	)

	alerts := make([]*notification.Notification, 0, len(admins))
	for i := range admins {
		n, err := notification.NewNotification(admins[i].ID, notification.TypeSystem, title, message, nil)
		if err != nil {
			continue
		}
		alerts = append(alerts, n)
	}
	if err := j.notificationRepo.SaveAll(ctx, alerts); err != nil {
		return fmt.Errorf("save expiry alerts: %w", err)
	}

	j.logger.Info("Sent expiry alerts",
		zap.Int("batches", len(expiring)),
		zap.Int("admins", len(alerts)),
	)
	return nil
}

// Ensure ExpiryJob implements Job
var _ Job = (*ExpiryJob)(nil)
