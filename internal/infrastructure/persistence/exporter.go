package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	appbackup "github.com/epharmacy/backend/internal/application/backup"
	"github.com/epharmacy/backend/internal/domain/billing"
	"github.com/epharmacy/backend/internal/domain/cart"
	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/domain/identity"
	"github.com/epharmacy/backend/internal/domain/inventory"
	"github.com/epharmacy/backend/internal/domain/notification"
	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/epharmacy/backend/internal/domain/prescription"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tableSpec binds an archive table name to its row type
type tableSpec struct {
	name     string
	newSlice func() interface{}
}

// archiveTables lists every exported table in insert order.
// Parents come before children so a restore can replay the list top to bottom.
// Backup bookkeeping tables are excluded; a restore must not overwrite them.
var archiveTables = []tableSpec{
	{"categories", func() interface{} { return &[]catalog.Category{} }},
	{"products", func() interface{} { return &[]catalog.Product{} }},
	{"stock_batches", func() interface{} { return &[]inventory.StockBatch{} }},
	{"customers", func() interface{} { return &[]identity.Customer{} }},
	{"customer_addresses", func() interface{} { return &[]identity.Address{} }},
	{"cart_items", func() interface{} { return &[]cart.CartItem{} }},
	{"prescriptions", func() interface{} { return &[]prescription.Prescription{} }},
	{"prescription_items", func() interface{} { return &[]prescription.Item{} }},
	{"orders", func() interface{} { return &[]order.Order{} }},
	{"order_items", func() interface{} { return &[]order.Item{} }},
	{"order_item_batches", func() interface{} { return &[]order.ItemBatch{} }},
	{"order_tax_details", func() interface{} { return &[]order.TaxDetail{} }},
	{"invoices", func() interface{} { return &[]order.Invoice{} }},
	{"payments", func() interface{} { return &[]billing.Payment{} }},
	{"refunds", func() interface{} { return &[]billing.Refund{} }},
	{"notifications", func() interface{} { return &[]notification.Notification{} }},
}

// GormExporter dumps and replays the database for backup archives
type GormExporter struct {
	db *gorm.DB
}

// NewGormExporter creates a new GormExporter
func NewGormExporter(db *gorm.DB) *GormExporter {
	return &GormExporter{db: db}
}

// Export serialises every table into an archive
func (e *GormExporter) Export(ctx context.Context) (*appbackup.Archive, error) {
	archive := &appbackup.Archive{
		Version:   appbackup.ArchiveVersion,
		CreatedAt: time.Now(),
		Tables:    make(map[string]json.RawMessage, len(archiveTables)),
		Counts:    make(map[string]int64, len(archiveTables)),
	}

	err := conn(ctx, e.db).Transaction(func(tx *gorm.DB) error {
		for _, spec := range archiveTables {
			rows := spec.newSlice()
			if err := tx.Table(spec.name).Find(rows).Error; err != nil {
				return fmt.Errorf("export %s: %w", spec.name, err)
			}
			data, err := json.Marshal(rows)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", spec.name, err)
			}
			archive.Tables[spec.name] = data
			archive.Counts[spec.name] = int64(reflect.ValueOf(rows).Elem().Len())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return archive, nil
}

// Import replaces the current data with the archive contents.
// Children are cleared before parents and inserted after them.
func (e *GormExporter) Import(ctx context.Context, archive *appbackup.Archive) error {
	return conn(ctx, e.db).Transaction(func(tx *gorm.DB) error {
		for i := len(archiveTables) - 1; i >= 0; i-- {
			spec := archiveTables[i]
			if err := tx.Exec("DELETE FROM " + spec.name).Error; err != nil {
				return fmt.Errorf("clear %s: %w", spec.name, err)
			}
		}

		for _, spec := range archiveTables {
			data, ok := archive.Tables[spec.name]
			if !ok {
				continue
			}
			rows := spec.newSlice()
			if err := json.Unmarshal(data, rows); err != nil {
				return fmt.Errorf("unmarshal %s: %w", spec.name, err)
			}
			if reflect.ValueOf(rows).Elem().Len() == 0 {
				continue
			}
			if err := tx.Table(spec.name).
				Omit(clause.Associations).
				CreateInBatches(rows, 200).Error; err != nil {
				return fmt.Errorf("import %s: %w", spec.name, err)
			}
		}
		return nil
	})
}

// Ensure GormExporter implements the backup exporter
var _ appbackup.Exporter = (*GormExporter)(nil)
