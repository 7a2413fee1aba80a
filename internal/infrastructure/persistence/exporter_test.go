package persistence

import (
	"context"
	"testing"
	"time"

	appbackup "github.com/epharmacy/backend/internal/application/backup"
	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/domain/identity"
	"github.com/epharmacy/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCatalog(t *testing.T, db *gorm.DB) (*catalog.Category, *catalog.Product) {
	t.Helper()

	category, err := catalog.NewCategory("Pain Relief", "Analgesics and antipyretics")
	require.NoError(t, err)
	require.NoError(t, db.Save(category).Error)

	product, err := catalog.NewProduct(
		"Paracetamol 500mg", "Fever and pain relief",
		category.ID, decimal.NewFromInt(30), decimal.NewFromInt(35),
	)
	require.NoError(t, err)
	require.NoError(t, db.Save(product).Error)

	return category, product
}

func TestGormExporter_Export(t *testing.T) {
	db := newTestDB(t)
	exporter := NewGormExporter(db)
	ctx := context.Background()

	_, product := seedCatalog(t, db)

	batch, err := inventory.NewStockBatch(
		product.ID, "BN-EXP", 40,
		time.Now().AddDate(1, 0, 0),
		decimal.NewFromInt(20), decimal.NewFromInt(35),
	)
	require.NoError(t, err)
	require.NoError(t, db.Save(batch).Error)

	archive, err := exporter.Export(ctx)
	require.NoError(t, err)

	assert.Equal(t, appbackup.ArchiveVersion, archive.Version)
	assert.Equal(t, int64(1), archive.Counts["categories"])
	assert.Equal(t, int64(1), archive.Counts["products"])
	assert.Equal(t, int64(1), archive.Counts["stock_batches"])
	assert.Equal(t, int64(0), archive.Counts["orders"])
	assert.Contains(t, archive.Tables, "customers")
}

func TestGormExporter_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	exporter := NewGormExporter(db)
	ctx := context.Background()

	category, product := seedCatalog(t, db)

	customer, err := identity.NewCustomer("asha@example.com", "9876501234", "hashed", "Asha", "Rao")
	require.NoError(t, err)
	require.NoError(t, db.Save(customer).Error)

	archive, err := exporter.Export(ctx)
	require.NoError(t, err)

	// Mutate and add data after the snapshot
	require.NoError(t, db.Model(&catalog.Product{}).
		Where("id = ?", product.ID).
		Update("name", "Renamed").Error)
	stray, err := identity.NewCustomer("stray@example.com", "9876509999", "hashed", "Stray", "Row")
	require.NoError(t, err)
	require.NoError(t, db.Save(stray).Error)

	require.NoError(t, exporter.Import(ctx, archive))

	var restored catalog.Product
	require.NoError(t, db.First(&restored, "id = ?", product.ID).Error)
	assert.Equal(t, "Paracetamol 500mg", restored.Name)
	assert.Equal(t, category.ID, restored.CategoryID)

	var customerCount int64
	require.NoError(t, db.Model(&identity.Customer{}).Count(&customerCount).Error)
	assert.Equal(t, int64(1), customerCount, "rows created after the snapshot are dropped")

	var kept identity.Customer
	require.NoError(t, db.First(&kept, "id = ?", customer.ID).Error)
	assert.Equal(t, "asha@example.com", kept.Email)
}

func TestGormExporter_ImportSkipsMissingTables(t *testing.T) {
	db := newTestDB(t)
	exporter := NewGormExporter(db)
	ctx := context.Background()

	seedCatalog(t, db)

	archive, err := exporter.Export(ctx)
	require.NoError(t, err)
	delete(archive.Tables, "products")

	require.NoError(t, exporter.Import(ctx, archive))

	var productCount int64
	require.NoError(t, db.Model(&catalog.Product{}).Count(&productCount).Error)
	assert.Equal(t, int64(0), productCount, "a table absent from the archive is left empty")

	var categoryCount int64
	require.NoError(t, db.Model(&catalog.Category{}).Count(&categoryCount).Error)
	assert.Equal(t, int64(1), categoryCount)
}
