package persistence

import (
	"context"
	"time"

	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/domain/identity"
	"github.com/epharmacy/backend/internal/domain/inventory"
	"github.com/epharmacy/backend/internal/domain/order"
	"github.com/epharmacy/backend/internal/domain/prescription"
	"github.com/epharmacy/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Statuses excluded from revenue: orders that never became a sale
var nonSaleStatuses = []order.Status{order.StatusPending, order.StatusCancelled}

// GormReportRepository implements report.Repository with read-side queries
// across the order, inventory, customer, and prescription tables
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// SalesBetween builds the sales report for a date range
func (r *GormReportRepository) SalesBetween(ctx context.Context, from, to time.Time, topN int) (*report.SalesReport, error) {
	sales := conn(ctx, r.db).
		Model(&order.Order{}).
		Where("created_at >= ? AND created_at < ? AND status NOT IN ?", from, to, nonSaleStatuses)

	var totals struct {
		OrderCount int64
		Revenue    decimal.Decimal
		TaxAmount  decimal.Decimal
	}
	if err := sales.Session(&gorm.Session{}).
		Select("COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(tax_amount), 0) AS tax_amount").
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	var dailyRows []struct {
		Day        string
		OrderCount int64
		Revenue    decimal.Decimal
	}
	if err := sales.Session(&gorm.Session{}).
		Select("DATE(created_at) AS day, COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue").
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&dailyRows).Error; err != nil {
		return nil, err
	}

	daily := make([]report.DailySales, 0, len(dailyRows))
	for _, row := range dailyRows {
		day, err := parseDay(row.Day)
		if err != nil {
			return nil, err
		}
		daily = append(daily, report.DailySales{
			Date:       day,
			OrderCount: row.OrderCount,
			Revenue:    row.Revenue,
		})
	}

	var topProducts []report.TopProduct
	if err := conn(ctx, r.db).
		Model(&order.Item{}).
		Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) AS quantity_sold, COALESCE(SUM(order_items.line_total), 0) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ? AND orders.status NOT IN ?", from, to, nonSaleStatuses).
		Group("order_items.product_id, order_items.product_name").
		Order("quantity_sold DESC").
		Limit(topN).
		Scan(&topProducts).Error; err != nil {
		return nil, err
	}

	return &report.SalesReport{
		From:        from,
		To:          to,
		OrderCount:  totals.OrderCount,
		Revenue:     totals.Revenue,
		TaxAmount:   totals.TaxAmount,
		Daily:       daily,
		TopProducts: topProducts,
	}, nil
}

// Inventory builds the stock report
func (r *GormReportRepository) Inventory(ctx context.Context, expiryDays int) (*report.InventoryReport, error) {
	out := &report.InventoryReport{StockValue: decimal.Zero}

	if err := conn(ctx, r.db).
		Model(&catalog.Product{}).
		Where("is_active = ?", true).
		Count(&out.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := conn(ctx, r.db).
		Model(&inventory.StockBatch{}).
		Where("is_active = ?", true).
		Count(&out.TotalBatches).Error; err != nil {
		return nil, err
	}

	var value struct {
		StockValue decimal.Decimal
	}
	if err := conn(ctx, r.db).
		Model(&inventory.StockBatch{}).
		Select("COALESCE(SUM(quantity * cost_price), 0) AS stock_value").
		Where("is_active = ?", true).
		Scan(&value).Error; err != nil {
		return nil, err
	}
	out.StockValue = value.StockValue

	lowStock, err := r.batchAlerts(ctx, "stock_batches.is_active = ? AND stock_batches.quantity <= stock_batches.low_stock_threshold", true)
	if err != nil {
		return nil, err
	}
	out.LowStockBatches = lowStock

	now := time.Now()
	expiring, err := r.batchAlerts(ctx,
		"stock_batches.is_active = ? AND stock_batches.quantity > 0 AND stock_batches.expiry_date > ? AND stock_batches.expiry_date <= ?",
		true, now, now.AddDate(0, 0, expiryDays))
	if err != nil {
		return nil, err
	}
	out.ExpiringBatches = expiring

	return out, nil
}

// Customers builds the customer report; newSince bounds "new customers"
func (r *GormReportRepository) Customers(ctx context.Context, newSince time.Time, topN int) (*report.CustomerReport, error) {
	out := &report.CustomerReport{}

	customers := conn(ctx, r.db).Model(&identity.Customer{}).Where("role = ?", identity.RoleCustomer)
	if err := customers.Session(&gorm.Session{}).Count(&out.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := customers.Session(&gorm.Session{}).Where("is_active = ?", true).Count(&out.ActiveCustomers).Error; err != nil {
		return nil, err
	}
	if err := customers.Session(&gorm.Session{}).Where("created_at >= ?", newSince).Count(&out.NewCustomers).Error; err != nil {
		return nil, err
	}

	var top []struct {
		CustomerID string
		Name       string
		Email      string
		OrderCount int64
		TotalSpend decimal.Decimal
	}
	if err := conn(ctx, r.db).
		Model(&order.Order{}).
		Select("orders.customer_id, (customers.first_name || ' ' || customers.last_name) AS name, customers.email, COUNT(*) AS order_count, COALESCE(SUM(orders.total_amount), 0) AS total_spend").
		Joins("JOIN customers ON customers.id = orders.customer_id").
		Where("orders.status NOT IN ?", nonSaleStatuses).
		Group("orders.customer_id, customers.first_name, customers.last_name, customers.email").
		Order("total_spend DESC").
		Limit(topN).
		Scan(&top).Error; err != nil {
		return nil, err
	}

	out.TopCustomers = make([]report.TopCustomer, 0, len(top))
	for _, row := range top {
		id, err := parseID(row.CustomerID)
		if err != nil {
			return nil, err
		}
		out.TopCustomers = append(out.TopCustomers, report.TopCustomer{
			CustomerID: id,
			Name:       row.Name,
			Email:      row.Email,
			OrderCount: row.OrderCount,
			TotalSpend: row.TotalSpend,
		})
	}

	return out, nil
}

// Prescriptions builds the review queue report
// The average review time is computed in Go to stay portable across drivers
func (r *GormReportRepository) Prescriptions(ctx context.Context) (*report.PrescriptionReport, error) {
	out := &report.PrescriptionReport{}

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
	for _, row := range rows {
		switch row.Status {
		case prescription.StatusPending:
			out.Pending = row.Count
		case prescription.StatusApproved:
			out.Approved = row.Count
		case prescription.StatusRejected:
			out.Rejected = row.Count
		}
	}

	var reviewed []struct {
		CreatedAt  time.Time
		ReviewedAt time.Time
	}
	if err := conn(ctx, r.db).
		Model(&prescription.Prescription{}).
		Select("created_at, reviewed_at").
		Where("reviewed_at IS NOT NULL").
		Scan(&reviewed).Error; err != nil {
		return nil, err
	}
	if len(reviewed) > 0 {
		var totalHours float64
		for _, row := range reviewed {
			totalHours += row.ReviewedAt.Sub(row.CreatedAt).Hours()
		}
		out.AvgReviewHours = totalHours / float64(len(reviewed))
	}

	return out, nil
}

func (r *GormReportRepository) batchAlerts(ctx context.Context, cond string, args ...interface{}) ([]report.BatchAlert, error) {
	var rows []struct {
		BatchID     string
		ProductID   string
		ProductName string
		BatchNumber string
		Quantity    int
		ExpiryDate  time.Time
	}
	if err := conn(ctx, r.db).
		Model(&inventory.StockBatch{}).
		Select("stock_batches.id AS batch_id, stock_batches.product_id, products.name AS product_name, stock_batches.batch_number, stock_batches.quantity, stock_batches.expiry_date").
		Joins("JOIN products ON products.id = stock_batches.product_id").
		Where(cond, args...).
		Order("stock_batches.expiry_date ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	alerts := make([]report.BatchAlert, 0, len(rows))
	for _, row := range rows {
		batchID, err := parseID(row.BatchID)
		if err != nil {
			return nil, err
		}
		productID, err := parseID(row.ProductID)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, report.BatchAlert{
			BatchID:     batchID,
			ProductID:   productID,
			ProductName: row.ProductName,
			BatchNumber: row.BatchNumber,
			Quantity:    row.Quantity,
			ExpiryDate:  row.ExpiryDate,
		})
	}
	return alerts, nil
}

// Ensure GormReportRepository implements Repository
var _ report.Repository = (*GormReportRepository)(nil)
