package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailySales is revenue and order count for one day
type DailySales struct {
	Date       time.Time       `json:"date"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// TopProduct ranks a product by quantity sold
type TopProduct struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// SalesReport summarises orders between two dates
type SalesReport struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	OrderCount  int64           `json:"order_count"`
	Revenue     decimal.Decimal `json:"revenue"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Daily       []DailySales    `json:"daily"`
	TopProducts []TopProduct    `json:"top_products"`
}

// BatchAlert flags a batch needing attention
type BatchAlert struct {
	BatchID     uuid.UUID `json:"batch_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int       `json:"quantity"`
	ExpiryDate  time.Time `json:"expiry_date"`
}

// InventoryReport summarises stock on hand
type InventoryReport struct {
	TotalProducts   int64           `json:"total_products"`
	TotalBatches    int64           `json:"total_batches"`
	StockValue      decimal.Decimal `json:"stock_value"`
	LowStockBatches []BatchAlert    `json:"low_stock_batches"`
	ExpiringBatches []BatchAlert    `json:"expiring_batches"`
}

// TopCustomer ranks a customer by spend
type TopCustomer struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	OrderCount int64           `json:"order_count"`
	TotalSpend decimal.Decimal `json:"total_spend"`
}

// CustomerReport summarises the customer base
type CustomerReport struct {
	TotalCustomers  int64         `json:"total_customers"`
	ActiveCustomers int64         `json:"active_customers"`
	NewCustomers    int64         `json:"new_customers"`
	TopCustomers    []TopCustomer `json:"top_customers"`
}

// PrescriptionReport summarises the review queue
type PrescriptionReport struct {
	Pending        int64   `json:"pending"`
	Approved       int64   `json:"approved"`
	Rejected       int64   `json:"rejected"`
	AvgReviewHours float64 `json:"avg_review_hours"`
}

// Repository defines the read-side queries behind admin reports
type Repository interface {
	// SalesBetween builds the sales report for a date range
	SalesBetween(ctx context.Context, from, to time.Time, topN int) (*SalesReport, error)

	// Inventory builds the stock report
	Inventory(ctx context.Context, expiryDays int) (*InventoryReport, error)

	// Customers builds the customer report; newSince bounds "new customers"
	Customers(ctx context.Context, newSince time.Time, topN int) (*CustomerReport, error)

	// Prescriptions builds the review queue report
	Prescriptions(ctx context.Context) (*PrescriptionReport, error)
}
