package inventory

import (
	"sort"
	"time"

	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BatchAllocation records how much of an order line a batch fulfils
type BatchAllocation struct {
	BatchID     uuid.UUID
	BatchNumber string
	Quantity    int
}

// FEFOAllocator selects batches First Expired First Out
// Earliest expiry is consumed first so short-dated stock leaves the shelf before it is wasted
type FEFOAllocator struct{}

// NewFEFOAllocator creates a new FEFO allocator
func NewFEFOAllocator() *FEFOAllocator {
	return &FEFOAllocator{}
}

// Allocate distributes the requested quantity across sellable batches
// Returns ErrInsufficientStock when the batches cannot cover the quantity
func (a *FEFOAllocator) Allocate(batches []StockBatch, quantity int, at time.Time) ([]BatchAllocation, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Allocation quantity must be positive")
	}
	if at.IsZero() {
		at = time.Now()
	}

	sellable := make([]StockBatch, 0, len(batches))
	for _, b := range batches {
		if b.IsSellable(at) {
			sellable = append(sellable, b)
		}
	}

	sort.Slice(sellable, func(i, j int) bool {
		return sellable[i].ExpiryDate.Before(sellable[j].ExpiryDate)
	})

	remaining := quantity
	allocations := make([]BatchAllocation, 0, len(sellable))
	for _, b := range sellable {
		if remaining == 0 {
			break
		}
		take := b.Quantity
		if take > remaining {
			take = remaining
		}
		allocations = append(allocations, BatchAllocation{
			BatchID:     b.ID,
			BatchNumber: b.BatchNumber,
			Quantity:    take,
		})
		remaining -= take
	}

	if remaining > 0 {
		return nil, shared.ErrInsufficientStock
	}

	return allocations, nil
}

// SellableQuantity sums the quantity across sellable batches
func SellableQuantity(batches []StockBatch, at time.Time) int {
	if at.IsZero() {
		at = time.Now()
	}
	total := 0
	for _, b := range batches {
		if b.IsSellable(at) {
			total += b.Quantity
		}
	}
	return total
}
