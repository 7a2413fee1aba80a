package catalog

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name                 string           `json:"name" binding:"required,min=1,max=200"`
	Description          string           `json:"description" binding:"max=2000"`
	CategoryID           uuid.UUID        `json:"category_id" binding:"required"`
	Price                decimal.Decimal  `json:"price" binding:"required"`
	MRP                  decimal.Decimal  `json:"mrp" binding:"required"`
	GSTRate              *decimal.Decimal `json:"gst_rate"`
	HSNCode              string           `json:"hsn_code" binding:"max=10"`
	Manufacturer         string           `json:"manufacturer" binding:"max=200"`
	Composition          string           `json:"composition" binding:"max=500"`
	RequiresPrescription bool             `json:"requires_prescription"`
	DosageForm           string           `json:"dosage_form" binding:"max=50"`
	Strength             string           `json:"strength" binding:"max=50"`
	PackSize             string           `json:"pack_size" binding:"max=50"`
	ImageURL             string           `json:"image_url" binding:"omitempty,url,max=500"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name                 *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description          *string          `json:"description" binding:"omitempty,max=2000"`
	CategoryID           *uuid.UUID       `json:"category_id"`
	Price                *decimal.Decimal `json:"price"`
	MRP                  *decimal.Decimal `json:"mrp"`
	GSTRate              *decimal.Decimal `json:"gst_rate"`
	HSNCode              *string          `json:"hsn_code" binding:"omitempty,max=10"`
	Manufacturer         *string          `json:"manufacturer" binding:"omitempty,max=200"`
	Composition          *string          `json:"composition" binding:"omitempty,max=500"`
	RequiresPrescription *bool            `json:"requires_prescription"`
	DosageForm           *string          `json:"dosage_form" binding:"omitempty,max=50"`
	Strength             *string          `json:"strength" binding:"omitempty,max=50"`
	PackSize             *string          `json:"pack_size" binding:"omitempty,max=50"`
	ImageURL             *string          `json:"image_url" binding:"omitempty,url,max=500"`
	IsAvailable          *bool            `json:"is_available"`
}

// ProductListFilter represents storefront search and filter options
type ProductListFilter struct {
	Search               string     `form:"search"`
	CategoryID           *uuid.UUID `form:"category_id"`
	RequiresPrescription *bool      `form:"requires_prescription"`
	MinPrice             *float64   `form:"min_price"`
	MaxPrice             *float64   `form:"max_price"`
	IncludeUnavailable   bool       `form:"include_unavailable"`
	IncludeInactive      bool       `form:"include_inactive"`
	Page                 int        `form:"page" binding:"omitempty,min=1"`
	PageSize             int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy              string     `form:"order_by"`
	OrderDir             string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	CategoryID           uuid.UUID       `json:"category_id"`
	Price                decimal.Decimal `json:"price"`
	MRP                  decimal.Decimal `json:"mrp"`
	GSTRate              decimal.Decimal `json:"gst_rate"`
	HSNCode              string          `json:"hsn_code"`
	Manufacturer         string          `json:"manufacturer"`
	Composition          string          `json:"composition"`
	RequiresPrescription bool            `json:"requires_prescription"`
	DosageForm           string          `json:"dosage_form,omitempty"`
	Strength             string          `json:"strength,omitempty"`
	PackSize             string          `json:"pack_size,omitempty"`
	ImageURL             string          `json:"image_url,omitempty"`
	IsAvailable          bool            `json:"is_available"`
	IsActive             bool            `json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Version              int             `json:"version"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Description:          p.Description,
		CategoryID:           p.CategoryID,
		Price:                p.Price,
		MRP:                  p.MRP,
		GSTRate:              p.EffectiveGSTRate(),
		HSNCode:              p.HSNCode,
		Manufacturer:         p.Manufacturer,
		Composition:          p.Composition,
		RequiresPrescription: p.RequiresPrescription,
		DosageForm:           p.DosageForm,
		Strength:             p.Strength,
		PackSize:             p.PackSize,
		ImageURL:             p.ImageURL,
		IsAvailable:          p.IsAvailable,
		IsActive:             p.IsActive,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
		Version:              p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToProductResponse(&products[i]))
	}
	return out
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
	}
}

// ToCategoryResponses converts a slice of categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, ToCategoryResponse(&categories[i]))
	}
	return out
}
