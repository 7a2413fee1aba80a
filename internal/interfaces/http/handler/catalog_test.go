package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	catalogapp "github.com/epharmacy/backend/internal/application/catalog"
	"github.com/epharmacy/backend/internal/domain/catalog"
	"github.com/epharmacy/backend/internal/infrastructure/event"
	"github.com/epharmacy/backend/internal/infrastructure/persistence"
	"github.com/epharmacy/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// catalogRouter wires real catalog services over a throwaway sqlite database
func catalogRouter(t *testing.T) (*gin.Engine, *catalogapp.CategoryService, *catalogapp.ProductService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalog.Category{}, &catalog.Product{}))

	log := zap.NewNop()
	categoryRepo := persistence.NewGormCategoryRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, event.NewInMemoryEventBus(log), log)

	categoryHandler := NewCategoryHandler(categoryService)
	productHandler := NewProductHandler(productService)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/catalog/categories", categoryHandler.List)
	api.GET("/catalog/products", productHandler.List)
	api.GET("/catalog/products/:id", productHandler.Get)
	api.POST("/admin/catalog/products", productHandler.Create)

	return r, categoryService, productService
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestProductHandlerCreateAndGet(t *testing.T) {
	r, categoryService, _ := catalogRouter(t)

	cat, err := categoryService.CreateCategory(t.Context(), &catalogapp.CreateCategoryRequest{Name: "Pain Relief"})
	require.NoError(t, err)

	body := `{
		"name": "Paracetamol 500mg",
		"category_id": "` + cat.ID.String() + `",
		"price": "20.50",
		"mrp": "25.00",
		"manufacturer": "Cipla"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/catalog/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	created := resp.Data.(map[string]interface{})
	productID := created["id"].(string)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/"+productID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp = decodeResponse(t, w)
	got := resp.Data.(map[string]interface{})
	assert.Equal(t, "Paracetamol 500mg", got["name"])
}

func TestProductHandlerGetErrors(t *testing.T) {
	r, _, _ := catalogRouter(t)

	t.Run("malformed id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/7f2a1a9e-92d9-4dbb-9c40-6e2a14dd9601", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})
}

func TestProductHandlerListPagination(t *testing.T) {
	r, categoryService, productService := catalogRouter(t)

	cat, err := categoryService.CreateCategory(t.Context(), &catalogapp.CreateCategoryRequest{Name: "Vitamins"})
	require.NoError(t, err)

	for _, name := range []string{"Vitamin C", "Vitamin D3", "Vitamin B12"} {
		_, err := productService.CreateProduct(t.Context(), &catalogapp.CreateProductRequest{
			Name:       name,
			CategoryID: cat.ID,
			Price:      decimal.NewFromInt(150),
			MRP:        decimal.NewFromInt(180),
		})
		require.NoError(t, err)
	}

	// New products have no stock yet, so the unavailable filter must be lifted
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products?include_unavailable=true&page=1&page_size=2", nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(3), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.PageSize)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	assert.Len(t, resp.Data.([]interface{}), 2)
}
