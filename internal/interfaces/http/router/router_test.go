package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ping(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()

	catalog := NewGroup("/catalog")
	catalog.GET("/products", ping("products"))

	NewRouter(engine).Register(catalog).Setup()

	w := get(engine, "/api/v1/catalog/products")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "products", w.Body.String())

	w = get(engine, "/catalog/products")
	assert.Equal(t, http.StatusNotFound, w.Code, "routes live under the version prefix")
}

func TestRouterAPIVersion(t *testing.T) {
	engine := gin.New()

	g := NewGroup("/orders")
	g.GET("", ping("orders"))

	NewRouter(engine, WithAPIVersion("v2")).Register(g).Setup()

	assert.Equal(t, http.StatusOK, get(engine, "/api/v2/orders").Code)
	assert.Equal(t, http.StatusNotFound, get(engine, "/api/v1/orders").Code)
}

func TestGroupMiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()

	admin := NewGroup("/admin")
	admin.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Guard", "on")
		c.Next()
	})
	admin.GET("/reports", ping("reports"))

	backups := admin.Group("/backups")
	backups.GET("", ping("backups"))

	NewRouter(engine).Register(admin).Setup()

	w := get(engine, "/api/v1/admin/reports")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "on", w.Header().Get("X-Guard"))

	w = get(engine, "/api/v1/admin/backups")
	assert.Equal(t, http.StatusOK, w.Code, "subgroup inherits the parent prefix")
	assert.Equal(t, "on", w.Header().Get("X-Guard"), "subgroup inherits parent middleware")
}
