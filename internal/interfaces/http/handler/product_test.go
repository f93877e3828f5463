package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	syncapp "github.com/shopsync/backend/internal/application/integration"
	"github.com/shopsync/backend/internal/domain/catalog"
	"github.com/shopsync/backend/internal/domain/integration"
	"github.com/shopsync/backend/internal/domain/inventory"
	"github.com/shopsync/backend/internal/infrastructure/persistence"
)

// stubPlatform mints deterministic identifiers and accepts everything
type stubPlatform struct {
	nextID int64
}

func (p *stubPlatform) FetchProduct(context.Context, string) (*integration.RemoteProduct, error) {
	return nil, integration.ErrRemoteNotFound
}

func (p *stubPlatform) ListProducts(context.Context, integration.PageRequest) (*integration.ProductPage, error) {
	return &integration.ProductPage{}, nil
}

func (p *stubPlatform) CreateProduct(_ context.Context, export integration.ProductExport) (*integration.RemoteProduct, error) {
	p.nextID++
	remote := &integration.RemoteProduct{ID: fmt.Sprintf("r-%d", p.nextID)}
	for i, v := range export.Variants {
		remote.Variants = append(remote.Variants, integration.RemoteVariant{
			ID:              fmt.Sprintf("r-%d-v-%d", p.nextID, i),
			InventoryItemID: fmt.Sprintf("r-%d-i-%d", p.nextID, i),
			SKU:             v.SKU,
		})
	}
	return remote, nil
}

func (p *stubPlatform) UpdateProduct(_ context.Context, export integration.ProductExport) (*integration.RemoteProduct, error) {
	return &integration.RemoteProduct{ID: export.ExternalID}, nil
}

func (p *stubPlatform) DeleteProduct(context.Context, string) error { return nil }

func (p *stubPlatform) SetInventoryLevel(context.Context, string, string, int64) error { return nil }

func (p *stubPlatform) AdjustInventoryLevel(context.Context, string, string, int64) error { return nil }

func (p *stubPlatform) ListLocations(context.Context) ([]integration.Location, error) {
	return nil, nil
}

func setupProductRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalog.Product{}, &catalog.Variant{}, &integration.ProcessedWebhookEvent{}))

	logger := zap.NewNop()
	ledger := inventory.NewLedger(5, nil, logger)
	exports := syncapp.NewExportService(persistence.NewGormUnitOfWork(db), &stubPlatform{}, ledger, logger)

	engine := gin.New()
	rg := engine.Group("/api/v1")
	NewProductHandler(persistence.NewGormProductRepository(db), persistence.NewGormVariantRepository(db), exports).RegisterRoutes(rg)
	return engine, db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func createTestProduct(t *testing.T, engine *gin.Engine) ProductResponse {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title":  "Handler Chair",
		"status": "active",
		"variants": []map[string]interface{}{
			{"sku": "HC-1", "price": "120.00"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestProductEndpointCreate(t *testing.T) {
	engine, _ := setupProductRouter(t)

	created := createTestProduct(t, engine)
	require.NotNil(t, created.ExternalID)
	assert.Equal(t, "r-1", *created.ExternalID)
	require.Len(t, created.Variants, 1)
	assert.NotNil(t, created.Variants[0].ExternalID)
	assert.Equal(t, "120.00", created.Variants[0].Price)
}

func TestProductEndpointCreateValidation(t *testing.T) {
	engine, _ := setupProductRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title": "No Variants",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductEndpointGetAndList(t *testing.T) {
	engine, _ := setupProductRouter(t)
	created := createTestProduct(t, engine)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/products?page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []ProductResponse `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Meta.Total)
	require.Len(t, resp.Data, 1)
}

func TestProductEndpointGetMissing(t *testing.T) {
	engine, _ := setupProductRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/products/6b1e815e-33c1-4e9a-9a5e-0b6f9d3a2c01", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductEndpointDelete(t *testing.T) {
	engine, _ := setupProductRouter(t)
	created := createTestProduct(t, engine)

	w := doJSON(t, engine, http.MethodDelete, "/api/v1/products/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductEndpointSetStock(t *testing.T) {
	engine, db := setupProductRouter(t)
	created := createTestProduct(t, engine)
	variantID := created.Variants[0].ID

	w := doJSON(t, engine, http.MethodPut, "/api/v1/variants/"+variantID+"/stock", map[string]interface{}{
		"quantity": 25,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p, err := persistence.NewGormProductRepository(db).FindByExternalID(context.Background(), *created.ExternalID)
	require.NoError(t, err)
	require.Len(t, p.Variants, 1)
	assert.Equal(t, int64(25), p.Variants[0].StockQuantity)

	w = doJSON(t, engine, http.MethodPut, "/api/v1/variants/"+variantID+"/stock", map[string]interface{}{
		"quantity": -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
