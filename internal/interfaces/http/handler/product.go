package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	syncapp "github.com/shopsync/backend/internal/application/integration"
	"github.com/shopsync/backend/internal/domain/catalog"
	"github.com/shopsync/backend/internal/interfaces/http/dto"
	"github.com/shopsync/backend/internal/interfaces/http/middleware"
)

// ProductHandler handles catalog API endpoints
type ProductHandler struct {
	BaseHandler
	products catalog.ProductRepository
	variants catalog.VariantRepository
	exports  *syncapp.ExportService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products catalog.ProductRepository, variants catalog.VariantRepository, exports *syncapp.ExportService) *ProductHandler {
	return &ProductHandler{products: products, variants: variants, exports: exports}
}

// RegisterRoutes registers catalog routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.POST("", h.Create)
		products.GET("/:id", h.Get)
		products.POST("/:id/push", h.Push)
		products.DELETE("/:id", h.Delete)
	}
	rg.PUT("/variants/:id/stock", h.SetStock)
}

// VariantResponse represents a variant in API responses
type VariantResponse struct {
	ID                      string  `json:"id"`
	ExternalID              *string `json:"external_id,omitempty"`
	ExternalInventoryItemID *string `json:"external_inventory_item_id,omitempty"`
	SKU                     *string `json:"sku,omitempty"`
	Title                   string  `json:"title,omitempty"`
	Option1                 string  `json:"option1,omitempty"`
	Option2                 string  `json:"option2,omitempty"`
	Option3                 string  `json:"option3,omitempty"`
	Price                   string  `json:"price"`
	CompareAtPrice          *string `json:"compare_at_price,omitempty"`
	StockQuantity           int64   `json:"stock_quantity"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          string            `json:"id"`
	ExternalID  *string           `json:"external_id,omitempty"`
	Title       string            `json:"title"`
	BodyHTML    string            `json:"body_html,omitempty"`
	ProductType string            `json:"product_type,omitempty"`
	Vendor      string            `json:"vendor,omitempty"`
	Status      string            `json:"status"`
	Version     int               `json:"version"`
	Variants    []VariantResponse `json:"variants"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID.String(),
		ExternalID:  p.ExternalID,
		Title:       p.Title,
		BodyHTML:    p.BodyHTML,
		ProductType: p.ProductType,
		Vendor:      p.Vendor,
		Status:      string(p.Status),
		Version:     p.Version,
		Variants:    make([]VariantResponse, 0, len(p.Variants)),
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		vr := VariantResponse{
			ID:                      v.ID.String(),
			ExternalID:              v.ExternalID,
			ExternalInventoryItemID: v.ExternalInventoryItemID,
			SKU:                     v.SKU,
			Title:                   v.Title,
			Option1:                 v.Option1,
			Option2:                 v.Option2,
			Option3:                 v.Option3,
			Price:                   v.Price.StringFixed(2),
			StockQuantity:           v.StockQuantity,
		}
		if v.CompareAtPrice != nil {
			s := v.CompareAtPrice.StringFixed(2)
			vr.CompareAtPrice = &s
		}
		resp.Variants = append(resp.Variants, vr)
	}
	return resp
}

// List returns a page of products
func (h *ProductHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	products, total, err := h.products.List(c.Request.Context(), (req.Page-1)*req.PageSize, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	items := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// Get returns one product by id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	product, err := h.products.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// Create creates a product locally and on the platform in one unit
func (h *ProductHandler) Create(c *gin.Context) {
	var input syncapp.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	product, err := h.exports.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProductResponse(product))
}

// Push sends the current local state of a product to the platform
func (h *ProductHandler) Push(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.exports.UpdateProduct(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Delete removes a product from the platform and locally
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.exports.DeleteProduct(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetStockRequest sets the on-hand quantity of a variant
type SetStockRequest struct {
	Quantity *int64 `json:"quantity" binding:"required"`
}

// SetStock sets a variant's stock locally and mirrors it to the platform
func (h *ProductHandler) SetStock(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if err := h.exports.SetStock(c.Request.Context(), id, *req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}
	variant, err := h.variants.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"variant_id":     variant.ID.String(),
		"stock_quantity": variant.StockQuantity,
	})
}

func (h *ProductHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid id")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
