package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	syncapp "github.com/shopsync/backend/internal/application/integration"
	"github.com/shopsync/backend/internal/domain/integration"
	"github.com/shopsync/backend/internal/interfaces/http/dto"
)

// SyncHandler triggers pull imports from the platform
type SyncHandler struct {
	BaseHandler
	imports *syncapp.ImportService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(imports *syncapp.ImportService) *SyncHandler {
	return &SyncHandler{imports: imports}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/import", h.ImportAll)
		sync.POST("/import/:external_id", h.ImportOne)
	}
}

// ImportAll pulls every product from the platform. The call is
// synchronous; each product commits in its own transaction, so a partial
// summary reflects real persisted progress.
func (h *SyncHandler) ImportAll(c *gin.Context) {
	summary, err := h.imports.ImportAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.Response{
			Success: false,
			Data:    summary,
			Error:   &dto.ErrorInfo{Code: dto.ErrCodePlatformUnreachable, Message: err.Error()},
		})
		return
	}
	h.Success(c, summary)
}

// ImportOne pulls a single product by its platform id
func (h *SyncHandler) ImportOne(c *gin.Context) {
	externalID := c.Param("external_id")
	result, err := h.imports.ImportProduct(c.Request.Context(), externalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.State != integration.StateCommitted {
		c.JSON(http.StatusUnprocessableEntity, dto.Response{
			Success: false,
			Data:    result,
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeValidation, Message: result.Error},
		})
		return
	}
	h.Success(c, result)
}
