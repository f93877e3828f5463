package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	syncapp "github.com/shopsync/backend/internal/application/integration"
	"github.com/shopsync/backend/internal/domain/integration"
	"github.com/shopsync/backend/internal/infrastructure/shopify"
	"github.com/shopsync/backend/internal/interfaces/http/dto"
)

// defaultMaxWebhookBody caps a delivery body at 1 MiB, matching the
// platform's own webhook payload limit.
const defaultMaxWebhookBody = 1 << 20

// WebhookHandler receives push deliveries from the platform
type WebhookHandler struct {
	BaseHandler
	webhooks *syncapp.WebhookService
	maxBody  int64
	logger   *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler. maxBody caps the
// delivery size in bytes; zero or negative selects the default.
func NewWebhookHandler(webhooks *syncapp.WebhookService, maxBody int64, logger *zap.Logger) *WebhookHandler {
	if maxBody <= 0 {
		maxBody = defaultMaxWebhookBody
	}
	return &WebhookHandler{webhooks: webhooks, maxBody: maxBody, logger: logger}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/shopify", h.Receive)
}

// WebhookAck is the response body for a processed delivery
type WebhookAck struct {
	EventID      string `json:"event_id,omitempty"`
	State        string `json:"state"`
	Deduplicated bool   `json:"deduplicated,omitempty"`
}

// Receive handles one webhook delivery. The body is read raw before any
// decoding; the signature covers these exact bytes.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBody+1))
	if err != nil {
		h.BadRequest(c, "unreadable request body")
		return
	}
	if int64(len(body)) > h.maxBody {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBadRequest, "webhook body too large")
		return
	}

	result := h.webhooks.HandleDelivery(c.Request.Context(), syncapp.WebhookDelivery{
		Topic:     c.GetHeader(shopify.HeaderTopic),
		EventID:   c.GetHeader(shopify.HeaderEventID),
		Signature: c.GetHeader(shopify.HeaderHmac),
		Body:      body,
	})

	ack := WebhookAck{
		EventID:      result.EventID,
		State:        string(result.State),
		Deduplicated: result.Deduplicated,
	}
	switch result.State {
	case integration.StateCommitted:
		h.Success(c, ack)
	case integration.StateRejected:
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeInvalidSignature, result.Error)
	default:
		// A 5xx tells the platform to redeliver; the event id keeps
		// the retry idempotent once the unit finally commits.
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, result.Error)
	}
}
