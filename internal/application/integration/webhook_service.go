package integration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/integration"
	"github.com/shopsync/backend/internal/infrastructure/shopify"
)

// WebhookDelivery is one push delivery as the HTTP layer captured it.
// Body holds the exact raw request bytes; the signature was computed
// over them and verification happens before any decoding.
type WebhookDelivery struct {
	Topic     string
	EventID   string
	Signature string
	Body      []byte
}

// WebhookService authenticates push deliveries and hands them to the
// orchestrator.
type WebhookService struct {
	secret     string
	normalizer *Normalizer
	orch       *Orchestrator
	logger     *zap.Logger
}

// NewWebhookService creates a webhook service
func NewWebhookService(webhookSecret string, orch *Orchestrator, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		secret:     webhookSecret,
		normalizer: NewNormalizer(logger),
		orch:       orch,
		logger:     logger,
	}
}

// HandleDelivery verifies, normalizes, and processes one delivery. The
// returned result carries the terminal state: Rejected for a bad
// signature, Failed for anything that rolled back, Committed otherwise.
func (s *WebhookService) HandleDelivery(ctx context.Context, delivery WebhookDelivery) integration.UnitResult {
	result := integration.UnitResult{EventID: delivery.EventID, State: integration.StateReceived}

	if s.secret == "" {
		result.State = integration.StateFailed
		result.Error = integration.ErrConfiguration.Error()
		s.logger.Error("webhook received but no secret configured", zap.String("topic", delivery.Topic))
		return result
	}

	if !shopify.VerifyWebhookSignature(s.secret, delivery.Body, delivery.Signature) {
		result.State = integration.StateRejected
		result.Error = integration.ErrAuthentication.Error()
		s.logger.Warn("webhook signature rejected",
			zap.String("topic", delivery.Topic),
			zap.String("event_id", delivery.EventID))
		return result
	}
	result.State = integration.StateAuthenticated

	rec, err := s.normalizer.FromWebhook(delivery.Topic, delivery.EventID, delivery.Body)
	if err != nil {
		result.State = integration.StateFailed
		result.Error = fmt.Sprintf("%s: %s", delivery.Topic, err.Error())
		return result
	}
	if rec == nil {
		// Unhandled topic or nothing to do. Acknowledge so the
		// platform stops redelivering.
		result.State = integration.StateCommitted
		return result
	}

	return s.orch.Run(ctx, rec)
}
