package integration

import (
	"context"

	"github.com/shopsync/backend/internal/domain/catalog"
)

// WebhookEventRepository persists durable dedup records
type WebhookEventRepository interface {
	// Insert writes the event record, doing nothing on conflict.
	// Returns false when a record with the same event id already
	// exists, which means the delivery was already processed.
	Insert(ctx context.Context, event *ProcessedWebhookEvent) (bool, error)

	FindByEventID(ctx context.Context, eventID string) (*ProcessedWebhookEvent, error)

	// DeleteOlderThan prunes dedup records past the retention window.
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// Repositories bundles the repositories bound to one transaction
type Repositories struct {
	Products catalog.ProductRepository
	Variants catalog.VariantRepository
	Events   WebhookEventRepository
}

// UnitOfWork runs a function inside a single database transaction. The
// repositories passed to fn are bound to that transaction; returning an
// error rolls everything back.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
