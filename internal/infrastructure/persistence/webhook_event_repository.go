package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopsync/backend/internal/domain/integration"
	"github.com/shopsync/backend/internal/domain/shared"
)

// GormWebhookEventRepository implements WebhookEventRepository using GORM
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewGormWebhookEventRepository creates a new GormWebhookEventRepository
func NewGormWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// Insert writes the dedup record, doing nothing on conflict. A zero
// rows-affected result means another transaction already recorded the
// same event id.
func (r *GormWebhookEventRepository) Insert(ctx context.Context, event *integration.ProcessedWebhookEvent) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(event)
	if result.Error != nil {
		return false, fmt.Errorf("inserting webhook event %s: %w", event.EventID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// FindByEventID finds a dedup record by event id
func (r *GormWebhookEventRepository) FindByEventID(ctx context.Context, eventID string) (*integration.ProcessedWebhookEvent, error) {
	var event integration.ProcessedWebhookEvent
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// DeleteOlderThan prunes dedup records past the retention window
func (r *GormWebhookEventRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	result := r.db.WithContext(ctx).
		Where("processed_at < ?", cutoff).
		Delete(&integration.ProcessedWebhookEvent{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

var _ integration.WebhookEventRepository = (*GormWebhookEventRepository)(nil)
