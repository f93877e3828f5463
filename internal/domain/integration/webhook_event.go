package integration

import (
	"time"

	"github.com/shopsync/backend/internal/domain/shared"
)

// ProcessedWebhookEvent is the durable dedup record for push deliveries.
// It is inserted in the same transaction as the entity writes it guards,
// so a replayed event either sees the row and short-circuits or loses
// the insert race and rolls back.
type ProcessedWebhookEvent struct {
	shared.BaseEntity
	EventID     string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	Topic       string    `gorm:"type:varchar(64);not null"`
	ProcessedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name
func (ProcessedWebhookEvent) TableName() string {
	return "processed_webhook_events"
}

// NewProcessedWebhookEvent records a delivery as handled
func NewProcessedWebhookEvent(eventID, topic string) *ProcessedWebhookEvent {
	return &ProcessedWebhookEvent{
		BaseEntity:  shared.NewBaseEntity(),
		EventID:     eventID,
		Topic:       topic,
		ProcessedAt: time.Now(),
	}
}
