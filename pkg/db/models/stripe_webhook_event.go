package models

import (
	"time"

	"github.com/s4trading/storefront-backend/pkg/enums"
)

// StripeWebhookEvent is the durable dedup ledger for received webhook events.
// The primary key on event_id makes concurrent duplicate deliveries collide.
type StripeWebhookEvent struct {
	EventID     string              `gorm:"column:event_id;primaryKey"`
	EventType   string              `gorm:"column:event_type;not null"`
	Status      enums.WebhookStatus `gorm:"column:status;type:text;not null"`
	ProcessedAt time.Time           `gorm:"column:processed_at;autoCreateTime"`
}
