package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/s4trading/storefront-backend/pkg/enums"
	"github.com/s4trading/storefront-backend/pkg/types"
)

// MarketingEvent is one funnel event captured from the storefront.
type MarketingEvent struct {
	ID        uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	EventName enums.MarketingEventName `gorm:"column:event_name;type:text;index;not null"`
	UserID    *string                  `gorm:"column:user_id"`
	OrderID   *string                  `gorm:"column:order_id"`
	Metadata  *types.JSONMap           `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime;index"`
}

// MarketingLead is a captured contact from the lead form.
type MarketingLead struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;not null"`
	Source    *string   `gorm:"column:source"`
	Notes     *string   `gorm:"column:notes"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
