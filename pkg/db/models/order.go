package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/s4trading/storefront-backend/pkg/enums"
	"github.com/s4trading/storefront-backend/pkg/types"
)

// Order is a storefront order owned by the direct commerce backend.
type Order struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber         string            `gorm:"column:order_number;uniqueIndex;not null"`
	UserID              string            `gorm:"column:user_id;index;not null"`
	Items               []types.OrderItem `gorm:"column:items;type:jsonb;serializer:json"`
	TotalAmount         decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	DepositAmount       decimal.Decimal   `gorm:"column:deposit_amount;type:numeric(12,2);not null"`
	DepositPaid         bool              `gorm:"column:deposit_paid;not null;default:false"`
	Status              enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	DeliveryDate        string            `gorm:"column:delivery_date"`
	SpecialInstructions *string           `gorm:"column:special_instructions"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
