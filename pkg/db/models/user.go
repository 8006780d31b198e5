package models

import (
	"time"

	"github.com/s4trading/storefront-backend/pkg/types"
)

// User is the restaurant profile row. Identity lives with the external auth
// provider; this row caches profile data and the headless-backend customer id.
type User struct {
	ID               string         `gorm:"column:id;primaryKey"`
	Role             string         `gorm:"column:role;not null;default:'customer'"`
	RestaurantName   *string        `gorm:"column:restaurant_name"`
	Email            *string        `gorm:"column:email;index"`
	Phone            *string        `gorm:"column:phone"`
	DeliveryAddress  *types.JSONMap `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	MedusaCustomerID *string        `gorm:"column:medusa_customer_id"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
