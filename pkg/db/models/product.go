package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/s4trading/storefront-backend/pkg/enums"
)

// Product is a catalog item served by the direct commerce backend.
type Product struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name           string                `gorm:"column:name;not null"`
	Category       enums.ProductCategory `gorm:"column:category;type:text;not null;default:'general'"`
	Price          decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Unit           string                `gorm:"column:unit;not null;default:'Pack'"`
	Description    string                `gorm:"column:description"`
	ImageURL       string                `gorm:"column:image_url"`
	Certifications []string              `gorm:"column:certifications;type:jsonb;serializer:json"`
	StockLevel     int                   `gorm:"column:stock_level;not null;default:0"`
	StockStatus    enums.StockStatus     `gorm:"column:stock_status;type:text;not null;default:'Low Stock'"`
	IdealFor       *string               `gorm:"column:ideal_for"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
