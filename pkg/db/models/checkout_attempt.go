package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/s4trading/storefront-backend/pkg/enums"
	"github.com/s4trading/storefront-backend/pkg/types"
)

// CheckoutAttempt is the pre-payment record created before a hosted payment
// session. The webhook (or the client-confirmation fallback) finalizes it into
// a backend order; the attempt row is the correlation point between the two.
type CheckoutAttempt struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	UserID            string                 `gorm:"column:user_id;index;not null"`
	MedusaCustomerID  *string                `gorm:"column:medusa_customer_id"`
	OrderNumber       string                 `gorm:"column:order_number;not null"`
	PaymentMethod     enums.PaymentMethod    `gorm:"column:payment_method;type:text;not null"`
	Status            enums.AttemptStatus    `gorm:"column:status;type:text;not null;default:'pending_payment'"`
	Items             []types.OrderItem      `gorm:"column:items;type:jsonb;serializer:json"`
	Subtotal          decimal.Decimal        `gorm:"column:subtotal;type:numeric(12,2);not null"`
	CustomerEmail     string                 `gorm:"column:customer_email;not null"`
	DeliveryDetails   *types.DeliveryDetails `gorm:"column:delivery_details;type:jsonb;serializer:json"`
	MedusaOrderID     *string                `gorm:"column:medusa_order_id"`
	StripeSessionID   *string                `gorm:"column:stripe_session_id"`
	FailureReason     *string                `gorm:"column:failure_reason"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
