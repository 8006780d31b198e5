package models

import (
	"time"

	"github.com/s4trading/storefront-backend/pkg/enums"
)

// OrderEmailEvent claims a transactional email send for an order. The
// composite primary key is the exclusivity guarantee: only one worker wins
// the insert for a given (order, type) pair.
type OrderEmailEvent struct {
	OrderID           string          `gorm:"column:order_id;primaryKey"`
	EmailType         enums.EmailType `gorm:"column:email_type;type:text;primaryKey"`
	SentAt            time.Time       `gorm:"column:sent_at;autoCreateTime"`
	ProviderMessageID *string         `gorm:"column:provider_message_id"`
	LastError         *string         `gorm:"column:last_error"`
}
