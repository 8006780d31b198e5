// Package reliability persists the delivery guarantees around payment
// webhooks and transactional email: webhook dedup and at-most-one email
// send per (order, type) pair.
package reliability

import (
	"context"

	"gorm.io/gorm"

	"github.com/s4trading/storefront-backend/pkg/db"
	"github.com/s4trading/storefront-backend/pkg/db/models"
	"github.com/s4trading/storefront-backend/pkg/enums"
)

const maxErrorLen = 700

// Repository manages the webhook event ledger and email send claims.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	RecordEvent(ctx context.Context, eventID, eventType string, status enums.WebhookStatus) error

	ClaimEmailSend(ctx context.Context, orderID string, emailType enums.EmailType) (bool, error)
	ReleaseEmailClaim(ctx context.Context, orderID string, emailType enums.EmailType) error
	AttachProviderMessageID(ctx context.Context, orderID string, emailType enums.EmailType, messageID string) error
	RecordEmailFailure(ctx context.Context, orderID string, emailType enums.EmailType, message string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a reliability repository bound to the provided database.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StripeWebhookEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordEvent inserts the dedup row. A concurrent duplicate delivery loses
// the primary-key race; that is success, not an error.
func (r *repository) RecordEvent(ctx context.Context, eventID, eventType string, status enums.WebhookStatus) error {
	event := &models.StripeWebhookEvent{
		EventID:   eventID,
		EventType: eventType,
		Status:    status,
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return err
	}
	return nil
}

// ClaimEmailSend returns true when this caller won the insert for the
// (order, type) pair and false when another send already holds it.
func (r *repository) ClaimEmailSend(ctx context.Context, orderID string, emailType enums.EmailType) (bool, error) {
	claim := &models.OrderEmailEvent{
		OrderID:   orderID,
		EmailType: emailType,
	}
	if err := r.db.WithContext(ctx).Create(claim).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReleaseEmailClaim removes an unfulfilled claim so a later retry can win
// it again. Claims with a provider message id are kept: the email went out.
func (r *repository) ReleaseEmailClaim(ctx context.Context, orderID string, emailType enums.EmailType) error {
	return r.db.WithContext(ctx).
		Where("order_id = ? AND email_type = ? AND provider_message_id IS NULL", orderID, emailType).
		Delete(&models.OrderEmailEvent{}).Error
}

func (r *repository) AttachProviderMessageID(ctx context.Context, orderID string, emailType enums.EmailType, messageID string) error {
	updates := map[string]any{
		"provider_message_id": messageID,
		"last_error":          nil,
	}
	return r.db.WithContext(ctx).
		Model(&models.OrderEmailEvent{}).
		Where("order_id = ? AND email_type = ?", orderID, emailType).
		Updates(updates).Error
}

func (r *repository) RecordEmailFailure(ctx context.Context, orderID string, emailType enums.EmailType, message string) error {
	if len(message) > maxErrorLen {
		message = message[:maxErrorLen]
	}
	return r.db.WithContext(ctx).
		Model(&models.OrderEmailEvent{}).
		Where("order_id = ? AND email_type = ?", orderID, emailType).
		Update("last_error", message).Error
}
