// Package attempts is the checkout attempt ledger: the durable record of an
// in-flight payment created before a backend order exists. Status transitions
// are monotonic; paid is terminal and is never downgraded.
package attempts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/s4trading/storefront-backend/pkg/db/models"
	"github.com/s4trading/storefront-backend/pkg/enums"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
)

// Repository manages persistence for checkout attempts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, attempt *models.CheckoutAttempt) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CheckoutAttempt, error)
	MarkPaid(ctx context.Context, id uuid.UUID, backendOrderID string, sessionID *string) (*models.CheckoutAttempt, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*models.CheckoutAttempt, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an attempt repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, attempt *models.CheckoutAttempt) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if attempt.Status == "" {
		attempt.Status = enums.AttemptStatusPendingPayment
	}
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CheckoutAttempt, error) {
	var attempt models.CheckoutAttempt
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout attempt not found")
		}
		return nil, err
	}
	return &attempt, nil
}

// MarkPaid transitions the attempt to paid and attaches the backend order id.
// Already-paid attempts with an order id attached are returned unchanged so
// webhook retries and double client confirmations are no-ops. A failed
// attempt returns nil: not actionable, the caller must not create an order.
func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, backendOrderID string, sessionID *string) (*models.CheckoutAttempt, error) {
	attempt, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if attempt.Status == enums.AttemptStatusPaid && attempt.MedusaOrderID != nil {
		return attempt, nil
	}
	if attempt.Status == enums.AttemptStatusFailed {
		return nil, nil
	}

	updates := map[string]any{
		"status":          enums.AttemptStatusPaid,
		"medusa_order_id": backendOrderID,
	}
	if sessionID != nil {
		updates["stripe_session_id"] = *sessionID
	}
	if err := r.db.WithContext(ctx).
		Model(&models.CheckoutAttempt{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// MarkFailed transitions the attempt to failed unless it already settled as
// paid, in which case the paid record is returned untouched. A late failure
// signal never downgrades a successful payment.
func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*models.CheckoutAttempt, error) {
	attempt, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if attempt.Status == enums.AttemptStatusPaid {
		return attempt, nil
	}

	updates := map[string]any{
		"status": enums.AttemptStatusFailed,
	}
	if reason != "" {
		updates["failure_reason"] = reason
	}
	if err := r.db.WithContext(ctx).
		Model(&models.CheckoutAttempt{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}
