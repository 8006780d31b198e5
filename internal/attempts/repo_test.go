package attempts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/s4trading/storefront-backend/pkg/db/models"
	"github.com/s4trading/storefront-backend/pkg/enums"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/types"
)

func setupAttemptsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS checkout_attempts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  medusa_customer_id TEXT,
  order_number TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending_payment',
  items TEXT,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  customer_email TEXT,
  delivery_details TEXT,
  medusa_order_id TEXT,
  stripe_session_id TEXT,
  failure_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newAttempt(t *testing.T, repo Repository) *models.CheckoutAttempt {
	t.Helper()

	attempt := &models.CheckoutAttempt{
		UserID:        "user-1",
		OrderNumber:   "RAM-20260301-4821",
		PaymentMethod: enums.PaymentMethodStripe,
		Items: []types.OrderItem{
			{ProductID: "prod-1", Name: "Wagyu Ribeye", Qty: 2, UnitPrice: decimal.NewFromInt(624)},
		},
		Subtotal:      decimal.NewFromInt(1248),
		CustomerEmail: "chef@dune.ae",
	}
	require.NoError(t, repo.Create(context.Background(), attempt))
	return attempt
}

func TestCreate_DefaultsToPendingPayment(t *testing.T) {
	db := setupAttemptsTestDB(t)
	repo := NewRepository(db)

	attempt := newAttempt(t, repo)
	assert.NotEqual(t, uuid.Nil, attempt.ID)
	assert.Equal(t, enums.AttemptStatusPendingPayment, attempt.Status)
}

func TestFindByID_NotFound(t *testing.T) {
	db := setupAttemptsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestMarkPaid_AttachesOrderAndSession(t *testing.T) {
	db := setupAttemptsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	attempt := newAttempt(t, repo)
	session := "cs_test_1"

	paid, err := repo.MarkPaid(ctx, attempt.ID, "order_1", &session)
	require.NoError(t, err)
	require.NotNil(t, paid)
	assert.Equal(t, enums.AttemptStatusPaid, paid.Status)
	require.NotNil(t, paid.MedusaOrderID)
	assert.Equal(t, "order_1", *paid.MedusaOrderID)
	require.NotNil(t, paid.StripeSessionID)
	assert.Equal(t, "cs_test_1", *paid.StripeSessionID)
}

func TestMarkPaid_IdempotentOnRetry(t *testing.T) {
	db := setupAttemptsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	attempt := newAttempt(t, repo)
	_, err := repo.MarkPaid(ctx, attempt.ID, "order_1", nil)
	require.NoError(t, err)

	again, err := repo.MarkPaid(ctx, attempt.ID, "order_other", nil)
	require.NoError(t, err)
	require.NotNil(t, again)
	require.NotNil(t, again.MedusaOrderID)
	assert.Equal(t, "order_1", *again.MedusaOrderID, "retry must not replace the settled order id")
}

func TestMarkPaid_FailedAttemptIsNotActionable(t *testing.T) {
	db := setupAttemptsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	attempt := newAttempt(t, repo)
	_, err := repo.MarkFailed(ctx, attempt.ID, "session creation failed")
	require.NoError(t, err)

	paid, err := repo.MarkPaid(ctx, attempt.ID, "order_1", nil)
	require.NoError(t, err)
	assert.Nil(t, paid)

	current, err := repo.FindByID(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AttemptStatusFailed, current.Status)
	assert.Nil(t, current.MedusaOrderID)
}

func TestMarkFailed_NeverDowngradesPaid(t *testing.T) {
	db := setupAttemptsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	attempt := newAttempt(t, repo)
	_, err := repo.MarkPaid(ctx, attempt.ID, "order_1", nil)
	require.NoError(t, err)

	result, err := repo.MarkFailed(ctx, attempt.ID, "late failure signal")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, enums.AttemptStatusPaid, result.Status)

	current, err := repo.FindByID(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AttemptStatusPaid, current.Status)
}
