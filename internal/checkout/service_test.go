package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/s4trading/storefront-backend/internal/attempts"
	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/internal/email"
	"github.com/s4trading/storefront-backend/pkg/auth"
	"github.com/s4trading/storefront-backend/pkg/config"
	"github.com/s4trading/storefront-backend/pkg/db/models"
	"github.com/s4trading/storefront-backend/pkg/enums"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/stripe"
	"github.com/s4trading/storefront-backend/pkg/types"
)

type stubProvider struct {
	source        enums.Backend
	result        *commerce.CheckoutResult
	err           error
	checkoutCalls int
}

func (s *stubProvider) Source() enums.Backend { return s.source }

func (s *stubProvider) GetProducts(context.Context) ([]commerce.Product, error) {
	return nil, nil
}

func (s *stubProvider) GetMyOrders(context.Context, auth.Claims) ([]commerce.Order, error) {
	return nil, nil
}

func (s *stubProvider) GetOrderByID(context.Context, string, auth.Claims) (*commerce.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubProvider) CreateCheckout(_ context.Context, _ auth.Claims, _ commerce.CheckoutInput) (*commerce.CheckoutResult, error) {
	s.checkoutCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubProvider) MarkOrderPaid(context.Context, string, auth.Claims, commerce.PaymentContext) (*commerce.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

type stubPayments struct {
	lastInput stripe.CheckoutSessionInput
	session   *stripe.CheckoutSession
	err       error
	calls     int
}

func (s *stubPayments) CreateCheckoutSession(_ context.Context, input stripe.CheckoutSessionInput) (*stripe.CheckoutSession, error) {
	s.calls++
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

type stubConfirmations struct {
	sent []email.OrderEmail
	err  error
}

func (s *stubConfirmations) SendOrderConfirmation(_ context.Context, input email.OrderEmail) (*email.SendResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, input)
	return &email.SendResult{Sent: true, MessageID: "msg_1"}, nil
}

func setupAttemptsDB(t *testing.T) *gorm.DB {
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

type fixture struct {
	svc      *Service
	provider *stubProvider
	payments *stubPayments
	emails   *stubConfirmations
	attempts attempts.Repository
}

func newFixture(t *testing.T, provider *stubProvider) *fixture {
	t.Helper()

	db := setupAttemptsDB(t)
	repo := attempts.NewRepository(db)
	payments := &stubPayments{session: &stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/pay/cs_1"}}
	emails := &stubConfirmations{}

	svc, err := NewService(Params{
		Provider: provider,
		Payments: payments,
		Attempts: repo,
		Email:    emails,
		Site:     config.SiteConfig{PublicURL: "https://shop.s4trading.com"},
	})
	require.NoError(t, err)

	return &fixture{svc: svc, provider: provider, payments: payments, emails: emails, attempts: repo}
}

func checkoutInput(method enums.PaymentMethod) commerce.CheckoutInput {
	return commerce.CheckoutInput{
		Items: []types.OrderItem{
			{ProductID: "prod-1", Name: "A5 Wagyu Ribeye", Qty: 2, UnitPrice: decimal.NewFromInt(624)},
		},
		Subtotal:      decimal.NewFromInt(1248),
		CustomerEmail: "chef@dune.ae",
		PaymentMethod: method,
		DeliveryDetails: types.DeliveryDetails{
			RestaurantName: "Dune Bistro",
			DeliveryDate:   "2026-03-05",
		},
	}
}

func TestCheckout_RejectsInvalidPayload(t *testing.T) {
	f := newFixture(t, &stubProvider{source: enums.BackendDirect})
	ctx := context.Background()
	identity := auth.Claims{UserID: "user-1"}

	empty := checkoutInput(enums.PaymentMethodStripe)
	empty.Items = nil
	_, err := f.svc.Checkout(ctx, identity, empty)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	noEmail := checkoutInput(enums.PaymentMethodStripe)
	noEmail.CustomerEmail = " "
	_, err = f.svc.Checkout(ctx, identity, noEmail)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	badMethod := checkoutInput("bank-transfer")
	_, err = f.svc.Checkout(ctx, identity, badMethod)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	assert.Zero(t, f.provider.checkoutCalls)
}

func TestCheckout_RejectsSubtotalMismatch(t *testing.T) {
	f := newFixture(t, &stubProvider{source: enums.BackendDirect})

	input := checkoutInput(enums.PaymentMethodStripe)
	input.Subtotal = decimal.NewFromInt(999)

	_, err := f.svc.Checkout(context.Background(), auth.Claims{UserID: "user-1"}, input)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Contains(t, err.Error(), "invalid order total")
	assert.Zero(t, f.provider.checkoutCalls)
}

func TestCheckout_CODReturnsTrackingURLAndSendsEmail(t *testing.T) {
	provider := &stubProvider{
		source: enums.BackendDirect,
		result: &commerce.CheckoutResult{
			OrderID:     "order-1",
			OrderNumber: "RAM-20260305-1234",
			Status:      commerce.CheckoutStatusCreated,
			URL:         "https://shop.s4trading.com/orders/order-1",
		},
	}
	f := newFixture(t, provider)

	result, err := f.svc.Checkout(context.Background(), auth.Claims{UserID: "user-1"}, checkoutInput(enums.PaymentMethodCOD))
	require.NoError(t, err)
	assert.Equal(t, "https://shop.s4trading.com/orders/order-1", result.URL)
	assert.Equal(t, "order-1", result.OrderID)
	assert.Equal(t, "RAM-20260305-1234", result.OrderNumber)
	assert.Zero(t, f.payments.calls)

	require.Len(t, f.emails.sent, 1)
	sent := f.emails.sent[0]
	assert.Equal(t, enums.EmailTypeCODPlaced, sent.Type)
	assert.Equal(t, "chef@dune.ae", sent.To)
	assert.Equal(t, "RAM-20260305-1234", sent.OrderNumber)
}

func TestCheckout_CODEmailFailureDoesNotFailCheckout(t *testing.T) {
	provider := &stubProvider{
		source: enums.BackendDirect,
		result: &commerce.CheckoutResult{
			OrderID:     "order-1",
			OrderNumber: "RAM-20260305-1234",
			Status:      commerce.CheckoutStatusCreated,
			URL:         "https://shop.s4trading.com/orders/order-1",
		},
	}
	f := newFixture(t, provider)
	f.emails.err = pkgerrors.New(pkgerrors.CodeDependency, "email provider error")

	result, err := f.svc.Checkout(context.Background(), auth.Claims{UserID: "user-1"}, checkoutInput(enums.PaymentMethodCOD))
	require.NoError(t, err)
	assert.Equal(t, "order-1", result.OrderID)
}

func TestCheckout_DirectStripeSessionMetadata(t *testing.T) {
	provider := &stubProvider{
		source: enums.BackendDirect,
		result: &commerce.CheckoutResult{
			OrderID:     "8a9bb306-3d36-44a4-9790-1f2a55dc12c1",
			OrderNumber: "RAM-20260305-5678",
			Status:      commerce.CheckoutStatusPendingPayment,
		},
	}
	f := newFixture(t, provider)

	result, err := f.svc.Checkout(context.Background(), auth.Claims{UserID: "user-1"}, checkoutInput(enums.PaymentMethodStripe))
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_1", result.URL)
	assert.Equal(t, "RAM-20260305-5678", result.OrderNumber)

	session := f.payments.lastInput
	assert.Equal(t, int64(124800), session.AmountCents)
	assert.Equal(t, "S4 Order", session.ProductName)
	assert.Equal(t, "chef@dune.ae", session.CustomerEmail)
	assert.Equal(t, "8a9bb306-3d36-44a4-9790-1f2a55dc12c1", session.ClientReferenceID)
	assert.Equal(t,
		"https://shop.s4trading.com/orders/8a9bb306-3d36-44a4-9790-1f2a55dc12c1?session_id={CHECKOUT_SESSION_ID}",
		session.SuccessURL)
	assert.Equal(t, "https://shop.s4trading.com/checkout?canceled=1", session.CancelURL)

	assert.Equal(t, "8a9bb306-3d36-44a4-9790-1f2a55dc12c1", session.Metadata["order_id"])
	assert.NotContains(t, session.Metadata, "attempt_id")
	assert.Equal(t, "RAM-20260305-5678", session.Metadata["order_number"])
	assert.Equal(t, "stripe", session.Metadata["payment_method"])
	assert.Equal(t, "direct", session.Metadata["provider"])
	assert.Equal(t, "1248", session.Metadata["subtotal"])
	assert.Equal(t, "2026-03-05", session.Metadata["delivery_date"])

	// no confirmation email before payment
	assert.Empty(t, f.emails.sent)
}

func TestCheckout_HeadlessStripeUsesAttemptID(t *testing.T) {
	provider := &stubProvider{
		source: enums.BackendHeadless,
		result: &commerce.CheckoutResult{
			OrderID:     "1d9a9f2e-7f60-4de2-b16e-0a8f9c4f1a11",
			OrderNumber: "RAM-20260305-9012",
			Status:      commerce.CheckoutStatusPendingPayment,
		},
	}
	f := newFixture(t, provider)

	_, err := f.svc.Checkout(context.Background(), auth.Claims{UserID: "user-1"}, checkoutInput(enums.PaymentMethodStripe))
	require.NoError(t, err)

	session := f.payments.lastInput
	assert.Equal(t, "1d9a9f2e-7f60-4de2-b16e-0a8f9c4f1a11", session.Metadata["attempt_id"])
	assert.NotContains(t, session.Metadata, "order_id")
	assert.Equal(t, "headless", session.Metadata["provider"])
}

func TestCheckout_SessionFailureMarksHeadlessAttemptFailed(t *testing.T) {
	db := setupAttemptsDB(t)
	repo := attempts.NewRepository(db)
	ctx := context.Background()

	staged := &models.CheckoutAttempt{
		UserID:        "user-1",
		OrderNumber:   "RAM-20260305-9012",
		PaymentMethod: enums.PaymentMethodStripe,
		Subtotal:      decimal.NewFromInt(1248),
		CustomerEmail: "chef@dune.ae",
	}
	require.NoError(t, repo.Create(ctx, staged))

	provider := &stubProvider{
		source: enums.BackendHeadless,
		result: &commerce.CheckoutResult{
			OrderID:     staged.ID.String(),
			OrderNumber: "RAM-20260305-9012",
			Status:      commerce.CheckoutStatusPendingPayment,
		},
	}

	payments := &stubPayments{err: pkgerrors.New(pkgerrors.CodePayment, "card network unreachable")}
	emails := &stubConfirmations{}
	svc, err := NewService(Params{
		Provider: provider,
		Payments: payments,
		Attempts: repo,
		Email:    emails,
		Site:     config.SiteConfig{PublicURL: "https://shop.s4trading.com"},
	})
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, auth.Claims{UserID: "user-1"}, checkoutInput(enums.PaymentMethodStripe))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePayment))

	reloaded, err := repo.FindByID(ctx, staged.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AttemptStatusFailed, reloaded.Status)
}
