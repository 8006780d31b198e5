package headless

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/s4trading/storefront-backend/internal/attempts"
	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/pkg/auth"
	"github.com/s4trading/storefront-backend/pkg/config"
	"github.com/s4trading/storefront-backend/pkg/enums"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/medusa"
	"github.com/s4trading/storefront-backend/pkg/types"
)

type stubAPI struct {
	orders      map[string]*medusa.Order
	products    []medusa.Product
	createCalls int
	createErr   error
	nextOrderID string
}

func newStubAPI() *stubAPI {
	return &stubAPI{orders: map[string]*medusa.Order{}, nextOrderID: "order_1"}
}

func (s *stubAPI) ListProducts(ctx context.Context) ([]medusa.Product, error) {
	return s.products, nil
}

func (s *stubAPI) GetOrder(ctx context.Context, orderID string) (*medusa.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medusa resource not found")
	}
	return order, nil
}

func (s *stubAPI) ListOrdersByCustomer(ctx context.Context, customerID string) ([]medusa.Order, error) {
	var out []medusa.Order
	for _, order := range s.orders {
		if order.CustomerID == customerID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (s *stubAPI) CreateOrder(ctx context.Context, input medusa.OrderInput) (*medusa.Order, error) {
	s.createCalls++
	if s.createErr != nil {
		return nil, s.createErr
	}
	id := fmt.Sprintf("%s_%d", s.nextOrderID, s.createCalls)
	order := &medusa.Order{
		ID:         id,
		CustomerID: input.CustomerID,
		Status:     "pending",
		Metadata:   input.Metadata,
		Items:      input.Items,
	}
	if input.Metadata["turnkey_status"] == "confirmed" {
		order.PaymentStatus = "captured"
	}
	for _, item := range input.Items {
		order.Total += item.UnitPrice * float64(item.Quantity)
	}
	s.orders[id] = order
	return order, nil
}

func (s *stubAPI) CaptureOrder(ctx context.Context, orderID string) (*medusa.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medusa resource not found")
	}
	order.PaymentStatus = "captured"
	return order, nil
}

type fixedResolver struct {
	id  string
	err error
}

func (f fixedResolver) ResolveCustomerID(ctx context.Context, identity auth.Claims) (string, error) {
	return f.id, f.err
}

func setupAttemptsDB(t *testing.T) attempts.Repository {
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
	return attempts.NewRepository(db)
}

func newHeadlessProvider(t *testing.T, api CommerceAPI, resolver CustomerResolver, repo attempts.Repository) *Provider {
	t.Helper()
	provider, err := NewProvider(Params{
		API:      api,
		Resolver: resolver,
		Attempts: repo,
		Site:     config.SiteConfig{PublicURL: "https://shop.s4trading.com"},
	})
	require.NoError(t, err)
	return provider
}

func mustParseUUID(t *testing.T, value string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(value)
	require.NoError(t, err)
	return id
}

func headlessInput(method enums.PaymentMethod) commerce.CheckoutInput {
	return commerce.CheckoutInput{
		Items: []types.OrderItem{
			{ProductID: "variant_1", Name: "Wagyu Ribeye", Qty: 2, UnitPrice: decimal.NewFromInt(624)},
		},
		Subtotal:      decimal.NewFromInt(1248),
		CustomerEmail: "chef@dune.ae",
		PaymentMethod: method,
		DeliveryDetails: types.DeliveryDetails{
			RestaurantName: "Dune Bistro",
			ContactName:    "Amira",
			ContactPhone:   "+971500000000",
			Address:        "Al Quoz 3, Dubai",
			DeliveryDate:   "2026-03-05",
		},
	}
}

func TestCreateCheckout_CODCreatesBackendOrderSynchronously(t *testing.T) {
	api := newStubAPI()
	provider := newHeadlessProvider(t, api, fixedResolver{id: "cus_1"}, setupAttemptsDB(t))

	result, err := provider.CreateCheckout(context.Background(), auth.Claims{UserID: "user-1", Email: "chef@dune.ae"}, headlessInput(enums.PaymentMethodCOD))
	require.NoError(t, err)
	assert.Equal(t, commerce.CheckoutStatusCreated, result.Status)
	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, "https://shop.s4trading.com/orders/"+result.OrderID, result.URL)

	created := api.orders[result.OrderID]
	require.NotNil(t, created)
	assert.Equal(t, "user-1", created.Metadata["supabase_user_id"])
	assert.Equal(t, result.OrderNumber, created.Metadata["order_number"])
	assert.Equal(t, "pending", created.Metadata["turnkey_status"])
	assert.Equal(t, float64(62400), created.Items[0].UnitPrice)
}

func TestCreateCheckout_StripeOnlyStagesAttempt(t *testing.T) {
	api := newStubAPI()
	repo := setupAttemptsDB(t)
	provider := newHeadlessProvider(t, api, fixedResolver{id: "cus_1"}, repo)

	result, err := provider.CreateCheckout(context.Background(), auth.Claims{UserID: "user-1", Email: "chef@dune.ae"}, headlessInput(enums.PaymentMethodStripe))
	require.NoError(t, err)
	assert.Equal(t, commerce.CheckoutStatusPendingPayment, result.Status)
	assert.Empty(t, result.URL)
	assert.Zero(t, api.createCalls, "pay-now must not create a backend order before payment")
}

func TestCreateCheckout_CustomerResolutionFailure(t *testing.T) {
	api := newStubAPI()
	provider := newHeadlessProvider(t, api, fixedResolver{err: pkgerrors.New(pkgerrors.CodeDependency, "no customer")}, setupAttemptsDB(t))

	_, err := provider.CreateCheckout(context.Background(), auth.Claims{UserID: "user-1"}, headlessInput(enums.PaymentMethodStripe))
	require.Error(t, err)
	assert.Zero(t, api.createCalls)
}

func TestGetOrderByID_MetadataOwnershipMatch(t *testing.T) {
	api := newStubAPI()
	api.orders["order_9"] = &medusa.Order{
		ID:         "order_9",
		CustomerID: "cus_other",
		Metadata:   map[string]any{"supabase_user_id": "user-1", "order_number": "RAM-20260301-1234"},
	}
	provider := newHeadlessProvider(t, api, fixedResolver{id: "cus_1"}, setupAttemptsDB(t))
	ctx := context.Background()

	order, err := provider.GetOrderByID(ctx, "order_9", auth.Claims{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "RAM-20260301-1234", order.OrderNumber)
	assert.Equal(t, "user-1", order.UserID)

	_, err = provider.GetOrderByID(ctx, "order_9", auth.Claims{UserID: "user-2", Email: "other@dune.ae"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestMarkOrderPaid_CapturesOnce(t *testing.T) {
	api := newStubAPI()
	api.orders["order_9"] = &medusa.Order{
		ID:            "order_9",
		CustomerID:    "cus_1",
		PaymentStatus: "awaiting",
		Total:         124800,
	}
	provider := newHeadlessProvider(t, api, fixedResolver{id: "cus_1"}, setupAttemptsDB(t))
	ctx := context.Background()

	order, err := provider.MarkOrderPaid(ctx, "order_9", auth.Claims{UserID: auth.SystemUserID}, commerce.PaymentContext{})
	require.NoError(t, err)
	assert.True(t, order.DepositPaid)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(1248)))

	again, err := provider.MarkOrderPaid(ctx, "order_9", auth.Claims{UserID: auth.SystemUserID}, commerce.PaymentContext{})
	require.NoError(t, err)
	assert.True(t, again.DepositPaid)
}

func TestFinalizeAttempt_CreatesPaidOrderOnce(t *testing.T) {
	api := newStubAPI()
	repo := setupAttemptsDB(t)
	provider := newHeadlessProvider(t, api, fixedResolver{id: "cus_1"}, repo)
	ctx := context.Background()

	result, err := provider.CreateCheckout(ctx, auth.Claims{UserID: "user-1", Email: "chef@dune.ae"}, headlessInput(enums.PaymentMethodStripe))
	require.NoError(t, err)

	attemptID := mustParseUUID(t, result.OrderID)
	order, err := provider.FinalizeAttempt(ctx, attemptID, "cs_1")
	require.NoError(t, err)
	assert.True(t, order.DepositPaid)
	assert.Equal(t, result.OrderNumber, order.OrderNumber)
	assert.Equal(t, 1, api.createCalls)

	// webhook retry: no second backend order
	again, err := provider.FinalizeAttempt(ctx, attemptID, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, again.ID)
	assert.Equal(t, 1, api.createCalls)

	attempt, err := repo.FindByID(ctx, attemptID)
	require.NoError(t, err)
	assert.Equal(t, enums.AttemptStatusPaid, attempt.Status)
	require.NotNil(t, attempt.StripeSessionID)
	assert.Equal(t, "cs_1", *attempt.StripeSessionID)
}

func TestFinalizeAttempt_RefusesFailedAttempt(t *testing.T) {
	api := newStubAPI()
	repo := setupAttemptsDB(t)
	provider := newHeadlessProvider(t, api, fixedResolver{id: "cus_1"}, repo)
	ctx := context.Background()

	result, err := provider.CreateCheckout(ctx, auth.Claims{UserID: "user-1", Email: "chef@dune.ae"}, headlessInput(enums.PaymentMethodStripe))
	require.NoError(t, err)
	attemptID := mustParseUUID(t, result.OrderID)

	_, err = repo.MarkFailed(ctx, attemptID, "session creation failed")
	require.NoError(t, err)

	_, err = provider.FinalizeAttempt(ctx, attemptID, "cs_1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	assert.Zero(t, api.createCalls)
}

func TestFinalizeAttempt_BackendFailureMarksAttemptFailed(t *testing.T) {
	api := newStubAPI()
	api.createErr = pkgerrors.New(pkgerrors.CodeDependency, "backend down")
	repo := setupAttemptsDB(t)
	provider := newHeadlessProvider(t, api, fixedResolver{id: "cus_1"}, repo)
	ctx := context.Background()

	result, err := provider.CreateCheckout(ctx, auth.Claims{UserID: "user-1", Email: "chef@dune.ae"}, headlessInput(enums.PaymentMethodStripe))
	require.NoError(t, err)
	attemptID := mustParseUUID(t, result.OrderID)

	_, err = provider.FinalizeAttempt(ctx, attemptID, "cs_1")
	require.Error(t, err)

	attempt, err := repo.FindByID(ctx, attemptID)
	require.NoError(t, err)
	assert.Equal(t, enums.AttemptStatusFailed, attempt.Status)
}

func TestBuildOrderInput_VariantFallsBackToProductID(t *testing.T) {
	input := commerce.CheckoutInput{
		Items: []types.OrderItem{
			{ProductID: "prod_1", VariantID: "variant_9", Name: "Saffron 10g", Qty: 2, UnitPrice: decimal.NewFromInt(40)},
			{ProductID: "prod_2", Name: "Medjool Dates 5kg", Qty: 1, UnitPrice: decimal.NewFromInt(25)},
		},
	}

	built := buildOrderInput("cus_1", "user_1", "RAM-20260830-1000", input, false)

	require.Len(t, built.Items, 2)
	assert.Equal(t, "variant_9", built.Items[0].VariantID)
	assert.Equal(t, "prod_2", built.Items[1].VariantID)
}
