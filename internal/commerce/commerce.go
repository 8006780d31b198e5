// Package commerce defines the provider contract the storefront is built
// against: one interface over the direct database backend and the headless
// commerce backend, so checkout and order reads stay backend-agnostic.
package commerce

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/s4trading/storefront-backend/pkg/auth"
	"github.com/s4trading/storefront-backend/pkg/enums"
	"github.com/s4trading/storefront-backend/pkg/types"
)

// Product is a catalog entry in the storefront's shape, whichever backend
// answered.
type Product struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Category       enums.ProductCategory `json:"category"`
	Price          decimal.Decimal       `json:"price"`
	Unit           string                `json:"unit"`
	Description    string                `json:"description,omitempty"`
	ImageURL       string                `json:"image_url,omitempty"`
	Certifications []string              `json:"certifications,omitempty"`
	StockLevel     int                   `json:"stock_level"`
	StockStatus    enums.StockStatus     `json:"stock_status"`
	IdealFor       string                `json:"ideal_for,omitempty"`
}

// Order is the uniform order shape returned to clients.
type Order struct {
	ID                  string            `json:"id"`
	OrderNumber         string            `json:"order_number"`
	UserID              string            `json:"user_id"`
	Items               []types.OrderItem `json:"items"`
	TotalAmount         decimal.Decimal   `json:"total_amount"`
	DepositAmount       decimal.Decimal   `json:"deposit_amount"`
	DepositPaid         bool              `json:"deposit_paid"`
	Status              enums.OrderStatus `json:"status"`
	DeliveryDate        string            `json:"delivery_date,omitempty"`
	SpecialInstructions string            `json:"special_instructions,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}

// CheckoutInput is a validated checkout payload.
type CheckoutInput struct {
	Items           []types.OrderItem
	Subtotal        decimal.Decimal
	CustomerEmail   string
	PaymentMethod   enums.PaymentMethod
	DeliveryDetails types.DeliveryDetails
	OrderNumber     string
}

// CheckoutResult is what a provider's createCheckout hands back. For
// cash-on-delivery the URL is the tracking page and the flow is terminal;
// for pay-now the caller starts the payment session using OrderID (or the
// attempt id standing in for it) as the correlator.
type CheckoutResult struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	URL         string `json:"url,omitempty"`
}

// PaymentContext carries payment-provider correlators into MarkOrderPaid.
type PaymentContext struct {
	SessionID string
}

// Checkout result statuses.
const (
	CheckoutStatusCreated        = "created"
	CheckoutStatusPendingPayment = "pending_payment"
)

// Provider is the uniform contract both backends implement. GetOrderByID
// returns not-found for orders owned by another user: existence is never
// leaked through a permission error.
type Provider interface {
	Source() enums.Backend
	GetProducts(ctx context.Context) ([]Product, error)
	GetMyOrders(ctx context.Context, identity auth.Claims) ([]Order, error)
	GetOrderByID(ctx context.Context, orderID string, identity auth.Claims) (*Order, error)
	CreateCheckout(ctx context.Context, identity auth.Claims, input CheckoutInput) (*CheckoutResult, error)
	MarkOrderPaid(ctx context.Context, orderID string, identity auth.Claims, payment PaymentContext) (*Order, error)
}

// SubtotalMatches reports whether the client-submitted subtotal equals the
// computed sum of qty times unit price, with zero tolerance after rounding
// to cents.
func SubtotalMatches(items []types.OrderItem, claimed decimal.Decimal) bool {
	return types.SubtotalOf(items).Round(2).Equal(claimed.Round(2))
}
