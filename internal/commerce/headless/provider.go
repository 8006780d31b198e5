package headless

import (
	"context"
	"fmt"

	"github.com/s4trading/storefront-backend/internal/attempts"
	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/internal/ordernumber"
	"github.com/s4trading/storefront-backend/pkg/auth"
	"github.com/s4trading/storefront-backend/pkg/config"
	"github.com/s4trading/storefront-backend/pkg/db/models"
	"github.com/s4trading/storefront-backend/pkg/enums"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/logger"
	"github.com/s4trading/storefront-backend/pkg/medusa"
)

// CommerceAPI is the slice of the Medusa client the provider consumes.
type CommerceAPI interface {
	ListProducts(ctx context.Context) ([]medusa.Product, error)
	GetOrder(ctx context.Context, orderID string) (*medusa.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID string) ([]medusa.Order, error)
	CreateOrder(ctx context.Context, input medusa.OrderInput) (*medusa.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*medusa.Order, error)
}

// CustomerResolver resolves a storefront identity to a backend customer id.
type CustomerResolver interface {
	ResolveCustomerID(ctx context.Context, identity auth.Claims) (string, error)
}

// Provider serves catalog and order operations from the headless backend.
type Provider struct {
	api      CommerceAPI
	resolver CustomerResolver
	attempts attempts.Repository
	site     config.SiteConfig
	logg     *logger.Logger
}

// Params carries the dependencies for NewProvider.
type Params struct {
	API      CommerceAPI
	Resolver CustomerResolver
	Attempts attempts.Repository
	Site     config.SiteConfig
	Logger   *logger.Logger
}

// NewProvider wires the headless-backend commerce provider.
func NewProvider(params Params) (*Provider, error) {
	if params.API == nil {
		return nil, fmt.Errorf("commerce api required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("customer resolver required")
	}
	if params.Attempts == nil {
		return nil, fmt.Errorf("attempt repository required")
	}
	return &Provider{
		api:      params.API,
		resolver: params.Resolver,
		attempts: params.Attempts,
		site:     params.Site,
		logg:     params.Logger,
	}, nil
}

func (p *Provider) Source() enums.Backend {
	return enums.BackendHeadless
}

func (p *Provider) GetProducts(ctx context.Context) ([]commerce.Product, error) {
	rows, err := p.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	products := make([]commerce.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, mapProduct(row))
	}
	return products, nil
}

func (p *Provider) GetMyOrders(ctx context.Context, identity auth.Claims) ([]commerce.Order, error) {
	customerID, err := p.resolver.ResolveCustomerID(ctx, identity)
	if err != nil {
		return nil, err
	}

	rows, err := p.api.ListOrdersByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	orders := make([]commerce.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, mapOrder(row))
	}
	return orders, nil
}

// GetOrderByID allows the owner in by customer id or by the storefront user
// id stamped into metadata; everyone else sees the same not-found a missing
// order produces.
func (p *Provider) GetOrderByID(ctx context.Context, orderID string, identity auth.Claims) (*commerce.Order, error) {
	raw, err := p.api.GetOrder(ctx, orderID)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}

	if !identity.IsSystem() && !p.ownsOrder(ctx, raw, identity) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	mapped := mapOrder(*raw)
	return &mapped, nil
}

func (p *Provider) ownsOrder(ctx context.Context, raw *medusa.Order, identity auth.Claims) bool {
	if metadataString(raw.Metadata, "supabase_user_id") == identity.UserID {
		return true
	}
	customerID, err := p.resolver.ResolveCustomerID(ctx, identity)
	if err != nil {
		return false
	}
	return raw.CustomerID != "" && raw.CustomerID == customerID
}

// CreateCheckout creates the backend order synchronously for cash on
// delivery. For pay-now it only stages a checkout attempt; the backend order
// is created at webhook finalization, after payment is confirmed.
func (p *Provider) CreateCheckout(ctx context.Context, identity auth.Claims, input commerce.CheckoutInput) (*commerce.CheckoutResult, error) {
	if !commerce.SubtotalMatches(input.Items, input.Subtotal) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submitted subtotal does not match item total")
	}

	customerID, err := p.resolver.ResolveCustomerID(ctx, identity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unable to resolve customer profile")
	}

	orderNumber := input.OrderNumber
	if orderNumber == "" {
		orderNumber = ordernumber.Generate()
	}

	if input.PaymentMethod == enums.PaymentMethodCOD {
		order, err := p.api.CreateOrder(ctx, buildOrderInput(customerID, identity.UserID, orderNumber, input, false))
		if err != nil {
			return nil, err
		}
		return &commerce.CheckoutResult{
			OrderID:     order.ID,
			OrderNumber: orderNumber,
			Status:      commerce.CheckoutStatusCreated,
			URL:         fmt.Sprintf("%s/orders/%s", p.site.PublicURL, order.ID),
		}, nil
	}

	attempt := &models.CheckoutAttempt{
		UserID:           identity.UserID,
		MedusaCustomerID: &customerID,
		OrderNumber:      orderNumber,
		PaymentMethod:    input.PaymentMethod,
		Items:            input.Items,
		Subtotal:         input.Subtotal.Round(2),
		CustomerEmail:    input.CustomerEmail,
		DeliveryDetails:  &input.DeliveryDetails,
	}
	if err := p.attempts.Create(ctx, attempt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout attempt")
	}

	return &commerce.CheckoutResult{
		OrderID:     attempt.ID.String(),
		OrderNumber: orderNumber,
		Status:      commerce.CheckoutStatusPendingPayment,
	}, nil
}

// MarkOrderPaid captures the backend order's payment. Idempotent: capturing
// an already-paid order returns it unchanged.
func (p *Provider) MarkOrderPaid(ctx context.Context, orderID string, identity auth.Claims, payment commerce.PaymentContext) (*commerce.Order, error) {
	raw, err := p.api.GetOrder(ctx, orderID)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	if !identity.IsSystem() && !p.ownsOrder(ctx, raw, identity) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	if raw.PaymentStatus == "captured" || raw.PaymentStatus == "paid" {
		mapped := mapOrder(*raw)
		return &mapped, nil
	}

	captured, err := p.api.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	mapped := mapOrder(*captured)
	return &mapped, nil
}

func buildOrderInput(customerID, userID, orderNumber string, input commerce.CheckoutInput, paid bool) medusa.OrderInput {
	items := make([]medusa.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		variantID := item.VariantID
		if variantID == "" {
			variantID = item.ProductID
		}
		items = append(items, medusa.OrderItem{
			Title:     item.Name,
			Quantity:  item.Qty,
			VariantID: variantID,
			UnitPrice: toMinorUnits(item.UnitPrice),
		})
	}

	status := "pending"
	if paid {
		status = "confirmed"
	}

	details := input.DeliveryDetails
	instructions := fmt.Sprintf("payment_method=%s; restaurant=%s; address=%s; contact=%s %s",
		input.PaymentMethod, details.RestaurantName, details.Address, details.ContactName, details.ContactPhone)

	return medusa.OrderInput{
		CustomerID: customerID,
		Items:      items,
		Metadata: map[string]any{
			"supabase_user_id":     userID,
			"order_number":         orderNumber,
			"delivery_date":        details.DeliveryDate,
			"special_instructions": instructions,
			"payment_method":       input.PaymentMethod.String(),
			"turnkey_status":       status,
		},
	}
}
