package direct

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/internal/identity"
	"github.com/s4trading/storefront-backend/internal/ordernumber"
	"github.com/s4trading/storefront-backend/pkg/auth"
	"github.com/s4trading/storefront-backend/pkg/config"
	"github.com/s4trading/storefront-backend/pkg/db"
	"github.com/s4trading/storefront-backend/pkg/db/models"
	"github.com/s4trading/storefront-backend/pkg/enums"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/logger"
	"github.com/s4trading/storefront-backend/pkg/types"
)

// Provider serves catalog and order operations from the storefront's own
// database.
type Provider struct {
	repo  Repository
	users identity.Repository
	site  config.SiteConfig
	logg  *logger.Logger
}

// Params carries the dependencies for NewProvider.
type Params struct {
	Repo   Repository
	Users  identity.Repository
	Site   config.SiteConfig
	Logger *logger.Logger
}

// NewProvider wires the direct-backend commerce provider.
func NewProvider(params Params) (*Provider, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("direct repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("identity repository required")
	}
	return &Provider{
		repo:  params.Repo,
		users: params.Users,
		site:  params.Site,
		logg:  params.Logger,
	}, nil
}

func (p *Provider) Source() enums.Backend {
	return enums.BackendDirect
}

func (p *Provider) GetProducts(ctx context.Context) ([]commerce.Product, error) {
	rows, err := p.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	products := make([]commerce.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, mapProduct(row))
	}
	return products, nil
}

func (p *Provider) GetMyOrders(ctx context.Context, identity auth.Claims) ([]commerce.Order, error) {
	rows, err := p.repo.ListOrdersByUser(ctx, identity.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	orders := make([]commerce.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, mapOrder(row))
	}
	return orders, nil
}

// GetOrderByID folds "does not exist" and "belongs to someone else" into the
// same not-found so the response shape never leaks existence.
func (p *Provider) GetOrderByID(ctx context.Context, orderID string, identity auth.Claims) (*commerce.Order, error) {
	order, err := p.findOwnedOrder(ctx, orderID, identity)
	if err != nil {
		return nil, err
	}
	mapped := mapOrder(*order)
	return &mapped, nil
}

func (p *Provider) CreateCheckout(ctx context.Context, identity auth.Claims, input commerce.CheckoutInput) (*commerce.CheckoutResult, error) {
	if !commerce.SubtotalMatches(input.Items, input.Subtotal) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submitted subtotal does not match item total")
	}

	p.upsertProfile(ctx, identity, input)

	subtotal := types.SubtotalOf(input.Items).Round(2)
	deposit := decimal.Zero
	if input.PaymentMethod == enums.PaymentMethodStripe {
		deposit = subtotal
	}

	instructions := fmt.Sprintf("payment_method=%s; restaurant=%s; address=%s; contact=%s %s",
		input.PaymentMethod,
		input.DeliveryDetails.RestaurantName,
		input.DeliveryDetails.Address,
		input.DeliveryDetails.ContactName,
		input.DeliveryDetails.ContactPhone,
	)

	order := &models.Order{
		UserID:              identity.UserID,
		Items:               input.Items,
		TotalAmount:         subtotal,
		DepositAmount:       deposit,
		DepositPaid:         false,
		Status:              enums.OrderStatusPending,
		DeliveryDate:        input.DeliveryDetails.DeliveryDate,
		SpecialInstructions: &instructions,
	}

	if err := p.createWithFreshNumber(ctx, order, input.OrderNumber); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	result := &commerce.CheckoutResult{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Status:      commerce.CheckoutStatusPendingPayment,
	}
	if input.PaymentMethod == enums.PaymentMethodCOD {
		result.Status = commerce.CheckoutStatusCreated
		result.URL = fmt.Sprintf("%s/orders/%s", p.site.PublicURL, order.ID)
	}
	return result, nil
}

// MarkOrderPaid is idempotent: confirming an already-paid order returns it
// unchanged. Ownership is enforced unless the caller is the trusted system
// identity of the webhook path.
func (p *Provider) MarkOrderPaid(ctx context.Context, orderID string, identity auth.Claims, payment commerce.PaymentContext) (*commerce.Order, error) {
	order, err := p.findOwnedOrder(ctx, orderID, identity)
	if err != nil {
		return nil, err
	}

	if !order.DepositPaid {
		if err := p.repo.UpdateOrderPaid(ctx, order.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
		}
		order, err = p.repo.FindOrderByID(ctx, order.ID)
		if err != nil || order == nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
	}

	mapped := mapOrder(*order)
	return &mapped, nil
}

// createWithFreshNumber regenerates the order number on a uniqueness
// conflict. The id column gets a fresh uuid per attempt, so any unique
// violation here is the order number index.
func (p *Provider) createWithFreshNumber(ctx context.Context, order *models.Order, preset string) error {
	var lastErr error
	for attempt := 0; attempt < ordernumber.MaxAttempts; attempt++ {
		if preset != "" && attempt == 0 {
			order.OrderNumber = preset
		} else {
			order.OrderNumber = ordernumber.Generate()
		}

		lastErr = p.repo.CreateOrder(ctx, order)
		if lastErr == nil {
			return nil
		}
		if !db.IsUniqueViolation(lastErr, "") {
			return lastErr
		}
		order.ID = uuid.Nil
	}
	return lastErr
}

func (p *Provider) findOwnedOrder(ctx context.Context, orderID string, identity auth.Claims) (*models.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	order, err := p.repo.FindOrderByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !identity.IsSystem() && order.UserID != identity.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// upsertProfile writes through the delivery profile; a failure only loses
// the cache, never the checkout.
func (p *Provider) upsertProfile(ctx context.Context, identity auth.Claims, input commerce.CheckoutInput) {
	restaurant := input.DeliveryDetails.RestaurantName
	if restaurant == "" {
		restaurant = "Restaurant Account"
	}
	email := identity.Email
	if email == "" {
		email = input.CustomerEmail
	}

	address := types.JSONMap{
		"address":       input.DeliveryDetails.Address,
		"delivery_date": input.DeliveryDetails.DeliveryDate,
	}
	user := &models.User{
		ID:              identity.UserID,
		Role:            "customer",
		RestaurantName:  &restaurant,
		Email:           &email,
		DeliveryAddress: &address,
	}
	if input.DeliveryDetails.ContactPhone != "" {
		phone := input.DeliveryDetails.ContactPhone
		user.Phone = &phone
	}

	if err := p.users.UpsertProfile(ctx, user); err != nil && p.logg != nil {
		p.logg.Warn(ctx, fmt.Sprintf("failed to upsert profile for user %s", identity.UserID))
	}
}

func mapProduct(row models.Product) commerce.Product {
	product := commerce.Product{
		ID:             row.ID.String(),
		Name:           row.Name,
		Category:       row.Category,
		Price:          row.Price,
		Unit:           row.Unit,
		Description:    row.Description,
		ImageURL:       row.ImageURL,
		Certifications: row.Certifications,
		StockLevel:     row.StockLevel,
		StockStatus:    row.StockStatus,
	}
	if row.IdealFor != nil {
		product.IdealFor = *row.IdealFor
	}
	return product
}

func mapOrder(row models.Order) commerce.Order {
	order := commerce.Order{
		ID:            row.ID.String(),
		OrderNumber:   row.OrderNumber,
		UserID:        row.UserID,
		Items:         row.Items,
		TotalAmount:   row.TotalAmount,
		DepositAmount: row.DepositAmount,
		DepositPaid:   row.DepositPaid,
		Status:        row.Status,
		DeliveryDate:  row.DeliveryDate,
		CreatedAt:     row.CreatedAt,
	}
	if row.SpecialInstructions != nil {
		order.SpecialInstructions = *row.SpecialInstructions
	}
	return order
}
