package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/s4trading/storefront-backend/api/middleware"
	"github.com/s4trading/storefront-backend/api/responses"
	"github.com/s4trading/storefront-backend/api/validators"
	"github.com/s4trading/storefront-backend/internal/checkout"
	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/pkg/enums"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/logger"
	"github.com/s4trading/storefront-backend/pkg/types"
)

type checkoutItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	VariantID string          `json:"variant_id"`
	Name      string          `json:"name" validate:"required"`
	Qty       int             `json:"qty" validate:"required,min=1"`
	Price     decimal.Decimal `json:"price"`
}

type checkoutRequest struct {
	Items           []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	CustomerEmail   string                `json:"customerEmail" validate:"required,email"`
	PaymentMethod   string                `json:"paymentMethod" validate:"required"`
	DeliveryDetails types.DeliveryDetails `json:"deliveryDetails"`
}

type CheckoutController struct {
	Service *checkout.Service
	Logger  *logger.Logger
}

// Create starts a checkout: cash-on-delivery orders are created outright,
// pay-now orders get a hosted payment session.
func (c *CheckoutController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req checkoutRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	method, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		responses.WriteError(ctx, c.Logger, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout payload"))
		return
	}

	items := make([]types.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = types.OrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Qty:       item.Qty,
			UnitPrice: item.Price,
		}
	}

	result, err := c.Service.Checkout(ctx, middleware.ClaimsFromContext(ctx), commerce.CheckoutInput{
		Items:           items,
		Subtotal:        req.Subtotal,
		CustomerEmail:   req.CustomerEmail,
		PaymentMethod:   method,
		DeliveryDetails: req.DeliveryDetails,
	})
	if err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}
