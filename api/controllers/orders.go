package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/s4trading/storefront-backend/api/middleware"
	"github.com/s4trading/storefront-backend/api/responses"
	"github.com/s4trading/storefront-backend/api/validators"
	"github.com/s4trading/storefront-backend/internal/orders"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/logger"
)

type orderPatchRequest struct {
	MarkPaid  bool   `json:"markPaid"`
	SessionID string `json:"sessionId"`
}

type OrdersController struct {
	Service *orders.Service
	Logger  *logger.Logger
}

// List returns the caller's orders, newest first.
func (c *OrdersController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := c.Service.GetMine(ctx, middleware.ClaimsFromContext(ctx))
	if err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	responses.WriteSourced(w, c.Service.Source(), data)
}

// Get returns one order the caller owns. An order id that is really a
// checkout attempt id resolves once the attempt has been finalized.
func (c *OrdersController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		responses.WriteError(ctx, c.Logger, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
		return
	}

	order, err := c.Service.GetByID(ctx, orderID, middleware.ClaimsFromContext(ctx))
	if err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	responses.WriteSourced(w, c.Service.Source(), order)
}

// Patch marks an order paid when the body requests it, and otherwise
// returns the current order.
func (c *OrdersController) Patch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		responses.WriteError(ctx, c.Logger, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
		return
	}

	var req orderPatchRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	identity := middleware.ClaimsFromContext(ctx)
	if !req.MarkPaid {
		order, err := c.Service.GetByID(ctx, orderID, identity)
		if err != nil {
			responses.WriteError(ctx, c.Logger, w, err)
			return
		}
		responses.WriteSourced(w, c.Service.Source(), order)
		return
	}

	order, err := c.Service.MarkPaid(ctx, orderID, identity, req.SessionID)
	if err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	responses.WriteSourced(w, c.Service.Source(), order)
}
