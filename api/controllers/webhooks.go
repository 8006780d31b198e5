package controllers

import (
	"io"
	"net/http"

	"github.com/s4trading/storefront-backend/api/responses"
	stripewebhook "github.com/s4trading/storefront-backend/internal/webhooks/stripe"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/logger"
)

type StripeWebhookController struct {
	Service *stripewebhook.Service
	Logger  *logger.Logger
}

// Handle verifies and dispatches one Stripe event delivery. Any processing
// failure surfaces as an error status so Stripe redelivers.
func (c *StripeWebhookController) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		responses.WriteError(ctx, c.Logger, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read webhook payload"))
		return
	}

	result, err := c.Service.HandleDelivery(ctx, payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}
