package headless

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/pkg/auth"
	"github.com/s4trading/storefront-backend/pkg/enums"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
)

// FinalizeAttempt turns a paid checkout attempt into a real backend order.
// Idempotent on the attached backend order id; a failed attempt is never
// finalized. A backend order creation failure marks the attempt failed, so
// redelivered webhooks stop retrying a dead attempt.
func (p *Provider) FinalizeAttempt(ctx context.Context, attemptID uuid.UUID, sessionID string) (*commerce.Order, error) {
	attempt, err := p.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if attempt.Status == enums.AttemptStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout attempt already failed")
	}

	if attempt.MedusaOrderID != nil && *attempt.MedusaOrderID != "" {
		raw, err := p.api.GetOrder(ctx, *attempt.MedusaOrderID)
		if err != nil {
			return nil, err
		}
		mapped := mapOrder(*raw)
		return &mapped, nil
	}

	customerID, err := p.attemptCustomerID(ctx, attempt.MedusaCustomerID, attempt.UserID, attempt.CustomerEmail)
	if err != nil {
		p.failAttempt(ctx, attemptID, "customer resolution failed")
		return nil, err
	}

	input := commerce.CheckoutInput{
		Items:         attempt.Items,
		Subtotal:      attempt.Subtotal,
		CustomerEmail: attempt.CustomerEmail,
		PaymentMethod: attempt.PaymentMethod,
	}
	if attempt.DeliveryDetails != nil {
		input.DeliveryDetails = *attempt.DeliveryDetails
	}

	order, err := p.api.CreateOrder(ctx, buildOrderInput(customerID, attempt.UserID, attempt.OrderNumber, input, true))
	if err != nil {
		p.failAttempt(ctx, attemptID, "backend order creation failed")
		return nil, err
	}

	var session *string
	if sessionID != "" {
		session = &sessionID
	}
	if _, err := p.attempts.MarkPaid(ctx, attemptID, order.ID, session); err != nil {
		return nil, err
	}

	mapped := mapOrder(*order)
	mapped.OrderNumber = attempt.OrderNumber
	return &mapped, nil
}

func (p *Provider) attemptCustomerID(ctx context.Context, cached *string, userID, email string) (string, error) {
	if cached != nil && *cached != "" {
		return *cached, nil
	}
	return p.resolver.ResolveCustomerID(ctx, auth.Claims{UserID: userID, Email: email})
}

func (p *Provider) failAttempt(ctx context.Context, attemptID uuid.UUID, reason string) {
	if _, err := p.attempts.MarkFailed(ctx, attemptID, reason); err != nil && p.logg != nil {
		p.logg.Warn(ctx, fmt.Sprintf("failed to mark attempt %s failed", attemptID))
	}
}
