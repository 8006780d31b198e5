// Package checkout orchestrates a storefront checkout: payload validation,
// the provider branch for cash on delivery vs hosted payment, and the Stripe
// session with its correlation metadata.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/s4trading/storefront-backend/internal/attempts"
	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/internal/email"
	"github.com/s4trading/storefront-backend/pkg/auth"
	"github.com/s4trading/storefront-backend/pkg/config"
	"github.com/s4trading/storefront-backend/pkg/enums"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/logger"
	"github.com/s4trading/storefront-backend/pkg/stripe"
)

// PaymentSessions is the slice of the Stripe client the service consumes.
type PaymentSessions interface {
	CreateCheckoutSession(ctx context.Context, input stripe.CheckoutSessionInput) (*stripe.CheckoutSession, error)
}

// ConfirmationSender sends the claim-guarded order confirmation email.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, input email.OrderEmail) (*email.SendResult, error)
}

// Result is the checkout response: either the hosted payment URL or, for
// cash on delivery, the order tracking URL.
type Result struct {
	URL         string `json:"url"`
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

// Service drives the checkout flow over the active commerce provider.
type Service struct {
	provider commerce.Provider
	payments PaymentSessions
	attempts attempts.Repository
	email    ConfirmationSender
	site     config.SiteConfig
	logg     *logger.Logger
}

// Params carries the dependencies for NewService.
type Params struct {
	Provider commerce.Provider
	Payments PaymentSessions
	Attempts attempts.Repository
	Email    ConfirmationSender
	Site     config.SiteConfig
	Logger   *logger.Logger
}

// NewService wires the checkout orchestrator.
func NewService(params Params) (*Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("commerce provider required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment sessions client required")
	}
	if params.Attempts == nil {
		return nil, fmt.Errorf("attempt repository required")
	}
	if params.Email == nil {
		return nil, fmt.Errorf("confirmation sender required")
	}
	return &Service{
		provider: params.Provider,
		payments: params.Payments,
		attempts: params.Attempts,
		email:    params.Email,
		site:     params.Site,
		logg:     params.Logger,
	}, nil
}

// Checkout validates the payload, creates the order or attempt through the
// active provider, and opens a hosted payment session for pay-now checkouts.
func (s *Service) Checkout(ctx context.Context, identity auth.Claims, input commerce.CheckoutInput) (*Result, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	created, err := s.provider.CreateCheckout(ctx, identity, input)
	if err != nil {
		return nil, err
	}

	if created.Status == commerce.CheckoutStatusCreated {
		s.sendCODConfirmation(ctx, created, input)
		return &Result{
			URL:         created.URL,
			OrderID:     created.OrderID,
			OrderNumber: created.OrderNumber,
		}, nil
	}

	session, err := s.payments.CreateCheckoutSession(ctx, stripe.CheckoutSessionInput{
		AmountCents:       stripe.AmountToCents(input.Subtotal),
		ProductName:       "S4 Order",
		CustomerEmail:     input.CustomerEmail,
		ClientReferenceID: created.OrderID,
		SuccessURL:        fmt.Sprintf("%s/orders/%s?session_id={CHECKOUT_SESSION_ID}", s.site.PublicURL, created.OrderID),
		CancelURL:         fmt.Sprintf("%s/checkout?canceled=1", s.site.PublicURL),
		Metadata:          s.sessionMetadata(created, input),
	})
	if err != nil {
		s.compensateSessionFailure(ctx, created, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "unable to start payment session")
	}

	return &Result{
		URL:         session.URL,
		OrderID:     created.OrderID,
		OrderNumber: created.OrderNumber,
	}, nil
}

func validate(input commerce.CheckoutInput) error {
	if len(input.Items) == 0 ||
		strings.TrimSpace(input.CustomerEmail) == "" ||
		!input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout payload")
	}
	for _, item := range input.Items {
		if item.Qty <= 0 || item.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout payload")
		}
	}
	if !commerce.SubtotalMatches(input.Items, input.Subtotal) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order total")
	}
	return nil
}

// sessionMetadata stamps the correlators the webhook needs: the attempt id
// for headless pay-now checkouts, the order id for direct ones.
func (s *Service) sessionMetadata(created *commerce.CheckoutResult, input commerce.CheckoutInput) map[string]string {
	metadata := map[string]string{
		"order_number":   created.OrderNumber,
		"payment_method": input.PaymentMethod.String(),
		"provider":       s.provider.Source().String(),
		"subtotal":       input.Subtotal.Round(2).String(),
		"delivery_date":  input.DeliveryDetails.DeliveryDate,
		"customer_email": input.CustomerEmail,
	}
	if s.provider.Source() == enums.BackendHeadless {
		metadata["attempt_id"] = created.OrderID
	} else {
		metadata["order_id"] = created.OrderID
	}
	return metadata
}

// compensateSessionFailure marks a staged headless attempt failed so the
// webhook never finalizes a checkout whose payment session was never shown.
// A direct order stays pending_payment and simply never gets paid.
func (s *Service) compensateSessionFailure(ctx context.Context, created *commerce.CheckoutResult, cause error) {
	if s.logg != nil {
		s.logg.Error(ctx, "stripe session creation failed", cause)
	}
	if s.provider.Source() != enums.BackendHeadless {
		return
	}
	attemptID, err := uuid.Parse(created.OrderID)
	if err != nil {
		return
	}
	if _, err := s.attempts.MarkFailed(ctx, attemptID, "payment session creation failed"); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("failed to mark attempt %s failed after session error", attemptID))
	}
}

// sendCODConfirmation is best effort: the order exists either way, and the
// claim keeps a retry from double-sending.
func (s *Service) sendCODConfirmation(ctx context.Context, created *commerce.CheckoutResult, input commerce.CheckoutInput) {
	_, err := s.email.SendOrderConfirmation(ctx, email.OrderEmail{
		OrderID:       created.OrderID,
		OrderNumber:   created.OrderNumber,
		To:            input.CustomerEmail,
		PaymentMethod: enums.PaymentMethodCOD,
		DeliveryDate:  input.DeliveryDetails.DeliveryDate,
		Amount:        input.Subtotal,
		Items:         input.Items,
		TrackingURL:   fmt.Sprintf("%s/orders/%s", s.site.PublicURL, created.OrderID),
		Type:          enums.EmailTypeCODPlaced,
	})
	if err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("cod confirmation email failed for order %s", created.OrderID))
	}
}
