// Package stripewebhook processes Stripe webhook deliveries: signature
// verification, event dedup, and the paid-session dispatch that turns a
// checkout into a confirmed order.
package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/s4trading/storefront-backend/internal/attempts"
	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/internal/email"
	"github.com/s4trading/storefront-backend/internal/marketing"
	"github.com/s4trading/storefront-backend/internal/reliability"
	"github.com/s4trading/storefront-backend/pkg/auth"
	"github.com/s4trading/storefront-backend/pkg/config"
	"github.com/s4trading/storefront-backend/pkg/enums"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/logger"
	"github.com/s4trading/storefront-backend/pkg/stripe"
	"github.com/s4trading/storefront-backend/pkg/types"
)

const eventCheckoutSessionCompleted = "checkout.session.completed"

// AttemptFinalizer turns a paid checkout attempt into a backend order.
type AttemptFinalizer interface {
	FinalizeAttempt(ctx context.Context, attemptID uuid.UUID, sessionID string) (*commerce.Order, error)
}

// ConfirmationSender sends the claim-guarded order confirmation email.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, input email.OrderEmail) (*email.SendResult, error)
}

// Result is the webhook acknowledgement body.
type Result struct {
	Received bool `json:"received"`
	Deduped  bool `json:"deduped,omitempty"`
}

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                string            `json:"id"`
			Metadata          map[string]string `json:"metadata"`
			PaymentStatus     string            `json:"payment_status"`
			ClientReferenceID string            `json:"client_reference_id"`
		} `json:"object"`
	} `json:"data"`
}

// Service verifies, dedups, and dispatches Stripe webhook deliveries.
type Service struct {
	secret    string
	events    reliability.Repository
	provider  commerce.Provider
	finalizer AttemptFinalizer
	attempts  attempts.Repository
	email     ConfirmationSender
	marketing marketing.Repository
	site      config.SiteConfig
	logg      *logger.Logger
}

// Params carries the dependencies for NewService. Finalizer and Attempts are
// only set when the headless backend is active.
type Params struct {
	SigningSecret string
	Events        reliability.Repository
	Provider      commerce.Provider
	Finalizer     AttemptFinalizer
	Attempts      attempts.Repository
	Email         ConfirmationSender
	Marketing     marketing.Repository
	Site          config.SiteConfig
	Logger        *logger.Logger
}

// NewService wires the webhook service.
func NewService(params Params) (*Service, error) {
	if params.SigningSecret == "" {
		return nil, fmt.Errorf("webhook signing secret required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("reliability repository required")
	}
	if params.Provider == nil {
		return nil, fmt.Errorf("commerce provider required")
	}
	if params.Email == nil {
		return nil, fmt.Errorf("confirmation sender required")
	}
	if params.Marketing == nil {
		return nil, fmt.Errorf("marketing repository required")
	}
	if (params.Finalizer == nil) != (params.Attempts == nil) {
		return nil, fmt.Errorf("finalizer and attempt repository must be set together")
	}
	return &Service{
		secret:    params.SigningSecret,
		events:    params.Events,
		provider:  params.Provider,
		finalizer: params.Finalizer,
		attempts:  params.Attempts,
		email:     params.Email,
		marketing: params.Marketing,
		site:      params.Site,
		logg:      params.Logger,
	}, nil
}

// HandleDelivery verifies one raw webhook delivery and processes it. The
// event is recorded as seen only after dispatch succeeds, so a failed
// delivery is retried by the provider and a duplicate one is acknowledged
// without side effects.
func (s *Service) HandleDelivery(ctx context.Context, payload []byte, signatureHeader string) (*Result, error) {
	if err := stripe.VerifyWebhookSignature(payload, signatureHeader, s.secret); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stripe signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode webhook event")
	}
	if event.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook event id missing")
	}

	seen, err := s.events.IsEventProcessed(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if seen {
		return &Result{Received: true, Deduped: true}, nil
	}

	status := enums.WebhookStatusIgnored
	if event.Type == eventCheckoutSessionCompleted {
		if err := s.dispatchCompletedSession(ctx, &event); err != nil {
			return nil, err
		}
		status = enums.WebhookStatusProcessed
	}

	if err := s.events.RecordEvent(ctx, event.ID, event.Type, status); err != nil {
		return nil, err
	}
	return &Result{Received: true}, nil
}

func (s *Service) dispatchCompletedSession(ctx context.Context, event *webhookEvent) error {
	session := event.Data.Object
	if session.PaymentStatus != "paid" {
		return nil
	}

	providerName := session.Metadata["provider"]
	if providerName == "" {
		providerName = s.provider.Source().String()
	}

	attemptID := session.Metadata["attempt_id"]
	if s.finalizer != nil && providerName == enums.BackendHeadless.String() && attemptID != "" {
		return s.finalizeAttemptSession(ctx, attemptID, session.ID)
	}

	orderID := session.Metadata["order_id"]
	if orderID == "" {
		orderID = session.ClientReferenceID
	}
	if orderID == "" {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("paid session %s carries no order correlator", session.ID))
		}
		return nil
	}
	return s.markOrderSession(ctx, orderID, session.ID, session.Metadata["customer_email"])
}

// finalizeAttemptSession creates the backend order for a paid attempt, then
// sends the confirmation and records the funnel event.
func (s *Service) finalizeAttemptSession(ctx context.Context, rawAttemptID, sessionID string) error {
	attemptID, err := uuid.Parse(rawAttemptID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid attempt id")
	}

	order, err := s.finalizer.FinalizeAttempt(ctx, attemptID, sessionID)
	if err != nil {
		// A missing or already-failed attempt never becomes actionable, so
		// the delivery is acknowledged instead of forcing endless redelivery.
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) || pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("attempt %s is not finalizable, acknowledging delivery", attemptID))
			}
			return nil
		}
		return err
	}

	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return err
	}

	input := email.OrderEmail{
		OrderID:       order.ID,
		OrderNumber:   attempt.OrderNumber,
		To:            attempt.CustomerEmail,
		PaymentMethod: enums.PaymentMethodStripe,
		Amount:        attempt.Subtotal,
		Items:         attempt.Items,
		TrackingURL:   fmt.Sprintf("%s/orders/%s", s.site.PublicURL, attempt.ID),
		Type:          enums.EmailTypeStripePaid,
	}
	if attempt.DeliveryDetails != nil {
		input.DeliveryDate = attempt.DeliveryDetails.DeliveryDate
	}
	if _, err := s.email.SendOrderConfirmation(ctx, input); err != nil {
		return err
	}

	return s.marketing.RecordEvent(ctx, marketing.EventInput{
		EventName: enums.MarketingEventCheckoutCompleted,
		UserID:    attempt.UserID,
		OrderID:   order.ID,
		Metadata:  types.JSONMap{"provider": "stripe", "source": "webhook"},
	})
}

// markOrderSession confirms a direct-backend order under the system identity;
// ownership was already proven by the signed session metadata.
func (s *Service) markOrderSession(ctx context.Context, orderID, sessionID, customerEmail string) error {
	order, err := s.provider.MarkOrderPaid(ctx, orderID,
		auth.Claims{UserID: auth.SystemUserID},
		commerce.PaymentContext{SessionID: sessionID})
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("order %s not found for paid session, acknowledging delivery", orderID))
			}
			return nil
		}
		return err
	}

	if _, err := s.email.SendOrderConfirmation(ctx, email.OrderEmail{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		To:            customerEmail,
		PaymentMethod: enums.PaymentMethodStripe,
		DeliveryDate:  order.DeliveryDate,
		Amount:        order.TotalAmount,
		Items:         order.Items,
		TrackingURL:   fmt.Sprintf("%s/orders/%s", s.site.PublicURL, order.ID),
		Type:          enums.EmailTypeStripePaid,
	}); err != nil {
		return err
	}

	return s.marketing.RecordEvent(ctx, marketing.EventInput{
		EventName: enums.MarketingEventCheckoutCompleted,
		UserID:    order.UserID,
		OrderID:   order.ID,
		Metadata:  types.JSONMap{"provider": "stripe", "source": "webhook"},
	})
}
