// Package orders serves order reads and the client-confirmed payment
// fallback. On the headless backend an order URL may carry a checkout
// attempt id instead of a backend order id; this service resolves that.
package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/s4trading/storefront-backend/internal/attempts"
	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/pkg/auth"
	"github.com/s4trading/storefront-backend/pkg/db/models"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/logger"
)

// AttemptFinalizer turns a paid checkout attempt into a backend order.
type AttemptFinalizer interface {
	FinalizeAttempt(ctx context.Context, attemptID uuid.UUID, sessionID string) (*commerce.Order, error)
}

// Service reads orders through the active provider and resolves checkout
// attempt ids on the headless backend.
type Service struct {
	provider  commerce.Provider
	finalizer AttemptFinalizer
	attempts  attempts.Repository
	logg      *logger.Logger
}

// Params carries the dependencies for NewService. Finalizer and Attempts are
// only set on the headless backend; the direct backend has no attempt ids in
// order URLs.
type Params struct {
	Provider  commerce.Provider
	Finalizer AttemptFinalizer
	Attempts  attempts.Repository
	Logger    *logger.Logger
}

// NewService wires the orders service.
func NewService(params Params) (*Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("commerce provider required")
	}
	if (params.Finalizer == nil) != (params.Attempts == nil) {
		return nil, fmt.Errorf("finalizer and attempt repository must be set together")
	}
	return &Service{
		provider:  params.Provider,
		finalizer: params.Finalizer,
		attempts:  params.Attempts,
		logg:      params.Logger,
	}, nil
}

// Source reports which backend serves the orders.
func (s *Service) Source() string {
	return s.provider.Source().String()
}

// GetMine lists the authenticated user's orders.
func (s *Service) GetMine(ctx context.Context, identity auth.Claims) ([]commerce.Order, error) {
	return s.provider.GetMyOrders(ctx, identity)
}

// GetByID reads one order. When the id is not a known order and the headless
// backend is active, it is retried as a checkout attempt id: a finalized
// attempt redirects to its backend order, the owner's own unfinalized attempt
// reports that finalization is still in flight.
func (s *Service) GetByID(ctx context.Context, orderID string, identity auth.Claims) (*commerce.Order, error) {
	order, err := s.provider.GetOrderByID(ctx, orderID, identity)
	if err == nil {
		return order, nil
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) || s.attempts == nil {
		return nil, err
	}

	attempt := s.lookupAttempt(ctx, orderID)
	if attempt == nil {
		return nil, err
	}
	if attempt.MedusaOrderID != nil && *attempt.MedusaOrderID != "" {
		return s.provider.GetOrderByID(ctx, *attempt.MedusaOrderID, identity)
	}
	if identity.IsSystem() || attempt.UserID == identity.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order is still being finalized")
	}
	return nil, err
}

// MarkPaid confirms payment from the client side, a fallback for when the
// success redirect lands before the webhook. On the headless backend an
// attempt id is finalized first; the provider capture itself is idempotent.
func (s *Service) MarkPaid(ctx context.Context, orderID string, identity auth.Claims, sessionID string) (*commerce.Order, error) {
	target := orderID

	if s.finalizer != nil {
		if attempt := s.lookupAttempt(ctx, orderID); attempt != nil {
			if !identity.IsSystem() && attempt.UserID != identity.UserID {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			if attempt.MedusaOrderID != nil && *attempt.MedusaOrderID != "" {
				target = *attempt.MedusaOrderID
			} else {
				finalized, err := s.finalizer.FinalizeAttempt(ctx, attempt.ID, sessionID)
				if err != nil {
					return nil, err
				}
				target = finalized.ID
			}
		}
	}

	return s.provider.MarkOrderPaid(ctx, target, identity, commerce.PaymentContext{SessionID: sessionID})
}

// lookupAttempt returns nil when the id does not parse or no attempt exists;
// read errors beyond not-found are logged and treated the same way, keeping
// the not-found response shape uniform.
func (s *Service) lookupAttempt(ctx context.Context, orderID string) *models.CheckoutAttempt {
	if s.attempts == nil {
		return nil
	}
	attemptID, err := uuid.Parse(orderID)
	if err != nil {
		return nil
	}
	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("attempt lookup failed for %s", attemptID))
		}
		return nil
	}
	return attempt
}
