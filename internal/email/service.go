// Package email sends order confirmation email exactly once per
// (order, type) pair. The reliability store holds the claim; the provider
// transport is deliberately not retried.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/s4trading/storefront-backend/internal/reliability"
	"github.com/s4trading/storefront-backend/pkg/enums"
	"github.com/s4trading/storefront-backend/pkg/logger"
	"github.com/s4trading/storefront-backend/pkg/resend"
	"github.com/s4trading/storefront-backend/pkg/types"
)

// Sender is the transport slice of the email provider client.
type Sender interface {
	Send(ctx context.Context, msg resend.Message) (string, error)
}

// OrderEmail describes one confirmation email for an order.
type OrderEmail struct {
	OrderID       string
	OrderNumber   string
	To            string
	PaymentMethod enums.PaymentMethod
	DeliveryDate  string
	Amount        decimal.Decimal
	Items         []types.OrderItem
	TrackingURL   string
	Type          enums.EmailType
}

// SendResult reports what happened to one send request.
type SendResult struct {
	Sent      bool   `json:"sent"`
	Deduped   bool   `json:"deduped"`
	MessageID string `json:"messageId,omitempty"`
}

// Service coordinates the claim ledger and the provider transport.
type Service struct {
	claims reliability.Repository
	sender Sender
	logg   *logger.Logger
}

// Params carries the dependencies for NewService.
type Params struct {
	Claims reliability.Repository
	Sender Sender
	Logger *logger.Logger
}

// NewService wires the transactional email service.
func NewService(params Params) (*Service, error) {
	if params.Claims == nil {
		return nil, fmt.Errorf("reliability repository required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	return &Service{
		claims: params.Claims,
		sender: params.Sender,
		logg:   params.Logger,
	}, nil
}

// SendOrderConfirmation sends at most one confirmation per (order, type).
// A missing recipient and a lost claim both report deduped. A transport
// failure releases the claim so a later delivery can retry the send.
func (s *Service) SendOrderConfirmation(ctx context.Context, input OrderEmail) (*SendResult, error) {
	if strings.TrimSpace(input.To) == "" {
		return &SendResult{Sent: false, Deduped: true}, nil
	}

	claimed, err := s.claims.ClaimEmailSend(ctx, input.OrderID, input.Type)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return &SendResult{Sent: false, Deduped: true}, nil
	}

	messageID, err := s.sender.Send(ctx, resend.Message{
		To:      input.To,
		Subject: fmt.Sprintf("Order #%s confirmed", input.OrderNumber),
		HTML:    buildHTML(input),
	})
	if err != nil {
		if recErr := s.claims.RecordEmailFailure(ctx, input.OrderID, input.Type, err.Error()); recErr != nil && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("record email failure for order %s", input.OrderID))
		}
		if relErr := s.claims.ReleaseEmailClaim(ctx, input.OrderID, input.Type); relErr != nil && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("release email claim for order %s", input.OrderID))
		}
		return nil, err
	}

	if err := s.claims.AttachProviderMessageID(ctx, input.OrderID, input.Type, messageID); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("attach provider message id for order %s", input.OrderID))
	}

	return &SendResult{Sent: true, MessageID: messageID}, nil
}
