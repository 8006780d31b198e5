package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/s4trading/storefront-backend/api/middleware"
	"github.com/s4trading/storefront-backend/api/responses"
	"github.com/s4trading/storefront-backend/api/validators"
	"github.com/s4trading/storefront-backend/internal/marketing"
	"github.com/s4trading/storefront-backend/pkg/enums"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/logger"
	"github.com/s4trading/storefront-backend/pkg/types"
)

const defaultLeadSource = "site-footer"

type marketingEventRequest struct {
	EventName string        `json:"eventName" validate:"required"`
	OrderID   string        `json:"orderId"`
	Metadata  types.JSONMap `json:"metadata"`
}

type marketingLeadRequest struct {
	Email  string `json:"email" validate:"required"`
	Source string `json:"source"`
	Notes  string `json:"notes"`
}

type marketingMetricsResponse struct {
	Date    string           `json:"date"`
	Metrics map[string]int64 `json:"metrics"`
}

type MarketingController struct {
	Repo   marketing.Repository
	Logger *logger.Logger
}

// CreateEvent records one funnel event. The storefront reports these
// client side, so the user association is best effort.
func (c *MarketingController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req marketingEventRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	eventName, err := enums.ParseMarketingEventName(req.EventName)
	if err != nil {
		responses.WriteError(ctx, c.Logger, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event name"))
		return
	}

	if err := c.Repo.RecordEvent(ctx, marketing.EventInput{
		EventName: eventName,
		UserID:    middleware.UserIDFromContext(ctx),
		OrderID:   req.OrderID,
		Metadata:  req.Metadata,
	}); err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	responses.WriteSuccessStatus(w, http.StatusCreated, map[string]bool{"recorded": true})
}

// CreateLead stores a newsletter or contact lead.
func (c *MarketingController) CreateLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req marketingLeadRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		responses.WriteError(ctx, c.Logger, w, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required"))
		return
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = defaultLeadSource
	}

	if err := c.Repo.RecordLead(ctx, marketing.LeadInput{
		Email:  email,
		Source: source,
		Notes:  strings.TrimSpace(req.Notes),
	}); err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	responses.WriteSuccessStatus(w, http.StatusCreated, map[string]bool{"recorded": true})
}

// Metrics returns today's event counts, bucketed by event name in UTC.
func (c *MarketingController) Metrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	metrics, err := c.Repo.TodayMetrics(ctx)
	if err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	responses.WriteSuccess(w, marketingMetricsResponse{
		Date:    time.Now().UTC().Format("2006-01-02"),
		Metrics: metrics,
	})
}
