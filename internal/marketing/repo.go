// Package marketing records funnel events and captured leads.
package marketing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/s4trading/storefront-backend/pkg/db/models"
	"github.com/s4trading/storefront-backend/pkg/enums"
	"github.com/s4trading/storefront-backend/pkg/types"
)

// EventInput is one funnel event to record.
type EventInput struct {
	EventName enums.MarketingEventName
	UserID    string
	OrderID   string
	Metadata  types.JSONMap
}

// LeadInput is one captured contact.
type LeadInput struct {
	Email  string
	Source string
	Notes  string
}

// Repository persists marketing events and leads.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	RecordEvent(ctx context.Context, input EventInput) error
	RecordLead(ctx context.Context, input LeadInput) error
	TodayMetrics(ctx context.Context) (map[string]int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a marketing repository bound to the provided database.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) RecordEvent(ctx context.Context, input EventInput) error {
	event := &models.MarketingEvent{
		ID:        uuid.New(),
		EventName: input.EventName,
	}
	if input.UserID != "" {
		event.UserID = &input.UserID
	}
	if input.OrderID != "" {
		event.OrderID = &input.OrderID
	}
	if input.Metadata != nil {
		event.Metadata = &input.Metadata
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) RecordLead(ctx context.Context, input LeadInput) error {
	lead := &models.MarketingLead{
		ID:    uuid.New(),
		Email: input.Email,
	}
	if input.Source != "" {
		lead.Source = &input.Source
	}
	if input.Notes != "" {
		lead.Notes = &input.Notes
	}
	return r.db.WithContext(ctx).Create(lead).Error
}

// TodayMetrics counts events per name since UTC midnight.
func (r *repository) TodayMetrics(ctx context.Context) (map[string]int64, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var rows []struct {
		EventName string
		Total     int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.MarketingEvent{}).
		Select("event_name, COUNT(*) AS total").
		Where("created_at >= ?", from).
		Group("event_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.EventName] = row.Total
	}
	return counts, nil
}
