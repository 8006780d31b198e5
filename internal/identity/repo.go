// Package identity maps authenticated storefront users to their restaurant
// profile row and to the headless backend's customer records.
package identity

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/s4trading/storefront-backend/pkg/db/models"
)

// Repository manages persistence for user profile rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, userID string) (*models.User, error)
	UpsertProfile(ctx context.Context, user *models.User) error
	SetMedusaCustomerID(ctx context.Context, userID, customerID string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a user repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindByID returns nil without error when no profile row exists yet; the
// identity provider is authoritative, the row is a cache.
func (r *repository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpsertProfile writes through the delivery profile captured at checkout.
func (r *repository) UpsertProfile(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"restaurant_name", "email", "phone", "delivery_address", "updated_at",
			}),
		}).
		Create(user).Error
}

func (r *repository) SetMedusaCustomerID(ctx context.Context, userID, customerID string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("medusa_customer_id", customerID).Error
}
