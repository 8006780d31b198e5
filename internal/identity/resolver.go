package identity

import (
	"context"
	"fmt"

	"github.com/s4trading/storefront-backend/pkg/auth"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/logger"
	"github.com/s4trading/storefront-backend/pkg/medusa"
)

// CustomerDirectory is the slice of the headless backend's admin API the
// resolver needs.
type CustomerDirectory interface {
	FindCustomerByEmail(ctx context.Context, email string) (*medusa.Customer, error)
	CreateCustomer(ctx context.Context, input medusa.CustomerInput) (*medusa.Customer, error)
}

// Resolver maps a storefront identity to a headless-backend customer id:
// cached id on the user row first, then email lookup, then create-if-absent.
type Resolver struct {
	repo      Repository
	directory CustomerDirectory
	logg      *logger.Logger
}

// ResolverParams carries the dependencies for NewResolver.
type ResolverParams struct {
	Repo      Repository
	Directory CustomerDirectory
	Logger    *logger.Logger
}

// NewResolver wires a customer resolver.
func NewResolver(params ResolverParams) (*Resolver, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("identity repository required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("customer directory required")
	}
	return &Resolver{repo: params.Repo, directory: params.Directory, logg: params.Logger}, nil
}

// ResolveCustomerID returns the backend customer id for the authenticated
// user, creating the backend customer when none exists. The resolved id is
// persisted on the user row so later checkouts skip the lookup.
func (r *Resolver) ResolveCustomerID(ctx context.Context, identity auth.Claims) (string, error) {
	user, err := r.repo.FindByID(ctx, identity.UserID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user profile")
	}

	email := identity.Email
	if email == "" && user != nil && user.Email != nil {
		email = *user.Email
	}
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unable to resolve customer profile: no email")
	}

	if user != nil && user.MedusaCustomerID != nil && *user.MedusaCustomerID != "" {
		return *user.MedusaCustomerID, nil
	}

	existing, err := r.directory.FindCustomerByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.ID != "" {
		r.persist(ctx, identity.UserID, existing.ID)
		return existing.ID, nil
	}

	input := medusa.CustomerInput{Email: email, UserID: identity.UserID}
	if user != nil {
		if user.RestaurantName != nil {
			input.RestaurantName = *user.RestaurantName
		}
		if user.Phone != nil {
			input.Phone = *user.Phone
		}
	}

	created, err := r.directory.CreateCustomer(ctx, input)
	if err != nil {
		return "", err
	}
	if created == nil || created.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "unable to resolve customer profile")
	}

	r.persist(ctx, identity.UserID, created.ID)
	return created.ID, nil
}

// persist caches the resolved id; a write failure only costs a re-lookup.
func (r *Resolver) persist(ctx context.Context, userID, customerID string) {
	if err := r.repo.SetMedusaCustomerID(ctx, userID, customerID); err != nil && r.logg != nil {
		r.logg.Warn(ctx, fmt.Sprintf("failed to cache customer id for user %s", userID))
	}
}
