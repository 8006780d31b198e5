package middleware

import (
	"context"

	"github.com/s4trading/storefront-backend/pkg/auth"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxEmail  contextKey = "email"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func EmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxEmail).(string); ok {
		return v
	}
	return ""
}

// ClaimsFromContext rebuilds the verified identity for service calls.
func ClaimsFromContext(ctx context.Context) auth.Claims {
	return auth.Claims{
		UserID: UserIDFromContext(ctx),
		Email:  EmailFromContext(ctx),
	}
}

// WithIdentity injects the verified identity into the context.
func WithIdentity(ctx context.Context, userID, email string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxEmail, email)
}
