package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/s4trading/storefront-backend/pkg/config"
)

// SystemUserID is the trusted identity used by signature-verified internal
// paths (webhook finalization). It bypasses per-user ownership checks and must
// never be derivable from a client token.
const SystemUserID = "system"

var (
	errSecretRequired = errors.New("auth jwt secret is required")
	errMissingSubject = errors.New("token is missing a subject claim")
)

// Claims is the verified identity extracted from a bearer token.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// IsSystem reports whether the claims carry the trusted internal identity.
func (c Claims) IsSystem() bool {
	return c.UserID == SystemUserID
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ParseAccessToken verifies an identity-provider token (HS256, shared secret)
// and returns the claims. Tokens claiming the system identity are rejected.
func ParseAccessToken(cfg config.AuthConfig, token string) (*Claims, error) {
	secret := strings.TrimSpace(cfg.JWTSecret)
	if secret == "" {
		return nil, errSecretRequired
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	subject := strings.TrimSpace(parsed.Subject)
	if subject == "" {
		return nil, errMissingSubject
	}
	if subject == SystemUserID {
		return nil, errors.New("system identity cannot be asserted by a token")
	}

	return &Claims{
		UserID: subject,
		Email:  parsed.Email,
		Role:   parsed.Role,
	}, nil
}
