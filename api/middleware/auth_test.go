package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/s4trading/storefront-backend/pkg/config"
)

func signTestToken(t *testing.T, secret, subject, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func identityProbe(seen *struct{ userID, email string }) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.userID = UserIDFromContext(r.Context())
		seen.email = EmailFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthDisabledRunsAsDemoUser(t *testing.T) {
	cfg := config.AuthConfig{Disabled: true, DemoUserID: "demo-user", DemoEmail: "demo@s4trading.com"}
	var seen struct{ userID, email string }

	handler := Auth(cfg, nil)(identityProbe(&seen))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seen.userID != "demo-user" || seen.email != "demo@s4trading.com" {
		t.Fatalf("unexpected identity %q/%q", seen.userID, seen.email)
	}
}

func TestAuthRejectsMissingCredentials(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "shh"}
	handler := Auth(cfg, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "shh"}
	handler := Auth(cfg, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "wrong-secret", "user-42", "chef@dune.ae"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthSeedsVerifiedIdentity(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "shh"}
	var seen struct{ userID, email string }

	handler := Auth(cfg, nil)(identityProbe(&seen))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "shh", "user-42", "chef@dune.ae"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seen.userID != "user-42" || seen.email != "chef@dune.ae" {
		t.Fatalf("unexpected identity %q/%q", seen.userID, seen.email)
	}
}
