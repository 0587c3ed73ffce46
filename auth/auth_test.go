package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/imagefeed/auth/authctx"
	"github.com/kbukum/imagefeed/auth/jwt"
	"github.com/kbukum/imagefeed/errors"
)

func TestClaimsSetDefaults(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Claims{RegisteredClaims: gojwt.RegisteredClaims{Issuer: "explicit"}}
	c.SetDefaults(now, time.Hour, "imagefeed", []string{"api"})

	if !c.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Errorf("expires = %v", c.ExpiresAt)
	}
	if c.Issuer != "explicit" {
		t.Errorf("explicit issuer overwritten: %q", c.Issuer)
	}
	if len(c.Audience) != 1 || c.Audience[0] != "api" {
		t.Errorf("audience = %v", c.Audience)
	}
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
	}{
		{"expired", fmt.Errorf("jwt: parse token: %w", gojwt.ErrTokenExpired), errors.ErrCodeTokenExpired},
		{"malformed", fmt.Errorf("jwt: parse token: %w", gojwt.ErrTokenMalformed), errors.ErrCodeInvalidToken},
		{"app error passthrough", errors.Unauthorized("nope"), errors.ErrCodeUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToAppError(tc.err); got.Code != tc.code {
				t.Errorf("code = %s, want %s", got.Code, tc.code)
			}
		})
	}
	if ToAppError(nil) != nil {
		t.Error("nil error should map to nil")
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled config should validate: %v", err)
	}
	if cfg.Describe() != "disabled" {
		t.Errorf("describe = %q", cfg.Describe())
	}

	cfg.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("enabled config without secret should fail")
	}
	cfg.JWT.Secret = "0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if cfg.Describe() != "JWT(HS256) TTL=24h0m0s" {
		t.Errorf("describe = %q", cfg.Describe())
	}
}

func TestValidatorRoundTrip(t *testing.T) {
	svc, err := jwt.NewService(&jwt.Config{Secret: "0123456789abcdef"}, func() *Claims { return &Claims{} })
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	token, err := svc.GenerateAccess(&Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "bot"},
		Scope:            ScopeSubmit,
	})
	if err != nil {
		t.Fatalf("GenerateAccess: %v", err)
	}

	v := NewValidator(svc.ValidatorFunc())
	raw, err := v.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	ctx := authctx.Set(context.Background(), raw)
	claims, ok := authctx.Get[*Claims](ctx)
	if !ok || claims.Subject != "bot" || claims.Scope != ScopeSubmit {
		t.Errorf("claims from context = %+v, %v", claims, ok)
	}
	if _, err := authctx.GetOrError[string](ctx); err != authctx.ErrNoClaims {
		t.Errorf("expected ErrNoClaims for wrong type, got %v", err)
	}
}

func TestClaimsHasScope(t *testing.T) {
	c := &Claims{Scope: "images:read " + ScopeSubmit}
	if !c.HasScope(ScopeSubmit) {
		t.Error("expected submit scope")
	}
	if c.HasScope("images") {
		t.Error("partial scope must not match")
	}
	if (&Claims{}).HasScope(ScopeSubmit) {
		t.Error("empty scope must not match")
	}
}
