package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod names a supported HMAC algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// Config configures the token service.
type Config struct {
	// Secret is the HMAC signing key.
	Secret string `mapstructure:"secret"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `mapstructure:"method"`

	// Issuer is the "iss" claim; when set, parsed tokens must match it.
	Issuer string `mapstructure:"issuer"`

	// Audience is the "aud" claim; when set, parsed tokens must contain the first entry.
	Audience []string `mapstructure:"audience"`

	// AccessTokenTTL is the lifetime of issued tokens (default: 24h).
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`

	// Leeway tolerates clock skew when checking exp, nbf and iat.
	Leeway time.Duration `mapstructure:"leeway"`
}

// ApplyDefaults fills zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 24 * time.Hour
	}
}

// Validate checks the secret and method.
func (c *Config) Validate() error {
	switch c.Method {
	case HS256, HS384, HS512:
	default:
		return errors.New("jwt: unsupported signing method: " + string(c.Method))
	}
	if c.Secret == "" {
		return errors.New("jwt: secret is required")
	}
	if len(c.Secret) < 16 {
		return errors.New("jwt: secret must be at least 16 bytes")
	}
	if c.AccessTokenTTL < 0 {
		return errors.New("jwt: access_token_ttl must not be negative")
	}
	return nil
}

func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	default:
		return gojwt.SigningMethodHS256
	}
}
