package auth

import (
	"fmt"

	"github.com/kbukum/imagefeed/auth/jwt"
)

// Config holds authentication configuration.
type Config struct {
	// Enabled guards image submission with a bearer token.
	Enabled bool `mapstructure:"enabled"`

	JWT jwt.Config `mapstructure:"jwt"`
}

// ApplyDefaults sets defaults for the JWT section.
func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
}

// Validate checks the JWT section when auth is enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	return nil
}

// Describe returns a one-liner for the startup summary.
func (c *Config) Describe() string {
	if !c.Enabled {
		return "disabled"
	}
	return fmt.Sprintf("JWT(%s) TTL=%s", c.JWT.Method, c.JWT.AccessTokenTTL)
}
