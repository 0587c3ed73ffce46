package main

import (
	"fmt"
	"time"

	"github.com/kbukum/imagefeed/auth"
	"github.com/kbukum/imagefeed/config"
	"github.com/kbukum/imagefeed/database"
	"github.com/kbukum/imagefeed/observability"
	"github.com/kbukum/imagefeed/redis"
	"github.com/kbukum/imagefeed/server"
	"github.com/kbukum/imagefeed/sse"
	"github.com/kbukum/imagefeed/validation"
	"github.com/kbukum/imagefeed/version"
)

// Config is the imagefeed server configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Stream        StreamConfig         `yaml:"stream" mapstructure:"stream"`
	Submit        SubmitConfig         `yaml:"submit" mapstructure:"submit"`

	// Seed lists image URLs stored at startup when the store is empty.
	Seed []string `yaml:"seed" mapstructure:"seed"`
}

// StreamConfig tunes the event hub.
type StreamConfig struct {
	// History is the number of events kept for Last-Event-ID replay.
	// Negative disables replay.
	History   int           `yaml:"history" mapstructure:"history"`
	Buffer    int           `yaml:"buffer" mapstructure:"buffer"`
	Retry     time.Duration `yaml:"retry" mapstructure:"retry"`
	KeepAlive time.Duration `yaml:"keep_alive" mapstructure:"keep_alive"`
}

func (c *StreamConfig) ApplyDefaults() {
	if c.History == 0 {
		c.History = sse.DefaultHistorySize
	}
	if c.History < 0 {
		c.History = 0
	}
	if c.Buffer <= 0 {
		c.Buffer = sse.DefaultBufferSize
	}
	if c.Retry <= 0 {
		c.Retry = sse.DefaultRetry
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = sse.DefaultKeepAlive
	}
}

// SubmitConfig limits image submissions per client IP.
type SubmitConfig struct {
	// RateLimit is the number of submissions allowed per RateWindow.
	// Negative disables the limit.
	RateLimit  int           `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window" mapstructure:"rate_window"`
}

func (c *SubmitConfig) ApplyDefaults() {
	if c.RateLimit == 0 {
		c.RateLimit = 30
	}
	if c.RateWindow <= 0 {
		c.RateWindow = time.Minute
	}
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "imagefeed"
	}
	if c.Version == "" {
		c.Version = version.Get().Version
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Stream.ApplyDefaults()
	c.Submit.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}
	for i, u := range c.Seed {
		if !validation.IsHTTPURL(u) {
			return fmt.Errorf("seed[%d]: %q is not an absolute http or https URL", i, u)
		}
	}
	return nil
}
