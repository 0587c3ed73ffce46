package main

import (
	"fmt"
	"time"

	"github.com/kbukum/imagefeed/config"
	"github.com/kbukum/imagefeed/gallery"
	"github.com/kbukum/imagefeed/httpclient"
	"github.com/kbukum/imagefeed/sseclient"
	"github.com/kbukum/imagefeed/validation"
	"github.com/kbukum/imagefeed/version"
)

// Config is the feedwatch configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Stream StreamConfig         `yaml:"stream" mapstructure:"stream"`
	Output OutputConfig         `yaml:"output" mapstructure:"output"`
	API    gallery.ClientConfig `yaml:"api" mapstructure:"api"`
}

// StreamConfig describes the subscription.
type StreamConfig struct {
	URL      string        `yaml:"url" mapstructure:"url"`
	Retry    time.Duration `yaml:"retry" mapstructure:"retry"`
	MaxRetry time.Duration `yaml:"max_retry" mapstructure:"max_retry"`
	// Token is sent as a bearer token on every connect when set.
	Token string               `yaml:"token" mapstructure:"token"`
	TLS   httpclient.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// OutputConfig controls where entries go besides stdout.
type OutputConfig struct {
	// HTMLFile, when set, is rewritten with the events list after every entry.
	HTMLFile string `yaml:"html_file" mapstructure:"html_file"`
	// Limit caps the entries kept for the HTML file. Zero means the default
	// of 100 and -1 keeps every entry.
	Limit int `yaml:"limit" mapstructure:"limit"`
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "feedwatch"
	}
	if c.Version == "" {
		c.Version = version.Get().Version
	}
	// stdout carries entries.
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
	c.ServiceConfig.ApplyDefaults()

	if c.Stream.URL == "" {
		c.Stream.URL = "http://localhost:5000/stream/listen"
	}
	if c.Stream.Retry <= 0 {
		c.Stream.Retry = sseclient.DefaultRetry
	}
	if c.Stream.MaxRetry <= 0 {
		c.Stream.MaxRetry = sseclient.DefaultMaxRetry
	}
	if c.Output.Limit == 0 {
		c.Output.Limit = 100
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:5000"
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 10 * time.Second
	}
}

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if !validation.IsHTTPURL(c.Stream.URL) {
		return fmt.Errorf("stream.url must be an absolute http or https URL (got: %q)", c.Stream.URL)
	}
	if !validation.IsHTTPURL(c.API.BaseURL) {
		return fmt.Errorf("api.base_url must be an absolute http or https URL (got: %q)", c.API.BaseURL)
	}
	if err := c.Stream.TLS.Validate(); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	if err := c.API.TLS.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if c.Output.Limit < -1 {
		return fmt.Errorf("output.limit must be -1 or more (got: %d)", c.Output.Limit)
	}
	return nil
}
