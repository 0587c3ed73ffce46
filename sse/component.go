package sse

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/imagefeed/component"
	"github.com/kbukum/imagefeed/observability"
)

// Component runs a Hub under the component lifecycle.
type Component struct {
	hub     *Hub
	path    string
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	gauge   metric.Registration
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a component with a fresh hub serving path.
func NewComponent(path string, opts ...HubOption) *Component {
	return &Component{hub: NewHub(opts...), path: path}
}

func (c *Component) Hub() *Hub { return c.hub }

func (c *Component) Name() string { return "sse" }

// Start runs the hub loop and registers the connected clients gauge.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}

	gauge, err := observability.RegisterClientGauge(observability.Meter("imagefeed/sse"), c.hub.ClientCount)
	if err != nil {
		return fmt.Errorf("sse: %w", err)
	}
	c.gauge = gauge

	c.running = true
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.hub.Run()
	}()
	return nil
}

// Stop closes every client and waits for the hub loop to exit.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hub.Stop()
	c.wg.Wait()
	c.running = false
	if c.gauge != nil {
		err := c.gauge.Unregister()
		c.gauge = nil
		return err
	}
	return nil
}

func (c *Component) Health(_ context.Context) component.Health {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()
	if !running {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "hub not running"}
	}
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clients connected", c.hub.ClientCount()),
	}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "SSE Hub",
		Type:    "sse",
		Details: fmt.Sprintf("path=%s retry=%s history=%d", c.path, c.hub.Retry(), c.hub.historySize),
	}
}
