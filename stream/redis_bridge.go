package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/imagefeed/component"
	apperrors "github.com/kbukum/imagefeed/errors"
	"github.com/kbukum/imagefeed/gallery"
	"github.com/kbukum/imagefeed/logger"
	"github.com/kbukum/imagefeed/redis"
	"github.com/kbukum/imagefeed/resilience"
	"github.com/kbukum/imagefeed/sse"
)

// envelope is the redis message. The event ID travels with the payload so
// every instance replays the same IDs.
type envelope struct {
	ID      string          `json:"id"`
	Payload gallery.Payload `json:"payload"`
}

// RedisBridge publishes payloads through redis and relays them to the
// local hub. It is a component and must start after the redis component.
type RedisBridge struct {
	client  func() *redis.Client
	local   *HubPublisher
	log     *logger.Logger
	breaker *resilience.CircuitBreaker

	mu      sync.Mutex
	sub     *goredis.PubSub
	channel string
	wg      sync.WaitGroup
}

var (
	_ gallery.Publisher     = (*RedisBridge)(nil)
	_ component.Component   = (*RedisBridge)(nil)
	_ component.Describable = (*RedisBridge)(nil)
)

// BridgeOption configures a RedisBridge.
type BridgeOption func(*resilience.CircuitBreakerConfig)

// WithPublishBreaker replaces the publish circuit breaker settings.
func WithPublishBreaker(maxFailures int, cooldown time.Duration) BridgeOption {
	return func(c *resilience.CircuitBreakerConfig) {
		c.MaxFailures = maxFailures
		c.Cooldown = cooldown
	}
}

// NewRedisBridge creates a bridge. client is called at Start and Publish,
// so a redis.Component's Client method can be passed before it starts.
func NewRedisBridge(client func() *redis.Client, hub sse.Broadcaster, log *logger.Logger, opts ...BridgeOption) *RedisBridge {
	b := &RedisBridge{
		client: client,
		local:  NewHubPublisher(hub),
		log:    log.WithComponent("stream"),
	}
	cfg := resilience.DefaultCircuitBreakerConfig("redis-publish")
	cfg.OnStateChange = func(name string, from, to resilience.State) {
		b.log.Warn("Publish breaker changed state", map[string]interface{}{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
		})
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	b.breaker = resilience.NewCircuitBreaker(cfg)
	return b
}

// Publish sends the payload to every instance, this one included. After
// repeated redis failures it fails fast until the breaker's cooldown ends.
func (b *RedisBridge) Publish(ctx context.Context, payload gallery.Payload) error {
	c := b.client()
	if c == nil {
		return apperrors.ServiceUnavailable("redis")
	}
	msg, err := json.Marshal(envelope{ID: b.local.newID(), Payload: payload})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	err = b.breaker.Execute(func() error {
		_, err := c.Publish(ctx, c.Channel(), msg)
		return err
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, resilience.ErrCircuitOpen):
		return apperrors.ServiceUnavailable("redis").WithCause(err)
	default:
		return apperrors.ExternalServiceError("redis", err)
	}
}

func (b *RedisBridge) Name() string { return "stream-bridge" }

// Start subscribes to the feed channel and relays messages to the hub.
func (b *RedisBridge) Start(ctx context.Context) error {
	c := b.client()
	if c == nil {
		return errors.New("stream bridge: redis client not started")
	}

	sub := c.Subscribe(context.Background(), c.Channel())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("stream bridge: subscribe %s: %w", c.Channel(), err)
	}

	b.mu.Lock()
	b.sub = sub
	b.channel = c.Channel()
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.relay(sub.Channel())
	}()

	b.log.Info("Relaying feed events from redis", map[string]interface{}{"channel": c.Channel()})
	return nil
}

func (b *RedisBridge) relay(messages <-chan *goredis.Message) {
	for msg := range messages {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil || env.ID == "" {
			b.log.Warn("Dropping malformed feed message", map[string]interface{}{
				"channel": msg.Channel,
				"size":    len(msg.Payload),
			})
			continue
		}
		if err := b.local.broadcast(context.Background(), env.ID, env.Payload); err != nil {
			fields := logger.ErrorFields("relay", err)
			fields[logger.FieldEventID] = env.ID
			b.log.Warn("Failed to relay feed message", fields)
		}
	}
}

// Stop unsubscribes and waits for the relay loop to exit.
func (b *RedisBridge) Stop(_ context.Context) error {
	b.mu.Lock()
	sub := b.sub
	b.sub = nil
	b.mu.Unlock()

	if sub == nil {
		return nil
	}
	err := sub.Close()
	b.wg.Wait()
	return err
}

func (b *RedisBridge) Health(_ context.Context) component.Health {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub == nil {
		return component.Health{Name: b.Name(), Status: component.StatusUnhealthy, Message: "not subscribed"}
	}
	if state := b.breaker.State(); state != resilience.StateClosed {
		return component.Health{Name: b.Name(), Status: component.StatusDegraded, Message: "publish breaker " + state.String()}
	}
	return component.Health{Name: b.Name(), Status: component.StatusHealthy, Message: "subscribed to " + b.channel}
}

func (b *RedisBridge) Describe() component.Description {
	return component.Description{Name: "Stream Bridge", Type: "redis-pubsub", Details: "relays feed events between instances"}
}
