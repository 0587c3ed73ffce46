package sseclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/imagefeed/httpclient"
	"github.com/kbukum/imagefeed/httpclient/sse"
	"github.com/kbukum/imagefeed/logger"
	"github.com/kbukum/imagefeed/resilience"
	"github.com/kbukum/imagefeed/validation"
)

// Event is a dispatched server-sent event.
type Event = sse.Event

// Handler receives dispatched events.
type Handler func(ev *Event)

// ReadyState mirrors the EventSource readyState values.
type ReadyState int32

const (
	Connecting ReadyState = iota
	Open
	Closed
)

func (s ReadyState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	DefaultRetry    = 3 * time.Second
	DefaultMaxRetry = 30 * time.Second
)

var (
	// ErrStreamEnded is reported to OnError when the server closes the stream.
	ErrStreamEnded = stderrors.New("sseclient: stream ended")
	// ErrNotEventStream is returned when the response is not text/event-stream.
	ErrNotEventStream = stderrors.New("sseclient: response is not text/event-stream")
)

// Source is a reconnecting event stream subscription.
type Source struct {
	url     string
	client  *httpclient.Client
	backoff *resilience.Backoff
	log     *logger.Logger
	headers map[string]string
	auth    *httpclient.AuthConfig
	tls     *httpclient.TLSConfig

	retry    time.Duration
	maxRetry time.Duration

	mu          sync.RWMutex
	onOpen      func()
	onMessage   Handler
	onError     func(error)
	listeners   map[string][]Handler
	lastEventID string

	state  atomic.Int32
	cancel context.CancelFunc
	closed bool
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient sets the client used to open streams.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(s *Source) { s.client = c }
}

// WithRetry sets the reconnection delay used until the server sends retry.
func WithRetry(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.retry = d
		}
	}
}

// WithMaxRetry caps the delay between consecutive failed connects.
func WithMaxRetry(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.maxRetry = d
		}
	}
}

// WithHeader adds a request header to every connect.
func WithHeader(key, value string) Option {
	return func(s *Source) { s.headers[key] = value }
}

// WithAuth authenticates every connect.
func WithAuth(auth *httpclient.AuthConfig) Option {
	return func(s *Source) { s.auth = auth }
}

// WithTLS sets server verification for an https url. It is ignored when
// WithHTTPClient supplies the client.
func WithTLS(cfg *httpclient.TLSConfig) Option {
	return func(s *Source) { s.tls = cfg }
}

// WithLastEventID resumes from id on the first connect.
func WithLastEventID(id string) Option {
	return func(s *Source) { s.lastEventID = id }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Source) { s.log = l }
}

// New creates a Source for url. It does not connect until Run.
func New(url string, opts ...Option) (*Source, error) {
	if !validation.IsHTTPURL(url) {
		return nil, fmt.Errorf("sseclient: invalid stream url %q", url)
	}
	s := &Source{
		url:       url,
		headers:   make(map[string]string),
		listeners: make(map[string][]Handler),
		retry:     DefaultRetry,
		maxRetry:  DefaultMaxRetry,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent("sseclient")
	}
	if s.client == nil {
		c, err := httpclient.New(httpclient.Config{TLS: s.tls})
		if err != nil {
			return nil, fmt.Errorf("sseclient: %w", err)
		}
		s.client = c
	}
	if s.maxRetry < s.retry {
		s.maxRetry = s.retry
	}
	s.backoff = resilience.NewBackoff(resilience.RetryConfig{
		InitialBackoff: s.retry,
		MaxBackoff:     s.maxRetry,
		BackoffFactor:  2,
	})
	return s, nil
}

// URL returns the stream URL.
func (s *Source) URL() string { return s.url }

// OnOpen sets the handler called each time a connection is established.
func (s *Source) OnOpen(fn func()) {
	s.mu.Lock()
	s.onOpen = fn
	s.mu.Unlock()
}

// OnMessage sets the handler for unnamed events.
func (s *Source) OnMessage(fn Handler) {
	s.mu.Lock()
	s.onMessage = fn
	s.mu.Unlock()
}

// OnError sets the handler for connection failures. It is called before
// each reconnect and once more when the Source closes on a fatal error.
func (s *Source) OnError(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// AddEventListener registers fn for events of type eventType. Listeners
// for "message" receive unnamed events too.
func (s *Source) AddEventListener(eventType string, fn Handler) {
	s.mu.Lock()
	s.listeners[eventType] = append(s.listeners[eventType], fn)
	s.mu.Unlock()
}

// ReadyState returns the connection state.
func (s *Source) ReadyState() ReadyState {
	return ReadyState(s.state.Load())
}

// LastEventID returns the ID sent on the next reconnect.
func (s *Source) LastEventID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastEventID
}

// Close stops the Source. A running Run returns nil, and a later Run
// returns nil without connecting.
func (s *Source) Close() {
	s.mu.Lock()
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()
	s.state.Store(int32(Closed))
	if cancel != nil {
		cancel()
	}
}

// Run connects and dispatches events until ctx ends, Close is called, or a
// fatal response closes the Source. It returns nil on cancellation and the
// fatal error otherwise.
func (s *Source) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.state.Store(int32(Closed))
		return nil
	}
	s.cancel = cancel
	s.mu.Unlock()

	for {
		s.state.Store(int32(Connecting))
		err := s.stream(ctx)
		if ctx.Err() != nil {
			s.state.Store(int32(Closed))
			return nil
		}
		if isFatal(err) {
			s.state.Store(int32(Closed))
			s.log.Error("Stream closed permanently", map[string]interface{}{
				"url":   s.url,
				"error": err.Error(),
			})
			s.emitError(err)
			return err
		}

		delay := s.backoff.Next()
		s.log.Warn("Stream interrupted, reconnecting", map[string]interface{}{
			"url":   s.url,
			"error": err.Error(),
			"delay": delay.String(),
		})
		s.emitError(err)
		if resilience.Sleep(ctx, delay) != nil {
			s.state.Store(int32(Closed))
			return nil
		}
	}
}

// stream runs one connection. It always returns a non-nil error.
func (s *Source) stream(ctx context.Context) error {
	headers := map[string]string{
		"Accept":        "text/event-stream",
		"Cache-Control": "no-cache",
	}
	for k, v := range s.headers {
		headers[k] = v
	}

	// The reader starts from the current ID so an id-less event on the new
	// connection does not clear it.
	resp, err := s.client.DoStream(ctx, httpclient.Request{
		Method:      "GET",
		Path:        s.url,
		Headers:     headers,
		Auth:        s.auth,
		LastEventID: s.LastEventID(),
	})
	if err != nil {
		return err
	}
	defer resp.Close()

	if resp.SSE == nil {
		return &fatalError{err: fmt.Errorf("%w: got %q", ErrNotEventStream, resp.ContentType)}
	}

	s.state.Store(int32(Open))
	s.backoff.Reset()
	s.log.Info("Stream connected", map[string]interface{}{"url": s.url})
	s.mu.RLock()
	onOpen := s.onOpen
	s.mu.RUnlock()
	if onOpen != nil {
		onOpen()
	}

	for {
		ev, err := resp.SSE.Next()
		if retry := resp.SSE.Retry(); retry > 0 {
			s.backoff.SetBase(retry)
		}
		s.rememberID(resp.SSE.LastEventID())
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				return ErrStreamEnded
			}
			return fmt.Errorf("sseclient: read stream: %w", err)
		}
		s.dispatch(ev)
	}
}

func (s *Source) rememberID(id string) {
	s.mu.Lock()
	s.lastEventID = id
	s.mu.Unlock()
}

func (s *Source) dispatch(ev *Event) {
	s.mu.RLock()
	var handlers []Handler
	if ev.Type() == sse.DefaultEventType && s.onMessage != nil {
		handlers = append(handlers, s.onMessage)
	}
	handlers = append(handlers, s.listeners[ev.Type()]...)
	s.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

func (s *Source) emitError(err error) {
	s.mu.RLock()
	onError := s.onError
	s.mu.RUnlock()
	if onError != nil {
		onError(err)
	}
}

type fatalError struct{ err error }

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// isFatal reports a response the server meant as final: a non-2xx status
// or a body that is not an event stream.
func isFatal(err error) bool {
	var fe *fatalError
	if stderrors.As(err, &fe) {
		return true
	}
	var httpErr *httpclient.Error
	return stderrors.As(err, &httpErr) && httpErr.StatusCode != 0
}
