package gallery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/imagefeed/logger"
	"github.com/kbukum/imagefeed/observability"
	"github.com/kbukum/imagefeed/util"
	"github.com/kbukum/imagefeed/validation"
)

// Publisher announces stored images to stream subscribers.
type Publisher interface {
	Publish(ctx context.Context, p Payload) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, p Payload) error

func (f PublisherFunc) Publish(ctx context.Context, p Payload) error { return f(ctx, p) }

// Service implements image submission and listing.
type Service struct {
	store     Store
	publisher Publisher
	log       *logger.Logger
	metrics   *observability.Metrics
	now       func() time.Time
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used to date submissions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a Service. publisher may be nil, in which case
// submissions are stored but not announced.
func NewService(store Store, publisher Publisher, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent("gallery")
	}
	return s
}

// Submit validates, stores and announces an image. A failed announcement
// is logged; the image stays stored and Submit still succeeds.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (_ *Image, err error) {
	req.URL = strings.TrimSpace(req.URL)
	ctx, op := observability.StartOperation(ctx, s.metrics, "gallery.submit",
		observability.AttrImageURL.String(req.URL))
	defer func() { op.End(err) }()

	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	img := Image{
		ID:      s.newID(),
		URL:     req.URL,
		Message: util.NilIfBlank(req.MessageText()),
		Date:    s.now().UTC().Truncate(time.Second),
	}
	observability.SetSpanAttributes(ctx, observability.AttrImageID.String(img.ID))

	if err := s.store.Add(ctx, img); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	log := s.log.WithContext(ctx)
	log.Info("Image received", map[string]interface{}{
		logger.FieldImageID: img.ID,
		"url":               img.URL,
		"has_message":       img.Message != nil,
	})

	if s.publisher != nil {
		if perr := s.publisher.Publish(ctx, img.Payload()); perr != nil {
			fields := logger.ErrorFields("publish", perr)
			fields[logger.FieldImageID] = img.ID
			log.Warn("Failed to announce image", fields)
		}
	}
	return &img, nil
}

// List returns every stored image in submission order.
func (s *Service) List(ctx context.Context) (_ ImageResponse, err error) {
	ctx, op := observability.StartOperation(ctx, s.metrics, "gallery.list")
	defer func() { op.End(err) }()

	images, err := s.store.List(ctx)
	if err != nil {
		return ImageResponse{}, fmt.Errorf("list images: %w", err)
	}
	if images == nil {
		images = []Image{}
	}
	return ImageResponse{Success: true, Data: images}, nil
}

// Seed stores urls without announcing them. It is a no-op when the store
// already holds images, so restarts against a database do not duplicate.
func (s *Service) Seed(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count images: %w", err)
	}
	if n > 0 {
		s.log.Debug("Store not empty, skipping seed", map[string]interface{}{"count": n})
		return nil
	}

	for _, u := range urls {
		u = strings.TrimSpace(u)
		if !validation.IsHTTPURL(u) {
			return fmt.Errorf("seed url %q: not an absolute http or https URL", u)
		}
		img := Image{ID: s.newID(), URL: u, Date: s.now().UTC().Truncate(time.Second)}
		if err := s.store.Add(ctx, img); err != nil {
			return fmt.Errorf("seed image: %w", err)
		}
	}
	s.log.Info("Seeded images", map[string]interface{}{"count": len(urls)})
	return nil
}
