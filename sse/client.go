package sse

// Client is one connected stream subscriber.
type Client struct {
	id       string
	metadata map[string]string
	events   chan []byte
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetadata attaches a metadata key-value pair to the client.
func WithMetadata(key, value string) ClientOption {
	return func(c *Client) {
		c.metadata[key] = value
	}
}

// NewClient creates a client whose outgoing queue holds buffer frames.
func NewClient(id string, buffer int, opts ...ClientOption) *Client {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	c := &Client{
		id:       id,
		metadata: make(map[string]string),
		events:   make(chan []byte, buffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ID() string { return c.id }

func (c *Client) Metadata() map[string]string { return c.metadata }

// Events returns the queue of encoded frames. It is closed when the hub
// drops the client.
func (c *Client) Events() <-chan []byte { return c.events }

// Send queues a frame. It returns false when the queue is full.
func (c *Client) Send(frame []byte) bool {
	select {
	case c.events <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	close(c.events)
}
