package sse

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/kbukum/imagefeed/logger"
	"github.com/kbukum/imagefeed/observability"
)

const (
	DefaultBufferSize  = 256
	DefaultHistorySize = 100
	DefaultRetry       = 3 * time.Second
	DefaultKeepAlive   = 30 * time.Second
)

// ErrHubStopped is returned when registering with a stopped hub.
var ErrHubStopped = errors.New("sse: hub stopped")

// Broadcaster sends events to stream clients.
type Broadcaster interface {
	Broadcast(ev Event)
	BroadcastToPattern(pattern string, ev Event)
}

type registration struct {
	client      *Client
	lastEventID string
}

type message struct {
	pattern string
	event   Event
	frame   []byte
}

type historyEntry struct {
	id    string
	frame []byte
}

// Hub manages client connections and broadcasting.
type Hub struct {
	clients    map[string]*Client
	register   chan registration
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	history     []historyEntry
	historySize int
	bufferSize  int
	retry       time.Duration
	keepAlive   time.Duration

	log     *logger.Logger
	metrics *observability.Metrics
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHistorySize sets how many identified events are kept for replay.
// Zero disables replay.
func WithHistorySize(n int) HubOption {
	return func(h *Hub) {
		if n >= 0 {
			h.historySize = n
		}
	}
}

// WithBufferSize sets the per-client queue length.
func WithBufferSize(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

// WithRetry sets the reconnection delay advertised to clients.
func WithRetry(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.retry = d
		}
	}
}

// WithKeepAlive sets the interval between keepalive comments.
func WithKeepAlive(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.keepAlive = d
		}
	}
}

func WithLogger(l *logger.Logger) HubOption {
	return func(h *Hub) { h.log = l }
}

func WithMetrics(m *observability.Metrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// NewHub creates a hub. Run must be called to start it.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients:     make(map[string]*Client),
		register:    make(chan registration),
		unregister:  make(chan *Client),
		broadcast:   make(chan message, 256),
		done:        make(chan struct{}),
		historySize: DefaultHistorySize,
		bufferSize:  DefaultBufferSize,
		retry:       DefaultRetry,
		keepAlive:   DefaultKeepAlive,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.WithComponent("sse")
	}
	// A full replay must fit in a fresh client queue.
	if h.bufferSize < h.historySize+1 {
		h.bufferSize = h.historySize + 1
	}
	return h
}

// Run is the hub's event loop. It blocks until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAllClients()
			return

		case reg := <-h.register:
			h.drainBroadcasts()
			h.replay(reg.client, reg.lastEventID)
			h.mu.Lock()
			if old, ok := h.clients[reg.client.id]; ok {
				old.close()
			}
			h.clients[reg.client.id] = reg.client
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("Client registered", map[string]interface{}{
				"client_id":     reg.client.id,
				"total_clients": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.id]; ok && current == client {
				delete(h.clients, client.id)
				client.close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("Client unregistered", map[string]interface{}{
				"client_id":     client.id,
				"total_clients": total,
			})

		case msg := <-h.broadcast:
			h.remember(msg)
			h.fanOut(msg)
		}
	}
}

// Stop shuts the hub down, closing every client queue. Safe to call
// multiple times.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds client to the hub. Events recorded after lastEventID are
// queued to it before any new broadcast.
func (h *Hub) Register(client *Client, lastEventID string) error {
	select {
	case h.register <- registration{client: client, lastEventID: lastEventID}:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Unregister removes client and closes its queue.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends ev to every client.
func (h *Hub) Broadcast(ev Event) {
	h.BroadcastToPattern("*", ev)
}

// BroadcastToPattern sends ev to clients whose ID matches the glob pattern
// (e.g. "feed:*").
func (h *Hub) BroadcastToPattern(pattern string, ev Event) {
	msg := message{pattern: pattern, event: ev, frame: ev.Encode()}
	select {
	case h.broadcast <- msg:
	case <-h.done:
		h.log.Warn("Broadcast after hub stopped", map[string]interface{}{"event": ev.Type()})
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ClientIDs returns the connected client IDs.
func (h *Hub) ClientIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// Retry returns the advertised reconnection delay.
func (h *Hub) Retry() time.Duration { return h.retry }

// KeepAlive returns the keepalive interval.
func (h *Hub) KeepAlive() time.Duration { return h.keepAlive }

// NewClient creates a client sized for this hub.
func (h *Hub) NewClient(id string, opts ...ClientOption) *Client {
	return NewClient(id, h.bufferSize, opts...)
}

// drainBroadcasts handles broadcasts already queued, so a client
// registering after a Broadcast call finds that event in history.
func (h *Hub) drainBroadcasts() {
	for {
		select {
		case msg := <-h.broadcast:
			h.remember(msg)
			h.fanOut(msg)
		default:
			return
		}
	}
}

func (h *Hub) remember(msg message) {
	if h.historySize == 0 || msg.event.ID == "" || msg.pattern != "*" {
		return
	}
	h.history = append(h.history, historyEntry{id: msg.event.ID, frame: msg.frame})
	if len(h.history) > h.historySize {
		h.history = h.history[len(h.history)-h.historySize:]
	}
}

// replay queues history after lastEventID. An ID not in history replays nothing.
func (h *Hub) replay(client *Client, lastEventID string) {
	if lastEventID == "" {
		return
	}
	idx := -1
	for i := len(h.history) - 1; i >= 0; i-- {
		if h.history[i].id == lastEventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		h.log.Debug("Last event not in history, skipping replay", map[string]interface{}{
			"client_id":     client.id,
			"last_event_id": lastEventID,
		})
		return
	}
	replayed := 0
	for _, entry := range h.history[idx+1:] {
		if client.Send(entry.frame) {
			replayed++
		}
	}
	if replayed > 0 {
		h.log.Debug("Replayed missed events", map[string]interface{}{
			"client_id": client.id,
			"count":     replayed,
		})
	}
}

func (h *Hub) fanOut(msg message) {
	ctx := context.Background()

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for clientID, client := range h.clients {
		matched, err := filepath.Match(msg.pattern, clientID)
		if err != nil {
			h.log.Error("Pattern match error", map[string]interface{}{
				"pattern": msg.pattern,
				"error":   err.Error(),
			})
			return
		}
		if !matched {
			continue
		}
		if client.Send(msg.frame) {
			delivered++
			continue
		}
		h.metrics.RecordDropped(ctx)
		h.log.Warn("Client queue full, dropping event", map[string]interface{}{
			"client_id": clientID,
			"event":     msg.event.Type(),
			"event_id":  msg.event.ID,
		})
	}
	h.metrics.RecordPublished(ctx, msg.event.Type())

	h.log.Debug("Broadcast sent", map[string]interface{}{
		"pattern":   msg.pattern,
		"event":     msg.event.Type(),
		"delivered": delivered,
		"data_size": len(msg.event.Data),
	})
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		client.close()
		delete(h.clients, id)
	}
	h.log.Debug("All clients closed during shutdown")
}

var _ Broadcaster = (*Hub)(nil)
