package sse

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// ConnectedEvent is the payload of the connected event.
type ConnectedEvent struct {
	ClientID string            `json:"client_id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// LastEventID returns the ID a reconnecting client resumes from: the
// Last-Event-ID header, or the lastEventId query parameter used by
// polyfills that cannot set headers.
func LastEventID(r *http.Request) string {
	if id := r.Header.Get("Last-Event-ID"); id != "" {
		return id
	}
	return r.URL.Query().Get("lastEventId")
}

// ServeSSE streams hub events to one client until the request context ends
// or the hub drops the client.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, opts ...ClientOption) {
	log := hub.log.WithContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("Streaming not supported", map[string]interface{}{"client_id": clientID})
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Long-lived streams must outlive the server's timeouts.
	rc := http.NewResponseController(w)
	if err := errors.Join(rc.SetWriteDeadline(time.Time{}), rc.SetReadDeadline(time.Time{})); err != nil {
		log.Debug("Could not clear stream deadlines", map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		})
	}

	client := hub.NewClient(clientID, opts...)
	lastEventID := LastEventID(r)
	if err := hub.Register(client, lastEventID); err != nil {
		http.Error(w, "stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	connected, _ := json.Marshal(ConnectedEvent{ClientID: clientID, Metadata: client.Metadata()})
	if _, err := (Event{Event: EventTypeConnected, Data: connected, Retry: hub.Retry()}).WriteTo(w); err != nil {
		return
	}
	flusher.Flush()

	log.Debug("Client connected", map[string]interface{}{
		"client_id":     clientID,
		"last_event_id": lastEventID,
		"remote_addr":   r.RemoteAddr,
	})

	keepAlive := time.NewTicker(hub.KeepAlive())
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug("Client disconnected", map[string]interface{}{
				"client_id": clientID,
				"reason":    ctx.Err().Error(),
			})
			return

		case frame, ok := <-client.Events():
			if !ok {
				log.Debug("Client closed by hub", map[string]interface{}{"client_id": clientID})
				return
			}
			if _, err := w.Write(frame); err != nil {
				log.Debug("Write failed, closing stream", map[string]interface{}{
					"client_id": clientID,
					"error":     err.Error(),
				})
				return
			}
			flusher.Flush()

		case <-keepAlive.C:
			if _, err := w.Write(Comment("keepalive")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
