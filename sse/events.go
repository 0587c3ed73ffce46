package sse

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"
)

// Event types emitted by the hub itself.
const (
	EventTypeConnected = "connected"
	EventTypeMessage   = "message"
)

// Event is one server-sent event.
type Event struct {
	// ID becomes the client's Last-Event-ID. Empty IDs are not written.
	ID string
	// Event is the event type; empty means the default "message" type.
	Event string
	Data  []byte
	// Retry, when positive, tells the client its reconnection delay.
	Retry time.Duration
}

// Type returns the event type as a client sees it.
func (e Event) Type() string {
	if e.Event == "" {
		return EventTypeMessage
	}
	return e.Event
}

// WriteTo writes the event in wire format, terminated by a blank line.
// Data containing line breaks is split across several data lines.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.Encode())
	return int64(n), err
}

// Encode returns the wire form of the event.
func (e Event) Encode() []byte {
	var buf bytes.Buffer
	if e.ID != "" {
		buf.WriteString("id: ")
		buf.WriteString(singleLine(e.ID))
		buf.WriteByte('\n')
	}
	if e.Event != "" {
		buf.WriteString("event: ")
		buf.WriteString(singleLine(e.Event))
		buf.WriteByte('\n')
	}
	if e.Retry > 0 {
		buf.WriteString("retry: ")
		buf.WriteString(strconv.FormatInt(e.Retry.Milliseconds(), 10))
		buf.WriteByte('\n')
	}
	data := strings.ReplaceAll(string(e.Data), "\r\n", "\n")
	data = strings.ReplaceAll(data, "\r", "\n")
	for _, line := range strings.Split(data, "\n") {
		buf.WriteString("data: ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// Comment returns a comment frame, ignored by clients.
func Comment(text string) []byte {
	return []byte(": " + singleLine(text) + "\n\n")
}

func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, s)
}
