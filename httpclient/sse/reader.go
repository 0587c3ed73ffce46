// Package sse reads Server-Sent Events from an HTTP response body.
package sse

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultEventType is reported for events sent without an "event:" field.
const DefaultEventType = "message"

const maxLineSize = 1 << 20

// Event represents a single dispatched server-sent event.
type Event struct {
	// Event is the value of the "event:" field. Empty for unnamed events.
	Event string
	// Data is the payload. Multiple "data:" lines are joined with newlines.
	Data string
	// ID is the last event ID seen on the stream when this event was dispatched.
	ID string
	// Retry is the reconnection delay advertised in this event block, or zero.
	Retry time.Duration
}

// Type returns the event type, DefaultEventType for unnamed events.
func (e *Event) Type() string {
	if e.Event == "" {
		return DefaultEventType
	}
	return e.Event
}

// Reader reads server-sent events from a stream.
type Reader interface {
	// Next returns the next event. Returns io.EOF when the stream ends; an
	// event block cut off by the end of stream is discarded.
	Next() (*Event, error)
	// LastEventID returns the last "id:" value seen, which persists across events.
	LastEventID() string
	// Retry returns the last reconnection delay advertised by the server, or zero.
	Retry() time.Duration
	// Close releases the underlying resources.
	Close() error
}

type reader struct {
	scanner     *bufio.Scanner
	body        io.ReadCloser
	lastEventID string
	retry       time.Duration
	started     bool
}

// NewReader creates an SSE reader from a readable stream.
func NewReader(body io.ReadCloser) Reader {
	return NewReaderWithLastEventID(body, "")
}

// NewReaderWithLastEventID creates a reader that continues a stream resumed
// from lastEventID. Events dispatched before the server sends a new "id:"
// carry lastEventID.
func NewReaderWithLastEventID(body io.ReadCloser, lastEventID string) Reader {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	scanner.Split(scanLines)
	return &reader{scanner: scanner, body: body, lastEventID: lastEventID}
}

func (r *reader) Next() (*Event, error) {
	var (
		event   Event
		data    strings.Builder
		hasData bool
	)

	for r.scanner.Scan() {
		line := r.scanner.Text()
		if !r.started {
			line = strings.TrimPrefix(line, "\uFEFF")
			r.started = true
		}

		if line == "" {
			if hasData {
				event.Data = data.String()
				event.ID = r.lastEventID
				return &event, nil
			}
			// Nothing to dispatch; the event type does not carry over.
			event = Event{}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := parseSSELine(line)
		switch field {
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
		case "event":
			event.Event = value
		case "id":
			if !strings.ContainsRune(value, 0) {
				r.lastEventID = value
			}
		case "retry":
			if ms, ok := parseRetry(value); ok {
				r.retry = ms
				event.Retry = ms
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (r *reader) LastEventID() string  { return r.lastEventID }
func (r *reader) Retry() time.Duration { return r.retry }

func (r *reader) Close() error {
	return r.body.Close()
}

// parseSSELine splits a line into field and value. A line without a colon
// is a field name with an empty value.
func parseSSELine(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = line[idx+1:]
	if value != "" && value[0] == ' ' {
		value = value[1:]
	}
	return field, value
}

const maxRetryMillis = math.MaxInt64 / int64(time.Millisecond)

// parseRetry accepts only ASCII digits, in milliseconds. Values beyond the
// range of time.Duration saturate.
func parseRetry(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return 0, false
		}
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil || ms > maxRetryMillis {
		// Only digits reach ParseInt, so any error is a range error.
		ms = maxRetryMillis
	}
	return time.Duration(ms) * time.Millisecond, true
}

// scanLines splits on CRLF, LF, or a lone CR.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// Lone CR at the end of the buffer; wait to see if LF follows.
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
