package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/kbukum/imagefeed/gallery"
)

// MessageSeparator joins the date and message in an entry's text.
const MessageSeparator = " -- "

// Entry is one rendered feed item: a link to the image.
type Entry struct {
	Href string
	Text string
}

// NewEntry builds the entry for p. The text is the date, followed by the
// separator and message when a non-empty message is present.
func NewEntry(p gallery.Payload) Entry {
	text := p.Date
	if p.HasMessage() {
		text += MessageSeparator + *p.Message
	}
	return Entry{Href: p.URL, Text: text}
}

// WriteText writes e as one terminal line.
func WriteText(w io.Writer, e Entry) error {
	_, err := fmt.Fprintf(w, "%s  %s\n", e.Text, e.Href)
	return err
}

// List is an ordered, concurrency-safe list of entries.
type List struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int
}

// NewList creates a list keeping at most limit entries, dropping the oldest
// first. A limit of zero keeps everything.
func NewList(limit int) *List {
	return &List{limit: limit}
}

func (l *List) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if l.limit > 0 && len(l.entries) > l.limit {
		l.entries = append([]Entry(nil), l.entries[len(l.entries)-l.limit:]...)
	}
}

// Entries returns a copy of the entries in append order.
func (l *List) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// WriteHTML renders the list as the page's events element.
func (l *List) WriteHTML(w io.Writer) error {
	return templates.ExecuteTemplate(w, "events", l.Entries())
}
