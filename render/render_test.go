package render

import (
	"bytes"
	"io/fs"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/imagefeed/gallery"
	"github.com/kbukum/imagefeed/util"
)

func TestNewEntry(t *testing.T) {
	tests := []struct {
		name string
		p    gallery.Payload
		want string
	}{
		{"with message", gallery.Payload{Date: "2024-03-09T13:30:15Z", Message: util.Ptr("stonks"), URL: "u"}, "2024-03-09T13:30:15Z -- stonks"},
		{"null message", gallery.Payload{Date: "2024-03-09T13:30:15Z", URL: "u"}, "2024-03-09T13:30:15Z"},
		{"empty message", gallery.Payload{Date: "d", Message: util.Ptr(""), URL: "u"}, "d"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEntry(tc.p)
			if e.Text != tc.want {
				t.Errorf("text = %q, want %q", e.Text, tc.want)
			}
			if e.Href != tc.p.URL {
				t.Errorf("href = %q", e.Href)
			}
		})
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, Entry{Href: "http://x/a.png", Text: "d -- hi"}); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if buf.String() != "d -- hi  http://x/a.png\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestList(t *testing.T) {
	l := NewList(2)
	for _, text := range []string{"a", "b", "c"} {
		l.Append(Entry{Href: "http://x/" + text, Text: text})
	}
	if l.Len() != 2 {
		t.Fatalf("len = %d", l.Len())
	}
	got := l.Entries()
	if got[0].Text != "b" || got[1].Text != "c" {
		t.Errorf("entries = %+v", got)
	}
	got[0].Text = "mutated"
	if l.Entries()[0].Text != "b" {
		t.Error("Entries must return a copy")
	}
}

func TestList_ConcurrentAppend(t *testing.T) {
	l := NewList(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append(Entry{Text: "x"})
		}()
	}
	wg.Wait()
	if l.Len() != 50 {
		t.Errorf("len = %d", l.Len())
	}
}

func TestList_WriteHTML(t *testing.T) {
	l := NewList(0)
	var empty bytes.Buffer
	if err := l.WriteHTML(&empty); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if empty.String() != `<ul id="events"></ul>` {
		t.Errorf("empty list = %q", empty.String())
	}

	l.Append(NewEntry(gallery.Payload{Date: "d", Message: util.Ptr("<b>hi</b>"), URL: "http://x/a.png?w=1&h=2"}))
	l.Append(Entry{Href: "javascript:alert(1)", Text: "evil"})

	var buf bytes.Buffer
	if err := l.WriteHTML(&buf); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<li><a href="http://x/a.png?w=1&amp;h=2">d -- &lt;b&gt;hi&lt;/b&gt;</a></li>`,
		`href="#ZgotmplZ"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestPage(t *testing.T) {
	images := []gallery.Image{
		{ID: "1", URL: "https://cdn.example.com/a.png", Date: time.Date(2024, 3, 9, 13, 30, 15, 0, time.UTC)},
	}
	var buf bytes.Buffer
	if err := Page(&buf, images, []Entry{{Href: "http://x/b.png", Text: "later"}}); err != nil {
		t.Fatalf("Page: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<img src="https://cdn.example.com/a.png" alt="2024-03-09T13:30:15Z">`,
		`<ul id="events"><li><a href="http://x/b.png">later</a></li></ul>`,
		`<script src="/static/js/sse.js"></script>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in page", want)
		}
	}
}

func TestStatic(t *testing.T) {
	data, err := fs.ReadFile(Static(), "js/sse.js")
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	script := string(data)
	for _, want := range []string{`new EventSource("/stream/listen")`, `addEventListener("new_msg"`, `" -- "`} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}
}
