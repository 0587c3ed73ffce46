package sseclient

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/imagefeed/gallery"
)

// Decode parses a new_msg event payload. The url field is required.
func Decode(ev *Event) (gallery.Payload, error) {
	var p gallery.Payload
	if err := json.Unmarshal([]byte(ev.Data), &p); err != nil {
		return gallery.Payload{}, fmt.Errorf("sseclient: decode %s event: %w", ev.Type(), err)
	}
	if p.URL == "" {
		return gallery.Payload{}, fmt.Errorf("sseclient: decode %s event: missing url", ev.Type())
	}
	return p, nil
}
