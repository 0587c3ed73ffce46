package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kbukum/imagefeed/gallery"
	"github.com/kbukum/imagefeed/observability"
	"github.com/kbukum/imagefeed/sse"
)

// HubPublisher broadcasts payloads as new_msg events on a local hub.
type HubPublisher struct {
	hub   sse.Broadcaster
	newID func() string
}

func NewHubPublisher(hub sse.Broadcaster) *HubPublisher {
	return &HubPublisher{hub: hub, newID: uuid.NewString}
}

// Publish broadcasts p under a fresh event ID.
func (p *HubPublisher) Publish(ctx context.Context, payload gallery.Payload) error {
	return p.broadcast(ctx, p.newID(), payload)
}

func (p *HubPublisher) broadcast(ctx context.Context, id string, payload gallery.Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	observability.SetSpanAttributes(ctx,
		observability.AttrEventID.String(id),
		observability.AttrEventType.String(gallery.EventNewImage),
	)
	p.hub.Broadcast(sse.Event{ID: id, Event: gallery.EventNewImage, Data: data})
	return nil
}

var _ gallery.Publisher = (*HubPublisher)(nil)
