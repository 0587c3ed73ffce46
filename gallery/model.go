package gallery

import (
	"strings"
	"time"
)

// EventNewImage is the stream event type announcing a submitted image.
const EventNewImage = "new_msg"

// Image is a submitted image. Images are never modified once stored.
type Image struct {
	ID      string    `json:"id"`
	URL     string    `json:"url"`
	Message *string   `json:"message"`
	Date    time.Time `json:"date"`
}

// Payload returns the stream payload announcing the image.
func (i Image) Payload() Payload {
	return Payload{
		Date:    FormatDate(i.Date),
		Message: i.Message,
		URL:     i.URL,
	}
}

// Payload is the JSON body of a new_msg stream event. Message is null when
// the image was submitted without one.
type Payload struct {
	Date    string  `json:"date"`
	Message *string `json:"message"`
	URL     string  `json:"url"`
}

// HasMessage reports a non-empty message.
func (p Payload) HasMessage() bool {
	return p.Message != nil && *p.Message != ""
}

// FormatDate renders t as RFC 3339 in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ImageResponse is the body of the image list endpoint.
type ImageResponse struct {
	Success bool    `json:"success"`
	Data    []Image `json:"data"`
}

// SubmitRequest is the body of the image submission endpoint. Text is the
// field name older chat bots send the message under.
type SubmitRequest struct {
	URL     string `json:"url" validate:"required,http_url,max=2048"`
	Message string `json:"message,omitempty" validate:"max=2000"`
	Text    string `json:"text,omitempty" validate:"max=2000"`
}

// MessageText returns the submitted message, preferring Message over Text.
func (r SubmitRequest) MessageText() string {
	if m := strings.TrimSpace(r.Message); m != "" {
		return m
	}
	return strings.TrimSpace(r.Text)
}

// SubmitResponse echoes an accepted submission.
type SubmitResponse struct {
	Received bool   `json:"received"`
	URL      string `json:"url"`
}
