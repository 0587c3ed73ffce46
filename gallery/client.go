package gallery

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kbukum/imagefeed/errors"
	"github.com/kbukum/imagefeed/httpclient"
)

// API paths served by the image feed.
const (
	PathImages    = "/api/v1/images"
	PathSendImage = "/api/v1/send_image"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Retry retries connection failures and retryable statuses.
	Retry bool                 `mapstructure:"retry"`
	TLS   httpclient.TLSConfig `mapstructure:"tls"`
}

// Client calls the image feed REST API.
type Client struct {
	http *httpclient.Client
}

// NewClient creates an API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	hc := httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.Token),
		TLS:     &cfg.TLS,
	}
	if cfg.Retry {
		hc.Retry = httpclient.DefaultRetryConfig()
	}
	c, err := httpclient.New(hc)
	if err != nil {
		return nil, fmt.Errorf("gallery client: %w", err)
	}
	return &Client{http: c}, nil
}

// SendImage submits an image URL with an optional message.
func (c *Client) SendImage(ctx context.Context, url, message string) (*SubmitResponse, error) {
	resp, err := httpclient.Post[SubmitResponse](c.http, ctx, PathSendImage, SubmitRequest{URL: url, Message: message})
	if err != nil {
		return nil, apiError(err)
	}
	return &resp.Data, nil
}

// Images returns every stored image in submission order.
func (c *Client) Images(ctx context.Context) ([]Image, error) {
	resp, err := httpclient.Get[ImageResponse](c.http, ctx, PathImages)
	if err != nil {
		return nil, apiError(err)
	}
	if !resp.Data.Success {
		return nil, errors.ExternalServiceError("imagefeed", stderrors.New("image list reported failure"))
	}
	return resp.Data.Data, nil
}

// apiError recovers the server's AppError from an error body when present.
func apiError(err error) error {
	var httpErr *httpclient.Error
	if !stderrors.As(err, &httpErr) || len(httpErr.Body) == 0 {
		return err
	}
	var body errors.ErrorResponse
	if jsonErr := json.Unmarshal(httpErr.Body, &body); jsonErr != nil || body.Error.Code == "" {
		return err
	}
	appErr := errors.New(body.Error.Code, body.Error.Message, httpErr.StatusCode)
	appErr.Retryable = body.Error.Retryable
	appErr.Details = body.Error.Details
	return appErr.WithCause(httpErr)
}
