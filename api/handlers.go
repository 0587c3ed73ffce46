package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/imagefeed/errors"
	"github.com/kbukum/imagefeed/gallery"
	"github.com/kbukum/imagefeed/logger"
	"github.com/kbukum/imagefeed/render"
	"github.com/kbukum/imagefeed/server"
	"github.com/kbukum/imagefeed/sse"
)

const (
	PathIndex  = "/"
	PathListen = "/stream/listen"
	PathStatic = "/static"

	clientIDPrefix = "feed:"
)

// Handlers serves the gallery, submission and stream endpoints.
type Handlers struct {
	gallery *gallery.Service
	hub     *sse.Hub
	log     *logger.Logger
}

// NewHandlers creates handlers backed by svc and hub.
func NewHandlers(svc *gallery.Service, hub *sse.Hub, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.WithComponent("api")
	}
	return &Handlers{gallery: svc, hub: hub, log: log}
}

// Register mounts every route on r. Non-nil submitGuards run in order
// before the submission handler.
func (h *Handlers) Register(r gin.IRouter, submitGuards ...gin.HandlerFunc) {
	r.GET(PathIndex, h.Index)
	r.StaticFS(PathStatic, http.FS(render.Static()))
	r.GET(PathListen, h.Listen)

	v1 := r.Group("/api/v1")
	v1.GET("/images", h.Images)
	chain := make([]gin.HandlerFunc, 0, len(submitGuards)+1)
	for _, g := range submitGuards {
		if g != nil {
			chain = append(chain, g)
		}
	}
	v1.POST("/send_image", append(chain, h.SendImage)...)
}

// Index renders the gallery page with every stored image.
func (h *Handlers) Index(c *gin.Context) {
	resp, err := h.gallery.List(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := render.Page(&buf, resp.Data, nil); err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Images returns the stored images.
func (h *Handlers) Images(c *gin.Context) {
	resp, err := h.gallery.List(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, resp)
}

// SendImage accepts {"url": ..., "message": ...}, stores the image and
// announces it on the stream.
func (h *Handlers) SendImage(c *gin.Context) {
	var req gallery.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			server.RespondWithError(c, err)
			return
		}
		server.RespondWithError(c, apperrors.InvalidFormat("body", "JSON object").WithCause(err))
		return
	}

	img, err := h.gallery.Submit(c.Request.Context(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gallery.SubmitResponse{Received: true, URL: img.URL})
}

// Listen streams new images to the caller until it disconnects.
func (h *Handlers) Listen(c *gin.Context) {
	clientID := clientIDPrefix + uuid.NewString()
	sse.ServeSSE(h.hub, c.Writer, c.Request, clientID,
		sse.WithMetadata("remote_addr", c.ClientIP()),
		sse.WithMetadata("user_agent", c.Request.UserAgent()),
	)
}
