package api

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/lmduc2309/english-music-app/internal/domain/types"
	"github.com/lmduc2309/english-music-app/pkg/metrics"
)

const defaultStreamWriteTimeout = 5 * time.Second

// StreamOption configures the StreamHandler.
type StreamOption func(*StreamHandler)

// WithOriginPatterns allows cross-origin websocket clients matching patterns.
func WithOriginPatterns(patterns ...string) StreamOption {
	return func(h *StreamHandler) {
		h.acceptOptions.OriginPatterns = append(h.acceptOptions.OriginPatterns, patterns...)
	}
}

// WithWriteTimeout bounds how long one frame may take to reach the client.
func WithWriteTimeout(d time.Duration) StreamOption {
	return func(h *StreamHandler) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// StreamHandler pushes rendered frames of a session over a websocket.
type StreamHandler struct {
	deps          Dependencies
	acceptOptions websocket.AcceptOptions
	writeTimeout  time.Duration
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps Dependencies, opts ...StreamOption) *StreamHandler {
	h := &StreamHandler{deps: deps, writeTimeout: defaultStreamWriteTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleStream handles GET /sessions/{id}/stream. Each accepted frame is
// sent as one JSON text message. Frames superseded before the client read
// them are skipped. The socket closes normally when the session ends.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream"
	frames, cancel, err := h.deps.Subscribe(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	defer cancel()

	conn, err := websocket.Accept(w, r, &h.acceptOptions)
	if err != nil {
		metrics.RecordErrorByComponent("stream", "accept_error")
		return
	}
	defer conn.CloseNow()

	// Clients only listen; CloseRead handles their control frames.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case rf, ok := <-frames:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
			if err := h.write(ctx, conn, types.NewSessionFrameView(rf)); err != nil {
				metrics.RecordErrorByComponent("stream", "write_error")
				return
			}
		}
	}
}

func (h *StreamHandler) write(ctx context.Context, conn *websocket.Conn, v types.FrameView) error {
	ctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}
