// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lmduc2309/english-music-app/internal/adapters/repository"
	"github.com/lmduc2309/english-music-app/internal/domain/model"
	"github.com/lmduc2309/english-music-app/internal/domain/types"
)

// maxBodyBytes bounds request bodies; a 4096-sample series is well below it.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Visualize(ctx context.Context, req types.VisualizeRequest) (types.FrameView, error)

	CreateSession(ctx context.Context, req types.SessionRequest) (model.Session, error)
	CloseSession(ctx context.Context, sessionID string) error

	// SubmitFrame queues a live frame. Returns types.ErrBackpressure when full.
	SubmitFrame(ctx context.Context, f model.Frame) (types.SubmitResult, error)
	LatestFrame(ctx context.Context, sessionID string) (types.FrameView, error)
	Subscribe(ctx context.Context, sessionID string) (<-chan model.RenderedFrame, func(), error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	visualizeHandler *VisualizeHandler
	sessionsHandler  *SessionsHandler
	streamHandler    *StreamHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...StreamOption) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		visualizeHandler: NewVisualizeHandler(deps),
		sessionsHandler:  NewSessionsHandler(deps),
		streamHandler:    NewStreamHandler(deps, opts...),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /visualize", MetricsMiddleware(s.visualizeHandler.HandleVisualize, "visualize"))
	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleDelete, "sessions"))
	mux.HandleFunc("POST /sessions/{id}/frames", MetricsMiddleware(s.sessionsHandler.HandleSubmitFrame, "frames"))
	mux.HandleFunc("GET /sessions/{id}/frame", MetricsMiddleware(s.sessionsHandler.HandleLatestFrame, "frame"))
	mux.HandleFunc("GET /sessions/{id}/stream", MetricsMiddleware(s.streamHandler.HandleStream, "stream"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps service and store sentinels to HTTP responses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, repository.ErrNoFrame):
		writeError(w, http.StatusNotFound, "no_frame", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, types.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, types.ErrNotStarted), errors.Is(err, repository.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
