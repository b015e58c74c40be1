package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
	"github.com/lmduc2309/english-music-app/internal/domain/types"
)

// sessionRequest mirrors the OpenAPI schema for POST /sessions.
type sessionRequest struct {
	ReferencePitch []float64 `json:"reference_pitch"`
	SongID         string    `json:"song_id"`
	SentenceID     string    `json:"sentence_id"`
	BarCount       int       `json:"bar_count"`
	Height         float64   `json:"height"`
}

type sessionResponse struct {
	SessionID  string    `json:"session_id"`
	SongID     string    `json:"song_id,omitempty"`
	SentenceID string    `json:"sentence_id,omitempty"`
	BarCount   int       `json:"bar_count"`
	Height     float64   `json:"height"`
	CreatedAt  time.Time `json:"created_at"`
}

// frameRequest mirrors the OpenAPI schema for POST /sessions/{id}/frames.
type frameRequest struct {
	FrameID   string    `json:"frame_id"`
	Seq       *uint64   `json:"seq"`
	UserPitch []float64 `json:"user_pitch"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	FrameID   string `json:"frame_id"`
}

// SessionsHandler manages live sessions and their frames.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleCreate handles POST /sessions requests.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req sessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sess, err := h.deps.CreateSession(r.Context(), types.SessionRequest{
		ReferencePitch: req.ReferencePitch,
		SongID:         req.SongID,
		SentenceID:     req.SentenceID,
		BarCount:       req.BarCount,
		Height:         req.Height,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID:  sess.ID,
		SongID:     sess.SongID,
		SentenceID: sess.SentenceID,
		BarCount:   sess.BarCount,
		Height:     sess.Height,
		CreatedAt:  sess.CreatedAt,
	})
}

// HandleDelete handles DELETE /sessions/{id} requests.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_session"
	if err := h.deps.CloseSession(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubmitFrame handles POST /sessions/{id}/frames requests.
func (h *SessionsHandler) HandleSubmitFrame(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_frame"
	var req frameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Seq == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing seq")))
		return
	}

	res, err := h.deps.SubmitFrame(r.Context(), model.Frame{
		FrameID:    req.FrameID,
		SessionID:  r.PathValue("id"),
		Seq:        *req.Seq,
		UserPitch:  req.UserPitch,
		ReceivedAt: time.Now(),
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if res.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, FrameID: res.FrameID})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", FrameID: res.FrameID})
}

// HandleLatestFrame handles GET /sessions/{id}/frame requests.
func (h *SessionsHandler) HandleLatestFrame(w http.ResponseWriter, r *http.Request) {
	const op = "api.latest_frame"
	view, err := h.deps.LatestFrame(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
