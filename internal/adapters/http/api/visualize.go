package api

import (
	"net/http"

	"github.com/lmduc2309/english-music-app/internal/domain/types"
)

// visualizeRequest mirrors the OpenAPI schema for POST /visualize.
type visualizeRequest struct {
	UserPitch      []float64 `json:"user_pitch"`
	ReferencePitch []float64 `json:"reference_pitch"`
	BarCount       int       `json:"bar_count"`
	Height         float64   `json:"height"`
}

// VisualizeHandler serves stateless renders.
type VisualizeHandler struct {
	deps Dependencies
}

// NewVisualizeHandler creates a new visualize handler.
func NewVisualizeHandler(deps Dependencies) *VisualizeHandler {
	return &VisualizeHandler{deps: deps}
}

// HandleVisualize handles POST /visualize requests.
func (h *VisualizeHandler) HandleVisualize(w http.ResponseWriter, r *http.Request) {
	const op = "api.visualize"
	var req visualizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.Visualize(r.Context(), types.VisualizeRequest{
		UserPitch:      req.UserPitch,
		ReferencePitch: req.ReferencePitch,
		BarCount:       req.BarCount,
		Height:         req.Height,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
