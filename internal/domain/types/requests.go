package types

import "errors"

// Sentinel kinds shared by the service and its transports.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrBackpressure = errors.New("frame queue full")
	ErrNotStarted   = errors.New("service not started")
)

// VisualizeRequest asks for a one-off render. Zero BarCount or Height
// selects the configured default.
type VisualizeRequest struct {
	UserPitch      []float64
	ReferencePitch []float64
	BarCount       int
	Height         float64
}

// SessionRequest opens a live practice session.
type SessionRequest struct {
	ReferencePitch []float64
	SongID         string
	SentenceID     string
	BarCount       int
	Height         float64
}

// SubmitResult reports what happened to a submitted frame.
type SubmitResult struct {
	FrameID   string
	Duplicate bool
}
