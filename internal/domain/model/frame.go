// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/lmduc2309/english-music-app/internal/domain/pitch"
)

// Frame is one live update of a learner's pitch contour.
type Frame struct {
	FrameID    string    // unique id for idempotency
	SessionID  string    // practice session the frame belongs to
	Seq        uint64    // client sequence number; higher supersedes lower
	UserPitch  []float64 // learner contour so far, normalized to [0,100]
	ReceivedAt time.Time
}

// Session binds a reference contour to display parameters for a run of
// live frames.
type Session struct {
	ID             string
	SongID         string
	SentenceID     string
	ReferencePitch []float64
	BarCount       int
	Height         float64
	CreatedAt      time.Time
	LastSeen       time.Time
}

// RenderedFrame is a Frame after the visualizer ran over it.
type RenderedFrame struct {
	SessionID  string
	Seq        uint64
	FrameID    string
	Frame      pitch.Frame
	RenderedAt time.Time
}
