// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
	"github.com/lmduc2309/english-music-app/internal/domain/pitch"
)

// BarView is one bar as served over HTTP.
type BarView struct {
	Index      int     `json:"index"`
	Reference  float64 `json:"reference"`
	User       float64 `json:"user"`
	RawUser    float64 `json:"raw_user"`
	Class      string  `json:"class"`
	Color      string  `json:"color"`
	RefHeight  float64 `json:"ref_height"`
	UserHeight float64 `json:"user_height"`
}

// SummaryView counts bars per class.
type SummaryView struct {
	Neutral    int     `json:"neutral"`
	Good       int     `json:"good"`
	Warning    int     `json:"warning"`
	Poor       int     `json:"poor"`
	MatchRatio float64 `json:"match_ratio"`
}

// FrameView is a rendered frame as served over HTTP. Session fields are
// empty for stateless renders.
type FrameView struct {
	SessionID  string      `json:"session_id,omitempty"`
	Seq        uint64      `json:"seq"`
	FrameID    string      `json:"frame_id,omitempty"`
	BarCount   int         `json:"bar_count"`
	Height     float64     `json:"height"`
	Bars       []BarView   `json:"bars"`
	Summary    SummaryView `json:"summary"`
	RenderedAt *time.Time  `json:"rendered_at,omitempty"`
}

// NewFrameView converts a bare visualizer frame.
func NewFrameView(f pitch.Frame) FrameView {
	v := FrameView{
		BarCount: f.BarCount,
		Height:   f.Height,
		Bars:     make([]BarView, len(f.Bars)),
		Summary: SummaryView{
			Neutral:    f.Summary.Neutral,
			Good:       f.Summary.Good,
			Warning:    f.Summary.Warning,
			Poor:       f.Summary.Poor,
			MatchRatio: f.Summary.MatchRatio,
		},
	}
	for i, b := range f.Bars {
		v.Bars[i] = BarView{
			Index:      b.Index,
			Reference:  b.Reference,
			User:       b.User,
			RawUser:    b.RawUser,
			Class:      b.Class.String(),
			Color:      b.Color,
			RefHeight:  b.RefHeight,
			UserHeight: b.UserHeight,
		}
	}
	return v
}

// NewSessionFrameView converts a frame rendered for a session.
func NewSessionFrameView(rf model.RenderedFrame) FrameView {
	v := NewFrameView(rf.Frame)
	v.SessionID = rf.SessionID
	v.Seq = rf.Seq
	v.FrameID = rf.FrameID
	if !rf.RenderedAt.IsZero() {
		at := rf.RenderedAt
		v.RenderedAt = &at
	}
	return v
}
