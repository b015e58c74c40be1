package pitch

import (
	"fmt"
	"math"
)

// Bar is one rendered feedback bar.
type Bar struct {
	Index int
	// Reference and User are the linearly resampled contour values.
	Reference float64
	User      float64
	// RawUser is the unresampled learner sample the class was computed from.
	RawUser   float64
	Class     DifferenceClass
	Color     string
	RefHeight float64
	// UserHeight is the animation target of the learner bar.
	UserHeight float64
}

// Summary counts bars per class.
type Summary struct {
	Neutral int
	Good    int
	Warning int
	Poor    int
	// MatchRatio is Good over compared bars; 0 when nothing was compared.
	MatchRatio float64
}

// Frame is the complete visual state for one pair of contours.
type Frame struct {
	BarCount int
	Height   float64
	Bars     []Bar
	Summary  Summary
}

// Visualizer renders frames with fixed display parameters. It holds no
// per-render state and is safe for concurrent use.
type Visualizer struct {
	barCount int
	height   float64
	floor    float64
	minLevel float64
	clamp    bool
}

// NewVisualizer creates a visualizer with configuration options.
func NewVisualizer(opts ...Option) *Visualizer {
	v := &Visualizer{
		barCount: DefaultBarCount,
		height:   DefaultHeight,
		floor:    DefaultFloorHeight,
		minLevel: DefaultMinLevel,
		clamp:    true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// BarCount returns the configured number of bars.
func (v *Visualizer) BarCount() int { return v.barCount }

// Height returns the configured height.
func (v *Visualizer) Height() float64 { return v.height }

// With returns a copy of v with extra options applied.
func (v *Visualizer) With(opts ...Option) *Visualizer {
	c := *v
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Render resamples both contours to the bar count and classifies each bar.
func (v *Visualizer) Render(user, reference []float64) (Frame, error) {
	ref, err := Resample(reference, v.barCount)
	if err != nil {
		return Frame{}, fmt.Errorf("render reference: %w", err)
	}
	usr, err := Resample(user, v.barCount)
	if err != nil {
		return Frame{}, fmt.Errorf("render user: %w", err)
	}

	f := Frame{
		BarCount: v.barCount,
		Height:   v.height,
		Bars:     make([]Bar, v.barCount),
	}
	for i := range f.Bars {
		class := classifyAt(user, ref[i], i, v.barCount)
		f.Bars[i] = Bar{
			Index:      i,
			Reference:  ref[i],
			User:       usr[i],
			RawUser:    RawUserValue(user, i, v.barCount),
			Class:      class,
			Color:      class.Color(),
			RefHeight:  BarHeight(ref[i], v.height, v.floor, v.clamp),
			UserHeight: v.userHeight(usr[i]),
		}
		f.Summary.add(class)
	}
	f.Summary.finish()
	return f, nil
}

func (v *Visualizer) userHeight(value float64) float64 {
	if v.clamp {
		return AnimatedHeight(value, v.height, v.floor, v.minLevel)
	}
	if math.IsNaN(value) {
		value = 0
	}
	return v.floor + math.Max(v.minLevel, value/MaxValue)*(v.height-v.floor)
}

func (s *Summary) add(c DifferenceClass) {
	switch c {
	case Good:
		s.Good++
	case Warning:
		s.Warning++
	case Poor:
		s.Poor++
	default:
		s.Neutral++
	}
}

func (s *Summary) finish() {
	compared := s.Good + s.Warning + s.Poor
	if compared > 0 {
		s.MatchRatio = float64(s.Good) / float64(compared)
	}
}
