package pitch

// Default display parameters of the feedback visualizer.
const (
	DefaultBarCount    = 20
	DefaultHeight      = 120.0
	DefaultFloorHeight = 4.0
	DefaultMinLevel    = 0.04
)

// Option applies a configuration option to the Visualizer.
type Option func(*Visualizer)

// WithBarCount sets the number of bars.
func WithBarCount(n int) Option {
	return func(v *Visualizer) {
		if n > 0 {
			v.barCount = n
		}
	}
}

// WithHeight sets the visualizer height in display units.
func WithHeight(h float64) Option {
	return func(v *Visualizer) {
		if h > 0 {
			v.height = h
		}
	}
}

// WithFloorHeight sets the minimum bar height so silent bars stay visible.
func WithFloorHeight(h float64) Option {
	return func(v *Visualizer) {
		if h >= 0 {
			v.floor = h
		}
	}
}

// WithMinLevel sets the lowest animation level of a learner bar.
func WithMinLevel(level float64) Option {
	return func(v *Visualizer) {
		if level >= 0 && level <= 1 {
			v.minLevel = level
		}
	}
}

// WithClamp controls whether values outside [0,100] are clamped before the
// height mapping. Disable it to reproduce unclamped heights.
func WithClamp(clamp bool) Option {
	return func(v *Visualizer) {
		v.clamp = clamp
	}
}
