package pitch

import "math"

// Normalized value range of a pitch contour.
const (
	MinValue = 0.0
	MaxValue = 100.0
)

// BarHeight maps a normalized value to a display height:
// max(floor, value/100*maxHeight). With clamp set the value is first held
// to [0,100], so the bar never outgrows the visualizer.
func BarHeight(value, maxHeight, floor float64, clamp bool) float64 {
	if math.IsNaN(value) {
		value = 0
	}
	if clamp {
		value = clampValue(value)
	}
	return math.Max(floor, value/MaxValue*maxHeight)
}

// AnimatedHeight is the height a learner bar springs towards. The level is
// value/100 raised to at least minLevel, then spread over [floor, maxHeight].
func AnimatedHeight(value, maxHeight, floor, minLevel float64) float64 {
	if math.IsNaN(value) {
		value = 0
	}
	level := math.Max(minLevel, clampValue(value)/MaxValue)
	return floor + level*(maxHeight-floor)
}

func clampValue(v float64) float64 {
	return math.Min(MaxValue, math.Max(MinValue, v))
}
