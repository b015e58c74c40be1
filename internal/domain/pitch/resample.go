// Package pitch turns reference and live pitch contours into the bar
// feedback shown while a learner sings: linear resampling to a fixed bar
// count, per-bar difference classes, and display heights.
//
// Every function here is pure. Callers may recompute on each new input and
// simply drop the previous result.
package pitch

import (
	"fmt"
	"math"
)

// Resample converts source to exactly n points by linear interpolation
// between neighbouring samples. The first and last outputs equal the first
// and last inputs; values never leave the input's range.
//
// An empty source yields n zeros. n < 1 returns ErrInvalidBarCount.
func Resample(source []float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("resample to %d points: %w", n, ErrInvalidBarCount)
	}
	out := make([]float64, n)
	if len(source) == 0 {
		return out, nil
	}
	if n == 1 {
		out[0] = source[0]
		return out, nil
	}

	last := len(source) - 1
	ratio := float64(last) / float64(n-1)
	for i := range out {
		pos := float64(i) * ratio
		lo := int(math.Floor(pos))
		if lo > last {
			lo = last
		}
		hi := int(math.Ceil(pos))
		if hi > last {
			hi = last
		}
		frac := pos - float64(lo)
		out[i] = source[lo]*(1-frac) + source[hi]*frac
	}
	return out, nil
}
