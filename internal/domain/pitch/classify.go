package pitch

import (
	"fmt"
	"math"
)

// Difference thresholds in normalized pitch units. They define how close a
// sung note must be to count as on pitch and are not configurable.
const (
	GoodThreshold    = 15.0
	WarningThreshold = 30.0
)

// DifferenceClass is the severity of the gap between the learner and the
// reference at one bar.
type DifferenceClass int

const (
	// Neutral means nothing to compare yet (the learner has not sung).
	Neutral DifferenceClass = iota
	Good
	Warning
	Poor
)

var classNames = [...]string{
	Neutral: "neutral",
	Good:    "good",
	Warning: "warning",
	Poor:    "poor",
}

// Display colour tokens from the client palette.
var classColors = [...]string{
	Neutral: "primary",
	Good:    "success",
	Warning: "warning",
	Poor:    "error",
}

func (c DifferenceClass) String() string {
	if c < Neutral || c > Poor {
		return fmt.Sprintf("DifferenceClass(%d)", int(c))
	}
	return classNames[c]
}

// Color returns the palette token a bar of this class is painted with.
func (c DifferenceClass) Color() string {
	if c < Neutral || c > Poor {
		return classColors[Neutral]
	}
	return classColors[c]
}

// MarshalText encodes the class by name.
func (c DifferenceClass) MarshalText() ([]byte, error) {
	if c < Neutral || c > Poor {
		return nil, fmt.Errorf("invalid difference class %d", int(c))
	}
	return []byte(classNames[c]), nil
}

// UnmarshalText decodes a class name.
func (c *DifferenceClass) UnmarshalText(b []byte) error {
	for i, name := range classNames {
		if name == string(b) {
			*c = DifferenceClass(i)
			return nil
		}
	}
	return fmt.Errorf("unknown difference class %q", string(b))
}

// ClassOf maps an absolute difference to a class. Comparisons are strict,
// so exactly 15 is Warning and exactly 30 is Poor.
func ClassOf(diff float64) DifferenceClass {
	switch {
	case diff < GoodThreshold:
		return Good
	case diff < WarningThreshold:
		return Warning
	default:
		return Poor
	}
}

// RawUserValue picks the learner sample compared against bar barIndex.
// The bar position is mapped back into the unresampled series by rounding,
// not by interpolation. Missing or non-finite samples read as 0.
func RawUserValue(user []float64, barIndex, barCount int) float64 {
	if len(user) == 0 || barCount < 1 {
		return 0
	}
	idx := int(math.Round(float64(barIndex) / float64(barCount) * float64(len(user)-1)))
	if idx < 0 || idx >= len(user) {
		return 0
	}
	v := user[idx]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Classify compares the learner against the reference at one bar. The
// reference is resampled to barCount first; the learner value comes from
// RawUserValue. An empty user series is Neutral whatever the reference.
func Classify(user, reference []float64, barIndex, barCount int) (DifferenceClass, error) {
	if barCount < 1 {
		return Neutral, fmt.Errorf("classify: %w", ErrInvalidBarCount)
	}
	if barIndex < 0 || barIndex >= barCount {
		return Neutral, fmt.Errorf("classify bar %d of %d: %w", barIndex, barCount, ErrBarIndexOutOfRange)
	}
	if len(user) == 0 {
		return Neutral, nil
	}
	ref, err := Resample(reference, barCount)
	if err != nil {
		return Neutral, err
	}
	return classifyAt(user, ref[barIndex], barIndex, barCount), nil
}

// classifyAt is Classify with the reference already resampled.
func classifyAt(user []float64, refValue float64, barIndex, barCount int) DifferenceClass {
	if len(user) == 0 {
		return Neutral
	}
	return ClassOf(math.Abs(RawUserValue(user, barIndex, barCount) - refValue))
}
