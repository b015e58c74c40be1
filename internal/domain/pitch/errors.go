package pitch

import "errors"

// Sentinel kinds for pitch computations. Both indicate a caller
// configuration bug rather than a data condition.
var (
	ErrInvalidBarCount    = errors.New("bar count must be at least 1")
	ErrBarIndexOutOfRange = errors.New("bar index out of range")
)
