package practice

import "errors"

// Error constants.
var (
	ErrInvalidTransition = errors.New("invalid practice transition")
	ErrNoSentences       = errors.New("song has no sentences")
	ErrNotLoaded         = errors.New("no song loaded")
	ErrComplete          = errors.New("song complete")
	ErrInvalidRange      = errors.New("invalid vocal range")
)
