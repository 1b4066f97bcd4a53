package sim

import "errors"

// Precondition errors returned by New.
var (
	ErrInvalidMass      = errors.New("sim: masses must be positive")
	ErrInvalidWidth     = errors.New("sim: block width must be positive")
	ErrInvalidTotalTime = errors.New("sim: total time must be positive")
	ErrNotFinite        = errors.New("sim: parameters must be finite")
	ErrOverlap          = errors.New("sim: initial positions overlap the wall or each other")
)
