package sweep

import (
	"errors"
	"fmt"
)

// Errors returned by sweeper registration and gathering.
var (
	ErrDuplicateName        = errors.New("sweep: name already registered")
	ErrEmptyDomain          = errors.New("sweep: domain must not be empty")
	ErrNoAxes               = errors.New("sweep: no actuation axis registered")
	ErrDomainLengthMismatch = errors.New(
		"sweep: zipped domains must share one length")
)

// Stage identifies which half of a sweep point failed.
type Stage string

// The two stages of a sweep point.
const (
	StageActuate Stage = "actuate"
	StageMeasure Stage = "measure"
)

// A PointError wraps an error returned by an actuator or sensor during a
// gather. Point is the zero-based index of the sweep point that failed.
type PointError struct {
	Point int
	Stage Stage
	Name  string
	Err   error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("sweep: point %d: %s %q: %v",
		e.Point, e.Stage, e.Name, e.Err)
}

// Unwrap returns the actuator or sensor error.
func (e *PointError) Unwrap() error {
	return e.Err
}
