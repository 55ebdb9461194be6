// Package search provides bracketing searches over scalar functions, used
// to locate thresholds and extrema of instrument responses.
package search

import "errors"

// Errors returned by the search routines.
var (
	ErrInvalidInterval = errors.New("search: interval must satisfy lo < hi")
	ErrNoBracket       = errors.New(
		"search: interval endpoints do not bracket a sign change")
	ErrDidNotConverge = errors.New(
		"search: iteration budget exhausted before reaching tolerance")
)

// A Func is a scalar function under search. Each invocation may drive real
// hardware; errors it returns abort the search and propagate to the caller.
type Func func(x float64) (float64, error)

// Options control the termination of a search.
type Options struct {
	// Tolerance is the bracket width below which the search stops.
	Tolerance float64

	// MaxIterations bounds the number of function-narrowing steps.
	MaxIterations int
}

// DefaultOptions returns the options used when the caller has no opinion.
func DefaultOptions() Options {
	return Options{
		Tolerance:     1e-9,
		MaxIterations: 100,
	}
}

// WithTolerance returns a copy of the options with the tolerance replaced.
func (o Options) WithTolerance(tol float64) Options {
	o.Tolerance = tol
	return o
}

// WithMaxIterations returns a copy of the options with the iteration budget
// replaced.
func (o Options) WithMaxIterations(n int) Options {
	o.MaxIterations = n
	return o
}
