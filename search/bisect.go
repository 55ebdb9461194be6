package search

import "math"

// Bisect locates a zero crossing of fn inside [lo, hi] by bracketing
// bisection. fn(lo) and fn(hi) must have opposite signs; otherwise Bisect
// returns ErrNoBracket before narrowing. It returns the location and the
// function value there.
//
// The search stops when the bracket width drops below opts.Tolerance. If the
// iteration budget runs out first, Bisect returns ErrDidNotConverge together
// with the best midpoint found.
func Bisect(fn Func, lo, hi float64, opts Options) (float64, float64, error) {
	if !(lo < hi) {
		return 0, 0, ErrInvalidInterval
	}

	flo, err := fn(lo)
	if err != nil {
		return 0, 0, err
	}

	if flo == 0 {
		return lo, flo, nil
	}

	fhi, err := fn(hi)
	if err != nil {
		return 0, 0, err
	}

	if fhi == 0 {
		return hi, fhi, nil
	}

	if math.Signbit(flo) == math.Signbit(fhi) {
		return 0, 0, ErrNoBracket
	}

	var mid, fmid float64
	for i := 0; i < opts.MaxIterations; i++ {
		mid = lo + (hi-lo)/2

		fmid, err = fn(mid)
		if err != nil {
			return 0, 0, err
		}

		if fmid == 0 || hi-lo < opts.Tolerance {
			return mid, fmid, nil
		}

		if math.Signbit(fmid) == math.Signbit(flo) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}

	return mid, fmid, ErrDidNotConverge
}
