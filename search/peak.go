package search

import "math"

// invPhi narrows a golden-section bracket by the same ratio every step.
var invPhi = (math.Sqrt(5) - 1) / 2

// PeakSearch locates a maximum of fn inside [lo, hi] using golden-section
// bracketing. It returns the location of the peak and the function value
// there.
//
// fn should be unimodal on the interval; with multiple peaks the search
// settles on one of them. Termination follows the same tolerance and
// iteration-budget rules as Bisect.
func PeakSearch(fn Func, lo, hi float64, opts Options) (float64, float64, error) {
	if !(lo < hi) {
		return 0, 0, ErrInvalidInterval
	}

	a, b := lo, hi
	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)

	fc, err := fn(c)
	if err != nil {
		return 0, 0, err
	}

	fd, err := fn(d)
	if err != nil {
		return 0, 0, err
	}

	for i := 0; i < opts.MaxIterations; i++ {
		if b-a < opts.Tolerance {
			break
		}

		if fc > fd {
			b, d, fd = d, c, fc
			c = b - invPhi*(b-a)

			fc, err = fn(c)
			if err != nil {
				return 0, 0, err
			}
		} else {
			a, c, fc = c, d, fd
			d = a + invPhi*(b-a)

			fd, err = fn(d)
			if err != nil {
				return 0, 0, err
			}
		}
	}

	if b-a >= opts.Tolerance {
		x := a + (b-a)/2

		fx, err := fn(x)
		if err != nil {
			return 0, 0, err
		}

		return x, fx, ErrDidNotConverge
	}

	x := a + (b-a)/2

	fx, err := fn(x)
	if err != nil {
		return 0, 0, err
	}

	return x, fx, nil
}

// ValleySearch locates a minimum of fn inside [lo, hi]. It is PeakSearch on
// the negated function, with the value mapped back.
func ValleySearch(fn Func, lo, hi float64, opts Options) (float64, float64, error) {
	neg := func(x float64) (float64, error) {
		y, err := fn(x)
		return -y, err
	}

	x, fx, err := PeakSearch(neg, lo, hi, opts)

	return x, -fx, err
}
