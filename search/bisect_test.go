package search_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lightwave-lab/golab/search"
)

func noErr(fn func(float64) float64) search.Func {
	return func(x float64) (float64, error) {
		return fn(x), nil
	}
}

var _ = Describe("Bisect", func() {
	var opts search.Options

	BeforeEach(func() {
		opts = search.DefaultOptions()
	})

	It("should find the zero of the identity on [-1, 1]", func() {
		x, fx, err := search.Bisect(noErr(func(x float64) float64 {
			return x
		}), -1, 1, opts)

		Expect(err).ToNot(HaveOccurred())
		Expect(x).To(BeNumerically("~", 0, opts.Tolerance))
		Expect(fx).To(BeNumerically("~", 0, opts.Tolerance))
	})

	It("should find the zero of cosine near pi/2", func() {
		x, _, err := search.Bisect(noErr(math.Cos), 0, 3, opts)

		Expect(err).ToNot(HaveOccurred())
		Expect(x).To(BeNumerically("~", math.Pi/2, 1e-6))
	})

	It("should return an endpoint that is already a zero", func() {
		x, fx, err := search.Bisect(noErr(func(x float64) float64 {
			return x
		}), 0, 1, opts)

		Expect(err).ToNot(HaveOccurred())
		Expect(x).To(Equal(0.0))
		Expect(fx).To(Equal(0.0))
	})

	It("should reject intervals that do not bracket a sign change", func() {
		_, _, err := search.Bisect(noErr(func(x float64) float64 {
			return x*x + 1
		}), -1, 1, opts)

		Expect(err).To(MatchError(search.ErrNoBracket))
	})

	It("should reject an inverted interval", func() {
		_, _, err := search.Bisect(noErr(math.Cos), 3, 0, opts)

		Expect(err).To(MatchError(search.ErrInvalidInterval))
	})

	It("should give up when the iteration budget is too small", func() {
		tight := opts.WithTolerance(1e-15).WithMaxIterations(3)

		_, _, err := search.Bisect(noErr(func(x float64) float64 {
			return x - 0.3
		}), -1, 1, tight)

		Expect(err).To(MatchError(search.ErrDidNotConverge))
	})

	It("should propagate errors from the function under search", func() {
		hwErr := errors.New("detector offline")

		_, _, err := search.Bisect(func(x float64) (float64, error) {
			if x > 0 {
				return 0, hwErr
			}
			return x, nil
		}, -1, 1, opts)

		Expect(errors.Is(err, hwErr)).To(BeTrue())
	})
})
