package search_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lightwave-lab/golab/search"
)

var _ = Describe("PeakSearch", func() {
	var opts search.Options

	BeforeEach(func() {
		opts = search.DefaultOptions().WithTolerance(1e-8)
	})

	It("should find the peak of a parabola", func() {
		x, fx, err := search.PeakSearch(noErr(func(x float64) float64 {
			return 5 - (x-1)*(x-1)
		}), 0, 3, opts)

		Expect(err).ToNot(HaveOccurred())
		Expect(x).To(BeNumerically("~", 1, 1e-6))
		Expect(fx).To(BeNumerically("~", 5, 1e-9))
	})

	It("should find the peak of sine on [0, pi]", func() {
		x, fx, err := search.PeakSearch(noErr(math.Sin), 0, math.Pi, opts)

		Expect(err).ToNot(HaveOccurred())
		Expect(x).To(BeNumerically("~", math.Pi/2, 1e-6))
		Expect(fx).To(BeNumerically("~", 1, 1e-9))
	})

	It("should give up when the iteration budget is too small", func() {
		tight := opts.WithTolerance(1e-15).WithMaxIterations(2)

		_, _, err := search.PeakSearch(noErr(math.Sin), 0, math.Pi, tight)

		Expect(err).To(MatchError(search.ErrDidNotConverge))
	})

	It("should reject an inverted interval", func() {
		_, _, err := search.PeakSearch(noErr(math.Sin), 1, 0, opts)

		Expect(err).To(MatchError(search.ErrInvalidInterval))
	})

	It("should propagate errors from the function under search", func() {
		hwErr := errors.New("laser unlocked")

		_, _, err := search.PeakSearch(func(x float64) (float64, error) {
			return 0, hwErr
		}, 0, 1, opts)

		Expect(errors.Is(err, hwErr)).To(BeTrue())
	})
})

var _ = Describe("ValleySearch", func() {
	It("should find the minimum of a parabola", func() {
		opts := search.DefaultOptions().WithTolerance(1e-8)

		x, fx, err := search.ValleySearch(noErr(func(x float64) float64 {
			return (x-2)*(x-2) + 1
		}), 0, 5, opts)

		Expect(err).ToNot(HaveOccurred())
		Expect(x).To(BeNumerically("~", 2, 1e-6))
		Expect(fx).To(BeNumerically("~", 1, 1e-9))
	})
})
