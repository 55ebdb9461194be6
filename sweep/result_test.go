package sweep

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Result", func() {
	var result *Result

	BeforeEach(func() {
		result = newResult([]string{"bias", "power"}, 2)
		result.appendPoint([]float64{0.5, 12})
		result.appendPoint([]float64{1.0, 15})
	})

	It("should report unknown columns", func() {
		col, ok := result.Column("phase")

		Expect(ok).To(BeFalse())
		Expect(col).To(BeNil())
	})

	It("should return copies of its columns", func() {
		col, _ := result.Column("bias")
		col[0] = 99

		again, _ := result.Column("bias")
		Expect(again[0]).To(Equal(0.5))
	})

	It("should expose rows as maps", func() {
		Expect(result.Point(1)).To(Equal(map[string]float64{
			"bias":  1.0,
			"power": 15,
		}))
	})
})
