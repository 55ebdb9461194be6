package sweep

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Sweeper", func() {
	var (
		mockCtrl *gomock.Controller
		sweeper  *Sweeper
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sweeper = NewSweeper("test-sweep")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should sweep the product of all domains, first axis slowest", func() {
		var applied []float64
		count := 0.0

		err := sweeper.AddActuation("bias",
			ActuatorFunc(func(v float64) error {
				applied = append(applied, v)
				return nil
			}),
			[]float64{0, 1})
		Expect(err).ToNot(HaveOccurred())

		err = sweeper.AddActuation("freq",
			ActuatorFunc(func(v float64) error { return nil }),
			[]float64{10, 20, 30})
		Expect(err).ToNot(HaveOccurred())

		err = sweeper.AddMeasurement("power",
			SensorFunc(func() (float64, error) {
				count++
				return count, nil
			}))
		Expect(err).ToNot(HaveOccurred())

		result, err := sweeper.Gather()

		Expect(err).ToNot(HaveOccurred())
		Expect(result.Incomplete).To(BeFalse())
		Expect(result.Len()).To(Equal(6))

		bias, ok := result.Column("bias")
		Expect(ok).To(BeTrue())
		Expect(bias).To(Equal([]float64{0, 0, 0, 1, 1, 1}))

		freq, _ := result.Column("freq")
		Expect(freq).To(Equal([]float64{10, 20, 30, 10, 20, 30}))

		power, _ := result.Column("power")
		Expect(power).To(Equal([]float64{1, 2, 3, 4, 5, 6}))

		Expect(result.Names()).To(Equal([]string{"bias", "freq", "power"}))
	})

	It("should apply every actuation before any measurement", func() {
		var events []string

		_ = sweeper.AddActuation("a",
			ActuatorFunc(func(v float64) error {
				events = append(events, "a")
				return nil
			}),
			[]float64{1, 2})
		_ = sweeper.AddActuation("b",
			ActuatorFunc(func(v float64) error {
				events = append(events, "b")
				return nil
			}),
			[]float64{3})
		_ = sweeper.AddMeasurement("m",
			SensorFunc(func() (float64, error) {
				events = append(events, "m")
				return 0, nil
			}))

		_, err := sweeper.Gather()

		Expect(err).ToNot(HaveOccurred())
		Expect(events).To(Equal([]string{"a", "b", "m", "a", "b", "m"}))
	})

	It("should order hardware calls with mocked instruments", func() {
		actuator := NewMockActuator(mockCtrl)
		sensor := NewMockSensor(mockCtrl)

		first := actuator.EXPECT().Apply(1.0).Return(nil)
		second := sensor.EXPECT().Read().Return(0.5, nil).After(first)
		third := actuator.EXPECT().Apply(2.0).Return(nil).After(second)
		sensor.EXPECT().Read().Return(0.7, nil).After(third)

		_ = sweeper.AddActuation("stage", actuator, []float64{1, 2})
		_ = sweeper.AddMeasurement("detector", sensor)

		result, err := sweeper.Gather()

		Expect(err).ToNot(HaveOccurred())
		detector, _ := result.Column("detector")
		Expect(detector).To(Equal([]float64{0.5, 0.7}))
	})

	It("should reject duplicate names and keep prior registrations", func() {
		err := sweeper.AddActuation("bias",
			ActuatorFunc(func(v float64) error { return nil }),
			[]float64{0})
		Expect(err).ToNot(HaveOccurred())

		err = sweeper.AddActuation("bias",
			ActuatorFunc(func(v float64) error { return nil }),
			[]float64{1})
		Expect(err).To(MatchError(ErrDuplicateName))

		err = sweeper.AddMeasurement("bias",
			SensorFunc(func() (float64, error) { return 0, nil }))
		Expect(err).To(MatchError(ErrDuplicateName))

		_ = sweeper.AddMeasurement("power",
			SensorFunc(func() (float64, error) { return 42, nil }))

		result, err := sweeper.Gather()

		Expect(err).ToNot(HaveOccurred())
		Expect(result.Len()).To(Equal(1))

		bias, _ := result.Column("bias")
		Expect(bias).To(Equal([]float64{0}))
	})

	It("should reject an empty domain before any hardware call", func() {
		actuator := NewMockActuator(mockCtrl)

		err := sweeper.AddActuation("bias", actuator, nil)

		Expect(err).To(MatchError(ErrEmptyDomain))
	})

	It("should fail to gather without a registered axis", func() {
		_ = sweeper.AddMeasurement("power",
			SensorFunc(func() (float64, error) { return 0, nil }))

		result, err := sweeper.Gather()

		Expect(err).To(MatchError(ErrNoAxes))
		Expect(result).To(BeNil())
	})

	It("should keep completed rows when a sensor fails mid-sweep", func() {
		calls := 0
		sensorErr := errors.New("detector saturated")

		_ = sweeper.AddActuation("bias",
			ActuatorFunc(func(v float64) error { return nil }),
			[]float64{1, 2, 3, 4, 5})
		_ = sweeper.AddMeasurement("power",
			SensorFunc(func() (float64, error) {
				calls++
				if calls == 3 {
					return 0, sensorErr
				}
				return float64(calls), nil
			}))

		result, err := sweeper.Gather()

		Expect(err).To(HaveOccurred())
		Expect(result.Incomplete).To(BeTrue())
		Expect(result.Len()).To(Equal(2))

		var pointErr *PointError
		Expect(errors.As(err, &pointErr)).To(BeTrue())
		Expect(pointErr.Point).To(Equal(2))
		Expect(pointErr.Stage).To(Equal(StageMeasure))
		Expect(pointErr.Name).To(Equal("power"))
		Expect(errors.Is(err, sensorErr)).To(BeTrue())
	})

	It("should stop on a failing actuator without recording the point", func() {
		actuatorErr := errors.New("stage stuck")

		_ = sweeper.AddActuation("stage",
			ActuatorFunc(func(v float64) error {
				if v > 1 {
					return actuatorErr
				}
				return nil
			}),
			[]float64{1, 2})
		_ = sweeper.AddMeasurement("power",
			SensorFunc(func() (float64, error) { return 0, nil }))

		result, err := sweeper.Gather()

		Expect(result.Incomplete).To(BeTrue())
		Expect(result.Len()).To(Equal(1))

		var pointErr *PointError
		Expect(errors.As(err, &pointErr)).To(BeTrue())
		Expect(pointErr.Stage).To(Equal(StageActuate))
		Expect(pointErr.Point).To(Equal(1))
	})

	It("should zip equal-length domains in lockstep", func() {
		var pairs [][2]float64
		var current [2]float64

		_ = sweeper.AddActuation("x",
			ActuatorFunc(func(v float64) error {
				current[0] = v
				return nil
			}),
			[]float64{1, 2, 3})
		_ = sweeper.AddActuation("y",
			ActuatorFunc(func(v float64) error {
				current[1] = v
				return nil
			}),
			[]float64{10, 20, 30})
		_ = sweeper.AddMeasurement("sum",
			SensorFunc(func() (float64, error) {
				pairs = append(pairs, current)
				return current[0] + current[1], nil
			}))

		result, err := sweeper.GatherZipped()

		Expect(err).ToNot(HaveOccurred())
		Expect(result.Len()).To(Equal(3))
		Expect(pairs).To(Equal([][2]float64{{1, 10}, {2, 20}, {3, 30}}))

		sum, _ := result.Column("sum")
		Expect(sum).To(Equal([]float64{11, 22, 33}))
	})

	It("should refuse to zip domains of different lengths", func() {
		_ = sweeper.AddActuation("x",
			ActuatorFunc(func(v float64) error { return nil }),
			[]float64{1, 2, 3})
		_ = sweeper.AddActuation("y",
			ActuatorFunc(func(v float64) error { return nil }),
			[]float64{10, 20})

		result, err := sweeper.GatherZipped()

		Expect(err).To(MatchError(ErrDomainLengthMismatch))
		Expect(result).To(BeNil())
	})

	It("should invoke hooks around every point", func() {
		hook := &recordingHook{}
		sweeper.AcceptHook(hook)

		_ = sweeper.AddActuation("bias",
			ActuatorFunc(func(v float64) error { return nil }),
			[]float64{1, 2})
		_ = sweeper.AddMeasurement("power",
			SensorFunc(func() (float64, error) { return 0, nil }))

		_, err := sweeper.Gather()

		Expect(err).ToNot(HaveOccurred())
		Expect(hook.positions).To(Equal([]string{
			"GatherStart",
			"BeforePoint",
			"BeforeActuation", "AfterActuation",
			"BeforeMeasurement", "AfterMeasurement",
			"AfterPoint",
			"BeforePoint",
			"BeforeActuation", "AfterActuation",
			"BeforeMeasurement", "AfterMeasurement",
			"AfterPoint",
			"GatherEnd",
		}))
	})
})

type recordingHook struct {
	positions []string
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.positions = append(h.positions, ctx.Pos.Name)
}
