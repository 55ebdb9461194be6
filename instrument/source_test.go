package instrument_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lightwave-lab/golab/instrument"
	"github.com/lightwave-lab/golab/sweep"
)

var _ = Describe("MultiModalSource", func() {
	var src *instrument.MultiModalSource

	BeforeEach(func() {
		src = instrument.NewMultiModalSource()
	})

	It("should convert base units through every mode and back", func() {
		for _, mode := range []instrument.Mode{
			instrument.ModeBaseUnit,
			instrument.ModeVolt,
			instrument.ModeMilliAmp,
			instrument.ModeAmp,
			instrument.ModeWattPerOhm,
			instrument.ModeMilliWattPerOhm,
		} {
			value, err := src.FromBaseUnit(0.5, mode)
			Expect(err).ToNot(HaveOccurred())

			back, err := src.ToBaseUnit(value, mode)
			Expect(err).ToNot(HaveOccurred())
			Expect(back).To(BeNumerically("~", 0.5, 1e-12), string(mode))
		}
	})

	It("should scale one base unit to the documented coefficients", func() {
		volts, _ := src.FromBaseUnit(1, instrument.ModeVolt)
		Expect(volts).To(Equal(10.0))

		milliamps, _ := src.FromBaseUnit(1, instrument.ModeMilliAmp)
		Expect(milliamps).To(Equal(40.0))

		amps, _ := src.FromBaseUnit(1, instrument.ModeAmp)
		Expect(amps).To(Equal(0.04))

		wattsPerOhm, _ := src.FromBaseUnit(1, instrument.ModeWattPerOhm)
		Expect(wattsPerOhm).To(BeNumerically("~", 0.0016, 1e-12))
	})

	It("should reject an unknown mode", func() {
		_, err := src.ToBaseUnit(1, instrument.Mode("furlong"))

		Expect(err).To(MatchError(instrument.ErrUnknownMode))
	})

	It("should clip out-of-range values by default", func() {
		v, err := src.EnforceRange(15, instrument.ModeVolt)

		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal(10.0))
	})

	It("should keep in-range values untouched", func() {
		v, err := src.EnforceRange(7.5, instrument.ModeVolt)

		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal(7.5))
	})

	It("should reject out-of-range values when strict", func() {
		src.Strict = true

		_, err := src.EnforceRange(15, instrument.ModeVolt)

		Expect(err).To(MatchError(instrument.ErrOutOfRange))
	})
})

var _ = Describe("ChannelSource", func() {
	var src *instrument.ChannelSource

	BeforeEach(func() {
		src = instrument.NewChannelSource(0, 2, 5)
	})

	It("should list blocked-out channels in order", func() {
		Expect(src.Channels()).To(Equal([]int{0, 2, 5}))
	})

	It("should refuse to tune an unknown channel", func() {
		_, err := src.SetChannelTuning(map[int]float64{1: 0.3})

		Expect(err).To(MatchError(instrument.ErrUnknownChannel))
		Expect(src.ChannelTuning()).To(Equal(map[int]float64{
			0: 0, 2: 0, 5: 0,
		}))
	})

	It("should report whether a tuning changed anything", func() {
		changed, err := src.SetChannelTuning(map[int]float64{0: 0.3})
		Expect(err).ToNot(HaveOccurred())
		Expect(changed).To(BeTrue())

		changed, err = src.SetChannelTuning(map[int]float64{0: 0.3})
		Expect(err).ToNot(HaveOccurred())
		Expect(changed).To(BeFalse())
	})

	It("should zero all channels on Off", func() {
		_, _ = src.SetChannelTuning(map[int]float64{0: 0.3, 2: 0.7})

		src.Off()

		Expect(src.ChannelTuning()).To(Equal(map[int]float64{
			0: 0, 2: 0, 5: 0,
		}))
	})

	It("should drive a sweep through its channel adapters", func() {
		sweeper := sweep.NewSweeper("source-sweep")

		err := sweeper.AddActuation("ch0", src.ChannelActuator(0),
			[]float64{0.1, 0.2, 0.3})
		Expect(err).ToNot(HaveOccurred())

		err = sweeper.AddMeasurement("ch0-readback", src.ChannelSensor(0))
		Expect(err).ToNot(HaveOccurred())

		result, err := sweeper.Gather()

		Expect(err).ToNot(HaveOccurred())
		readback, _ := result.Column("ch0-readback")
		Expect(readback).To(Equal([]float64{0.1, 0.2, 0.3}))
	})
})
