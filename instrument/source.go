package instrument

import (
	"errors"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/lightwave-lab/golab/sweep"
)

// Errors returned by source configuration and tuning.
var (
	ErrUnknownMode    = errors.New("instrument: unsupported source mode")
	ErrOutOfRange     = errors.New("instrument: value out of source range")
	ErrUnknownChannel = errors.New("instrument: channel not blocked out")
)

// Mode selects the unit in which a source value is expressed.
type Mode string

// Modes supported by MultiModalSource.
const (
	ModeBaseUnit        Mode = "baseunit"
	ModeVolt            Mode = "volt"
	ModeMilliAmp        Mode = "milliamp"
	ModeAmp             Mode = "amp"
	ModeWattPerOhm      Mode = "wattperohm"
	ModeMilliWattPerOhm Mode = "mwperohm"
)

// A MultiModalSource converts between the units a source can be driven in
// and the scaled base unit the hardware actually accepts, and enforces the
// base-unit bounds. Default coefficients come from the NI PCI source array.
type MultiModalSource struct {
	// BaseUnitBounds is the allowed range in base units.
	BaseUnitBounds [2]float64

	// BaseToVoltCoef scales base units to volts.
	BaseToVoltCoef float64

	// VoltToMilliAmpCoef maps volts to milliamps: i[mA] = coef * v[V].
	VoltToMilliAmpCoef float64

	// Strict makes EnforceRange return ErrOutOfRange instead of clipping.
	Strict bool
}

// NewMultiModalSource creates a source with the default coefficients.
func NewMultiModalSource() *MultiModalSource {
	return &MultiModalSource{
		BaseUnitBounds:     [2]float64{0, 1},
		BaseToVoltCoef:     10,
		VoltToMilliAmpCoef: 4,
	}
}

// ToBaseUnit converts a value in the given mode to base units.
func (s *MultiModalSource) ToBaseUnit(value float64, mode Mode) (float64, error) {
	switch mode {
	case ModeBaseUnit:
		return value, nil
	case ModeVolt:
		return value / s.BaseToVoltCoef, nil
	case ModeMilliAmp:
		return value / s.VoltToMilliAmpCoef / s.BaseToVoltCoef, nil
	case ModeAmp:
		return s.mustToBase(value*1e3, ModeMilliAmp), nil
	case ModeWattPerOhm:
		amps := math.Copysign(math.Sqrt(math.Abs(value)), value)
		return s.mustToBase(amps, ModeAmp), nil
	case ModeMilliWattPerOhm:
		return s.mustToBase(value/1e3, ModeWattPerOhm), nil
	default:
		return 0, ErrUnknownMode
	}
}

// FromBaseUnit converts a base-unit value into the given mode.
func (s *MultiModalSource) FromBaseUnit(base float64, mode Mode) (float64, error) {
	switch mode {
	case ModeBaseUnit:
		return base, nil
	case ModeVolt:
		return base * s.BaseToVoltCoef, nil
	case ModeMilliAmp:
		return base * s.BaseToVoltCoef * s.VoltToMilliAmpCoef, nil
	case ModeAmp:
		return s.mustFromBase(base, ModeMilliAmp) * 1e-3, nil
	case ModeWattPerOhm:
		amps := s.mustFromBase(base, ModeAmp)
		return math.Copysign(amps*amps, base), nil
	case ModeMilliWattPerOhm:
		return s.mustFromBase(base, ModeWattPerOhm) * 1e3, nil
	default:
		return 0, ErrUnknownMode
	}
}

func (s *MultiModalSource) mustToBase(value float64, mode Mode) float64 {
	base, err := s.ToBaseUnit(value, mode)
	if err != nil {
		log.Panic(err)
	}

	return base
}

func (s *MultiModalSource) mustFromBase(base float64, mode Mode) float64 {
	value, err := s.FromBaseUnit(base, mode)
	if err != nil {
		log.Panic(err)
	}

	return value
}

// EnforceRange bounds a value, expressed in the given mode, to the source's
// base-unit range. Out-of-range values are clipped with a logged warning, or
// rejected with ErrOutOfRange when the source is Strict.
func (s *MultiModalSource) EnforceRange(value float64, mode Mode) (float64, error) {
	lo, err := s.FromBaseUnit(s.BaseUnitBounds[0], mode)
	if err != nil {
		return 0, err
	}

	hi, err := s.FromBaseUnit(s.BaseUnitBounds[1], mode)
	if err != nil {
		return 0, err
	}

	if lo > hi {
		lo, hi = hi, lo
	}

	enforced := math.Min(math.Max(value, lo), hi)
	if enforced != value {
		if s.Strict {
			return 0, ErrOutOfRange
		}

		log.Printf(
			"instrument: value %g out of range, constrained to [%g, %g] %ss",
			value, lo, hi, mode)
	}

	return enforced, nil
}

// A ChannelSource holds the per-channel drive state of a multi-channel
// source. Channels must be blocked out at construction; tuning an unknown
// channel is an error rather than a silent write to the wrong output.
type ChannelSource struct {
	mu    sync.Mutex
	state map[int]float64
}

// NewChannelSource blocks out the given channels, all starting at zero.
func NewChannelSource(channels ...int) *ChannelSource {
	state := make(map[int]float64, len(channels))
	for _, ch := range channels {
		state[ch] = 0
	}

	return &ChannelSource{state: state}
}

// Channels returns the blocked-out channels in ascending order.
func (s *ChannelSource) Channels() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	channels := make([]int, 0, len(s.state))
	for ch := range s.state {
		channels = append(channels, ch)
	}

	sort.Ints(channels)

	return channels
}

// SetChannelTuning updates a set of channel values. It reports whether any
// value actually changed, so callers can skip settling delays on no-ops. All
// channels are validated before any state changes.
func (s *ChannelSource) SetChannelTuning(tuning map[int]float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range tuning {
		if _, ok := s.state[ch]; !ok {
			return false, ErrUnknownChannel
		}
	}

	changed := false
	for ch, v := range tuning {
		if s.state[ch] != v {
			changed = true
		}

		s.state[ch] = v
	}

	return changed, nil
}

// ChannelTuning returns a copy of the full channel state.
func (s *ChannelSource) ChannelTuning() map[int]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	tuning := make(map[int]float64, len(s.state))
	for ch, v := range s.state {
		tuning[ch] = v
	}

	return tuning
}

// Off drives every blocked-out channel to zero but keeps the session.
func (s *ChannelSource) Off() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.state {
		s.state[ch] = 0
	}
}

// ChannelActuator returns a sweep actuator that drives one channel.
func (s *ChannelSource) ChannelActuator(ch int) sweep.Actuator {
	return sweep.ActuatorFunc(func(v float64) error {
		_, err := s.SetChannelTuning(map[int]float64{ch: v})
		return err
	})
}

// ChannelSensor returns a sweep sensor that reads one channel's state back.
func (s *ChannelSource) ChannelSensor(ch int) sweep.Sensor {
	return sweep.SensorFunc(func() (float64, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		v, ok := s.state[ch]
		if !ok {
			return 0, ErrUnknownChannel
		}

		return v, nil
	})
}
