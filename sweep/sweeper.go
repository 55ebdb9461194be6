package sweep

import (
	"sync"

	"github.com/rs/xid"
)

// An axis is one controllable parameter and its sweep domain.
type axis struct {
	name     string
	actuator Actuator
	domain   []float64
}

// A measurement is one named sensor invoked at every sweep point.
type measurement struct {
	name   string
	sensor Sensor
}

// A Sweeper executes the Cartesian product of its actuation domains,
// invoking every measurement at each point, and collects the readings into
// a Result.
//
// The instruments behind the registered actuators and sensors are
// exclusively owned by one in-flight gather. Concurrent gather calls on the
// same Sweeper serialize; sweepers sharing a physical device must serialize
// through an external lock.
type Sweeper struct {
	HookableBase

	name string

	mu           sync.Mutex
	axes         []axis
	measurements []measurement
}

// NewSweeper creates a Sweeper. An empty name is replaced with a generated
// one so that monitors can tell sweepers apart.
func NewSweeper(name string) *Sweeper {
	if name == "" {
		name = "sweep-" + xid.New().String()
	}

	return &Sweeper{name: name}
}

// Name returns the name of the Sweeper.
func (s *Sweeper) Name() string {
	return s.name
}

// AddActuation registers a named axis. The domain is copied; later mutation
// by the caller does not affect the sweep.
func (s *Sweeper) AddActuation(
	name string,
	act Actuator,
	domain []float64,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(domain) == 0 {
		return ErrEmptyDomain
	}

	if s.nameTaken(name) {
		return ErrDuplicateName
	}

	d := make([]float64, len(domain))
	copy(d, domain)

	s.axes = append(s.axes, axis{name: name, actuator: act, domain: d})

	return nil
}

// AddMeasurement registers a named sensor to be read at every sweep point.
func (s *Sweeper) AddMeasurement(name string, sensor Sensor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(name) {
		return ErrDuplicateName
	}

	s.measurements = append(s.measurements,
		measurement{name: name, sensor: sensor})

	return nil
}

func (s *Sweeper) nameTaken(name string) bool {
	for _, a := range s.axes {
		if a.name == name {
			return true
		}
	}

	for _, m := range s.measurements {
		if m.name == name {
			return true
		}
	}

	return false
}

// PointCount returns the number of points a full gather will visit.
func (s *Sweeper) PointCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pointCount()
}

func (s *Sweeper) pointCount() int {
	if len(s.axes) == 0 {
		return 0
	}

	total := 1
	for _, a := range s.axes {
		total *= len(a.domain)
	}

	return total
}

// Gather sweeps the lexicographic product of all registered axis domains.
// The first registered axis varies slowest. At each point, every actuation
// is applied in registration order before any sensor is read; the ordering
// is a contract, as it determines the physical meaning of the readings.
//
// On an actuator or sensor error the gather stops. The Result returned
// alongside the error holds the points completed before the failure and is
// marked Incomplete; the error is a *PointError wrapping the cause. Failed
// hardware calls are never retried.
func (s *Sweeper) Gather() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.axes) == 0 {
		return nil, ErrNoAxes
	}

	total := s.pointCount()
	result := newResult(s.columnNames(), total)
	indices := make([]int, len(s.axes))

	s.invokeGatherStart(total)

	for point := 0; point < total; point++ {
		values := make([]float64, 0, len(s.axes))
		for k := range s.axes {
			values = append(values, s.axes[k].domain[indices[k]])
		}

		err := s.runPoint(result, point, values)
		if err != nil {
			result.Incomplete = true
			s.invokeGatherEnd(result)

			return result, err
		}

		s.advance(indices)
	}

	s.invokeGatherEnd(result)

	return result, nil
}

// GatherZipped sweeps all axes in lockstep instead of taking their product.
// Every domain must have the same length; the sweep visits one point per
// shared index. Failure semantics match Gather.
func (s *Sweeper) GatherZipped() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.axes) == 0 {
		return nil, ErrNoAxes
	}

	length := len(s.axes[0].domain)
	for _, a := range s.axes[1:] {
		if len(a.domain) != length {
			return nil, ErrDomainLengthMismatch
		}
	}

	result := newResult(s.columnNames(), length)

	s.invokeGatherStart(length)

	for point := 0; point < length; point++ {
		values := make([]float64, 0, len(s.axes))
		for k := range s.axes {
			values = append(values, s.axes[k].domain[point])
		}

		err := s.runPoint(result, point, values)
		if err != nil {
			result.Incomplete = true
			s.invokeGatherEnd(result)

			return result, err
		}
	}

	s.invokeGatherEnd(result)

	return result, nil
}

// runPoint applies every actuation, reads every sensor, and commits the row.
// A row is committed only after the last sensor succeeds, so a Result never
// contains a half-measured point.
func (s *Sweeper) runPoint(
	result *Result,
	point int,
	actuationValues []float64,
) error {
	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosBeforePoint,
		Point:  point,
	})

	row := make([]float64, 0, len(s.axes)+len(s.measurements))

	for k, a := range s.axes {
		value := actuationValues[k]
		sample := ActuationSample{Name: a.name, Value: value}

		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosBeforeActuation,
			Point:  point,
			Item:   sample,
		})

		err := a.actuator.Apply(value)
		if err != nil {
			return &PointError{
				Point: point,
				Stage: StageActuate,
				Name:  a.name,
				Err:   err,
			}
		}

		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosAfterActuation,
			Point:  point,
			Item:   sample,
		})

		row = append(row, value)
	}

	for _, m := range s.measurements {
		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosBeforeMeasurement,
			Point:  point,
			Item:   MeasurementSample{Name: m.name},
		})

		value, err := m.sensor.Read()
		if err != nil {
			return &PointError{
				Point: point,
				Stage: StageMeasure,
				Name:  m.name,
				Err:   err,
			}
		}

		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosAfterMeasurement,
			Point:  point,
			Item:   MeasurementSample{Name: m.name, Value: value},
		})

		row = append(row, value)
	}

	result.appendPoint(row)

	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosAfterPoint,
		Point:  point,
	})

	return nil
}

// advance steps the odometer. The last registered axis varies fastest.
func (s *Sweeper) advance(indices []int) {
	for k := len(indices) - 1; k >= 0; k-- {
		indices[k]++
		if indices[k] < len(s.axes[k].domain) {
			return
		}

		indices[k] = 0
	}
}

func (s *Sweeper) invokeGatherStart(total int) {
	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosGatherStart,
		Item:   total,
	})
}

func (s *Sweeper) invokeGatherEnd(result *Result) {
	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosGatherEnd,
		Point:  result.Len(),
		Item:   result,
	})
}

func (s *Sweeper) columnNames() []string {
	names := make([]string, 0, len(s.axes)+len(s.measurements))
	for _, a := range s.axes {
		names = append(names, a.name)
	}

	for _, m := range s.measurements {
		names = append(names, m.name)
	}

	return names
}
