package sweep

// An Actuator applies a value to one controllable parameter of an
// instrument. Apply blocks until the hardware has settled.
type Actuator interface {
	Apply(value float64) error
}

// ActuatorFunc adapts a plain function to the Actuator interface.
type ActuatorFunc func(value float64) error

// Apply calls f.
func (f ActuatorFunc) Apply(value float64) error {
	return f(value)
}

// A Sensor reads one value back from an instrument. Read blocks until the
// hardware responds.
type Sensor interface {
	Read() (float64, error)
}

// SensorFunc adapts a plain function to the Sensor interface.
type SensorFunc func() (float64, error)

// Read calls f.
func (f SensorFunc) Read() (float64, error) {
	return f()
}
