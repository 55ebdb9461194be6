// Package instrument models the pieces of a lab instrument that the sweep
// core needs: a cached configuration-parameter layer over a raw command
// channel, and unit handling for multi-modal current/voltage sources.
package instrument

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lightwave-lab/golab/sweep"
)

// A CommandQuerier is the raw command channel of an instrument, typically a
// GPIB or VISA session. Command writes without reading back; Query writes
// and returns the instrument's reply.
type CommandQuerier interface {
	Command(cmd string) error
	Query(query string) (string, error)
}

// Configurable caches SCPI-style configuration parameters so that repeated
// reads of an unchanged parameter do not hit the wire.
type Configurable struct {
	conn  CommandQuerier
	cache map[string]string
}

// NewConfigurable creates a Configurable over a command channel.
func NewConfigurable(conn CommandQuerier) *Configurable {
	return &Configurable{
		conn:  conn,
		cache: make(map[string]string),
	}
}

// SetParam writes a parameter to the instrument and records it in the
// cache. The cache is only updated after the write succeeds.
func (c *Configurable) SetParam(key, value string) error {
	err := c.conn.Command(key + " " + value)
	if err != nil {
		return err
	}

	c.cache[key] = value

	return nil
}

// Param returns the value of a parameter, querying the instrument once on a
// cache miss.
func (c *Configurable) Param(key string) (string, error) {
	if v, ok := c.cache[key]; ok {
		return v, nil
	}

	v, err := c.conn.Query(key + "?")
	if err != nil {
		return "", err
	}

	v = strings.TrimSpace(v)
	c.cache[key] = v

	return v, nil
}

// Invalidate drops one parameter from the cache, forcing the next Param to
// query the hardware. Useful after the instrument changes state on its own,
// such as a sweep mode dropping back to CW.
func (c *Configurable) Invalidate(key string) {
	delete(c.cache, key)
}

// InvalidateAll drops the whole cache.
func (c *Configurable) InvalidateAll() {
	c.cache = make(map[string]string)
}

// ParamActuator returns a sweep actuator that writes values to one
// configuration parameter, formatted with the given verb (e.g. "%.6g").
func (c *Configurable) ParamActuator(key, format string) sweep.Actuator {
	return sweep.ActuatorFunc(func(v float64) error {
		return c.SetParam(key, fmt.Sprintf(format, v))
	})
}

// ParamSensor returns a sweep sensor that queries one parameter and parses
// the reply as a float. It bypasses the cache: a measurement must reflect
// the hardware at the time of the sweep point.
func (c *Configurable) ParamSensor(key string) sweep.Sensor {
	return sweep.SensorFunc(func() (float64, error) {
		reply, err := c.conn.Query(key + "?")
		if err != nil {
			return 0, err
		}

		fields := strings.Fields(strings.TrimSpace(reply))
		if len(fields) == 0 {
			return 0, fmt.Errorf("instrument: empty reply to %s?", key)
		}

		return strconv.ParseFloat(fields[0], 64)
	})
}
