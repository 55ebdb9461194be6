// Package prologix adapts a Prologix GPIB controller to the golab
// capability interfaces. The GPIB wire protocol stays in gotmc/prologix;
// this package only formats SCPI set commands and parses query replies.
package prologix

import (
	"fmt"
	"strconv"
	"strings"

	gpib "github.com/gotmc/prologix"

	"github.com/lightwave-lab/golab/instrument"
	"github.com/lightwave-lab/golab/sweep"
)

// A Controller is the subset of the Prologix GPIB controller that the
// adapters use. *prologix.Controller satisfies it.
type Controller interface {
	Command(format string, a ...any) error
	Query(query string) (string, error)
}

var _ Controller = (*gpib.Controller)(nil)

// A Session wraps a controller as an instrument command channel, so the
// cached configuration layer can ride on GPIB.
type Session struct {
	ctrl Controller
}

// NewSession creates a Session over a controller.
func NewSession(ctrl Controller) *Session {
	return &Session{ctrl: ctrl}
}

// Command sends one raw command to the addressed instrument.
func (s *Session) Command(cmd string) error {
	return s.ctrl.Command("%s", cmd)
}

// Query sends one query and returns the trimmed reply.
func (s *Session) Query(query string) (string, error) {
	reply, err := s.ctrl.Query(query)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(reply), nil
}

var _ instrument.CommandQuerier = (*Session)(nil)

// SCPIActuator returns a sweep actuator that sends one formatted set
// command per value. The format must contain exactly one floating-point
// verb, e.g. "FREQ:CW %.6g".
func SCPIActuator(ctrl Controller, format string) sweep.Actuator {
	return sweep.ActuatorFunc(func(v float64) error {
		return ctrl.Command(format, v)
	})
}

// SCPISensor returns a sweep sensor that sends a query and parses the first
// field of the reply as a float, tolerating unit suffixes such as "dBm".
func SCPISensor(ctrl Controller, query string) sweep.Sensor {
	return sweep.SensorFunc(func() (float64, error) {
		reply, err := ctrl.Query(query)
		if err != nil {
			return 0, err
		}

		fields := strings.Fields(strings.TrimSpace(reply))
		if len(fields) == 0 {
			return 0, fmt.Errorf("prologix: empty reply to %q", query)
		}

		return strconv.ParseFloat(fields[0], 64)
	})
}
