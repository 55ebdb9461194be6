package lab

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// Errors returned by state mutation.
var (
	ErrNotFound      = errors.New("lab: element not found")
	ErrUnknownPort   = errors.New("lab: port is not declared by the element")
	ErrDuplicateName = errors.New("lab: name already present")
)

// A State is the set of elements and connections present in the lab. All
// methods are safe for concurrent use.
type State struct {
	mu sync.Mutex

	hosts       []Host
	benches     []Bench
	instruments []Instrument
	devices     []Device
	connections []Connection

	// loadedHash is the hash of the file this state was loaded from, used
	// to detect concurrent edits before overwriting.
	loadedHash string
}

// NewState creates an empty lab state.
func NewState() *State {
	return &State{}
}

// Hosts returns a copy of the registered hosts.
func (s *State) Hosts() []Host {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Host(nil), s.hosts...)
}

// Benches returns a copy of the registered benches.
func (s *State) Benches() []Bench {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Bench(nil), s.benches...)
}

// Instruments returns a copy of the registered instruments.
func (s *State) Instruments() []Instrument {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Instrument(nil), s.instruments...)
}

// Devices returns a copy of the registered devices.
func (s *State) Devices() []Device {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Device(nil), s.devices...)
}

// Connections returns a copy of the registered connections.
func (s *State) Connections() []Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Connection(nil), s.connections...)
}

// UpdateHosts inserts hosts or overwrites hosts of the same name. At most one
// local host may be present; an attempt to add a second one is skipped with a
// warning so that the established local host keeps its role.
func (s *State) UpdateHosts(hosts ...Host) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range hosts {
		if h.Local {
			if name, ok := s.localHostName(); ok && name != h.Name {
				log.Printf("lab: local host already present: %s, "+
					"not updating host %s", name, h.Name)
				continue
			}
		}

		if i, ok := s.hostIndex(h.Name); ok {
			s.hosts[i] = h
			continue
		}

		s.hosts = append(s.hosts, h)
	}
}

// UpdateBenches inserts benches or overwrites benches of the same name.
func (s *State) UpdateBenches(benches ...Bench) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range benches {
		if i, ok := s.benchIndex(b.Name); ok {
			s.benches[i] = b
			continue
		}

		s.benches = append(s.benches, b)
	}
}

// InsertInstrument adds an instrument. A bench or host the instrument refers
// to that is not registered yet is created on the fly.
func (s *State) InsertInstrument(inst Instrument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.instrumentIndex(inst.Name); ok {
		return fmt.Errorf("%w: instrument %s", ErrDuplicateName, inst.Name)
	}

	s.instruments = append(s.instruments, inst)
	s.ensureBench(inst.Bench)
	s.ensureHost(inst.Host)

	return nil
}

// InsertDevice adds a device. A bench the device refers to that is not
// registered yet is created on the fly.
func (s *State) InsertDevice(dev Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deviceIndex(dev.Name); ok {
		return fmt.Errorf("%w: device %s", ErrDuplicateName, dev.Name)
	}

	s.devices = append(s.devices, dev)
	s.ensureBench(dev.Bench)

	return nil
}

// DeleteInstrument removes an instrument by name, along with any connection
// touching it.
func (s *State) DeleteInstrument(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.instrumentIndex(name)
	if !ok {
		return fmt.Errorf("%w: instrument %s", ErrNotFound, name)
	}

	s.instruments = append(s.instruments[:i], s.instruments[i+1:]...)

	kept := s.connections[:0]
	for _, c := range s.connections {
		if c.A.Element != name && c.B.Element != name {
			kept = append(kept, c)
		}
	}
	s.connections = kept

	return nil
}

// FindInstrument returns the instrument with the given name.
func (s *State) FindInstrument(name string) (Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.instrumentIndex(name); ok {
		return s.instruments[i], nil
	}

	return Instrument{}, fmt.Errorf("%w: instrument %s", ErrNotFound, name)
}

// FindBenchFromInstrument returns the bench holding the named instrument.
func (s *State) FindBenchFromInstrument(name string) (Bench, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.instrumentIndex(name)
	if !ok {
		return Bench{}, fmt.Errorf("%w: instrument %s", ErrNotFound, name)
	}

	if j, ok := s.benchIndex(s.instruments[i].Bench); ok {
		return s.benches[j], nil
	}

	return Bench{}, fmt.Errorf("%w: bench of instrument %s", ErrNotFound, name)
}

// FindHostFromInstrument returns the host the named instrument is attached
// to.
func (s *State) FindHostFromInstrument(name string) (Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.instrumentIndex(name)
	if !ok {
		return Host{}, fmt.Errorf("%w: instrument %s", ErrNotFound, name)
	}

	if j, ok := s.hostIndex(s.instruments[i].Host); ok {
		return s.hosts[j], nil
	}

	return Host{}, fmt.Errorf("%w: host of instrument %s", ErrNotFound, name)
}

// UpdateConnections records cables between ports. Every endpoint must name a
// registered instrument or device and one of its declared ports; otherwise
// nothing is changed. A port carries at most one connection, so an existing
// connection on any of the given endpoints is evicted with a warning.
func (s *State) UpdateConnections(connections ...Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range connections {
		for _, e := range []Endpoint{c.A, c.B} {
			err := s.validateEndpoint(e)
			if err != nil {
				return err
			}
		}
	}

	for _, c := range connections {
		kept := s.connections[:0]
		for _, existing := range s.connections {
			if existing.involves(c.A) || existing.involves(c.B) {
				log.Printf("lab: deleting existing connection %v", existing)
				continue
			}

			kept = append(kept, existing)
		}
		s.connections = kept
	}

	for _, c := range connections {
		duplicate := false
		for _, existing := range s.connections {
			if existing.equal(c) {
				duplicate = true
				break
			}
		}

		if duplicate {
			log.Printf("lab: connection already exists: %v", c)
			continue
		}

		s.connections = append(s.connections, c)
	}

	return nil
}

func (s *State) validateEndpoint(e Endpoint) error {
	ports, err := s.elementPorts(e.Element)
	if err != nil {
		return err
	}

	for _, p := range ports {
		if p == e.Port {
			return nil
		}
	}

	return fmt.Errorf("%w: %q on %s", ErrUnknownPort, e.Port, e.Element)
}

func (s *State) elementPorts(name string) ([]string, error) {
	if i, ok := s.instrumentIndex(name); ok {
		return s.instruments[i].Ports, nil
	}

	if i, ok := s.deviceIndex(name); ok {
		return s.devices[i].Ports, nil
	}

	return nil, fmt.Errorf("%w: element %s", ErrNotFound, name)
}

func (s *State) ensureBench(name string) {
	if name == "" {
		return
	}

	if _, ok := s.benchIndex(name); ok {
		return
	}

	log.Printf("lab: inserting new bench %s", name)
	s.benches = append(s.benches, Bench{Name: name})
}

func (s *State) ensureHost(name string) {
	if name == "" {
		return
	}

	if _, ok := s.hostIndex(name); ok {
		return
	}

	log.Printf("lab: inserting new host %s", name)
	s.hosts = append(s.hosts, Host{Name: name})
}

func (s *State) localHostName() (string, bool) {
	for _, h := range s.hosts {
		if h.Local {
			return h.Name, true
		}
	}

	return "", false
}

func (s *State) hostIndex(name string) (int, bool) {
	for i, h := range s.hosts {
		if h.Name == name {
			return i, true
		}
	}

	return 0, false
}

func (s *State) benchIndex(name string) (int, bool) {
	for i, b := range s.benches {
		if b.Name == name {
			return i, true
		}
	}

	return 0, false
}

func (s *State) instrumentIndex(name string) (int, bool) {
	for i, inst := range s.instruments {
		if inst.Name == name {
			return i, true
		}
	}

	return 0, false
}

func (s *State) deviceIndex(name string) (int, bool) {
	for i, d := range s.devices {
		if d.Name == name {
			return i, true
		}
	}

	return 0, false
}
