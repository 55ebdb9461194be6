// Package lab maintains a record of the current state of a laboratory: the
// hosts, benches, instruments, and devices present, and the connections
// between their ports. The state can be saved to and loaded from a JSON file
// whose integrity is protected by a SHA-256 hash.
package lab

// A Host is a machine that instruments are attached to.
type Host struct {
	Name       string `json:"name"`
	Hostname   string `json:"hostname,omitempty"`
	MACAddress string `json:"mac_address,omitempty"`
	OS         string `json:"os,omitempty"`

	// Local marks the host that runs the control software. A state holds
	// at most one local host.
	Local bool `json:"local,omitempty"`
}

// A Bench is a physical area of the lab that groups instruments and devices.
type Bench struct {
	Name string `json:"name"`
}

// An Instrument is a piece of equipment with a remote-control interface.
type Instrument struct {
	Name    string `json:"name"`
	Bench   string `json:"bench,omitempty"`
	Host    string `json:"host,omitempty"`
	Address string `json:"address,omitempty"`

	// Ports names the physical connectors that connections may refer to.
	Ports []string `json:"ports,omitempty"`
}

// A Device is a passive element under test. It has ports but no
// remote-control interface.
type Device struct {
	Name  string   `json:"name"`
	Bench string   `json:"bench,omitempty"`
	Ports []string `json:"ports,omitempty"`
}

// An Endpoint is one side of a connection: a port on a named instrument or
// device.
type Endpoint struct {
	Element string `json:"element"`
	Port    string `json:"port"`
}

// A Connection is a cable between two endpoints. Each port carries at most
// one connection.
type Connection struct {
	A Endpoint `json:"a"`
	B Endpoint `json:"b"`
}

func (c Connection) involves(e Endpoint) bool {
	return c.A == e || c.B == e
}

func (c Connection) equal(other Connection) bool {
	if c.A == other.A && c.B == other.B {
		return true
	}

	return c.A == other.B && c.B == other.A
}
