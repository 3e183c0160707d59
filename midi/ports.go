package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// PortTimeout bounds port enumeration. CoreMIDI can hang.
const PortTimeout = 3 * time.Second

// ErrPortsHung is returned when the driver does not answer within PortTimeout.
// Fix on macOS: sudo killall coreaudiod midiserver
var ErrPortsHung = errors.New("midi: port enumeration timed out")

// Ports is one snapshot of the system's MIDI ports.
type Ports struct {
	Ins  []drivers.In
	Outs []drivers.Out
}

// ListPorts enumerates ports, giving up after timeout. A driver must be
// registered by the binary (drivers/rtmididrv).
func ListPorts(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{Ins: gomidi.GetInPorts(), Outs: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return Ports{}, ErrPortsHung
	}
}

// matchPort reports whether a port name matches a configured name: exact
// first, then case-insensitive substring.
func matchPort(portName, want string) bool {
	if portName == want {
		return true
	}
	return strings.Contains(strings.ToLower(portName), strings.ToLower(want))
}

// FindIn returns the first input port whose name matches.
func (p Ports) FindIn(name string) (drivers.In, error) {
	for _, in := range p.Ins {
		if matchPort(in.String(), name) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("midi: no input port matching %q", name)
}

// FindOut returns the first output port whose name matches.
func (p Ports) FindOut(name string) (drivers.Out, error) {
	for _, out := range p.Outs {
		if matchPort(out.String(), name) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("midi: no output port matching %q", name)
}
