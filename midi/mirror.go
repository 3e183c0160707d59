package midi

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-drum/debug"
	"go-drum/sequencer"
)

// Velocity is sent with every mirrored note.
const Velocity = 100

// Mirror forwards fired tracks to an external drum machine as notes. Each
// NoteOn is followed by a NoteOff one gate later.
type Mirror struct {
	sequencer.NopObserver

	send    func(msg gomidi.Message) error
	kit     Kit
	channel uint8 // 0-based
	gate    time.Duration

	mu      sync.Mutex
	pending map[uint8]*time.Timer
	closed  bool
}

// NewMirror sends through send. channel is 0-based (MIDI channel 10 is 9).
func NewMirror(send func(msg gomidi.Message) error, kit Kit, channel uint8, gate time.Duration) *Mirror {
	return &Mirror{
		send:    send,
		kit:     kit,
		channel: channel & 0x0F,
		gate:    gate,
		pending: make(map[uint8]*time.Timer),
	}
}

// OpenMirror opens out and mirrors onto it.
func OpenMirror(out drivers.Out, kit Kit, channel uint8, gate time.Duration) (*Mirror, error) {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	debug.Log("midi", "mirror on %s kit=%s ch=%d", out.String(), kit.Name, channel+1)
	return NewMirror(send, kit, channel, gate), nil
}

func (m *Mirror) OnTrackFired(t sequencer.Track) {
	note, ok := m.kit.Note(t)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	// Retrigger: end the previous hit first.
	if tm, ok := m.pending[note]; ok {
		tm.Stop()
		m.write(gomidi.NoteOff(m.channel, note))
	}
	m.write(gomidi.NoteOn(m.channel, note, Velocity))

	var tm *time.Timer
	tm = time.AfterFunc(m.gate, func() { m.release(note, tm) })
	m.pending[note] = tm
}

func (m *Mirror) release(note uint8, tm *time.Timer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending[note] != tm {
		return
	}
	delete(m.pending, note)
	m.write(gomidi.NoteOff(m.channel, note))
}

// Close ends every sounding note. Later hits are ignored.
func (m *Mirror) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for note, tm := range m.pending {
		tm.Stop()
		m.write(gomidi.NoteOff(m.channel, note))
		delete(m.pending, note)
	}
}

func (m *Mirror) write(msg gomidi.Message) {
	if err := m.send(msg); err != nil {
		debug.Log("midi", "send %s: %v", msg, err)
	}
}
