package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-drum/debug"
	"go-drum/sequencer"
)

// Auditioner plays a track once.
type Auditioner interface {
	Audition(t sequencer.Track) error
}

// Pads turns notes from a MIDI input into auditions, mapped through a kit.
type Pads struct {
	kit      Kit
	target   Auditioner
	stopFunc func()
}

func NewPads(kit Kit, target Auditioner) *Pads {
	return &Pads{kit: kit, target: target}
}

// Listen starts receiving from in. Messages arrive on the driver's goroutine.
func (p *Pads) Listen(in drivers.In) error {
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		p.Handle(msg)
	})
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	p.stopFunc = stop
	debug.Log("midi", "pads on %s kit=%s", in.String(), p.kit.Name)
	return nil
}

// Handle auditions the track for a NoteOn, on any channel. It reports
// whether msg mapped to a track.
func (p *Pads) Handle(msg gomidi.Message) bool {
	var channel, note, velocity uint8
	if !msg.GetNoteStart(&channel, &note, &velocity) {
		return false
	}
	t, ok := p.kit.TrackFor(note)
	if !ok {
		debug.Log("midi", "pad note %d not in kit %s", note, p.kit.Name)
		return false
	}
	if err := p.target.Audition(t); err != nil {
		debug.Log("midi", "audition %s: %v", t, err)
	}
	return true
}

func (p *Pads) Close() {
	if p.stopFunc != nil {
		p.stopFunc()
		p.stopFunc = nil
	}
}
