// Package synth renders drum voices into a beep stream.
package synth

import (
	"sync"
	"time"

	"go-drum/debug"
	"go-drum/sequencer"
)

// Synth schedules voices on an attached Mixer. Without one (no audio
// device) Trigger does nothing and Now is 0.
type Synth struct {
	mu    sync.RWMutex
	mixer *Mixer
}

func New() *Synth {
	return &Synth{}
}

// Attach starts scheduling onto m. The caller must make sure m is being
// pulled, by the speaker or by a render loop. A nil m detaches.
func (s *Synth) Attach(m *Mixer) {
	s.mu.Lock()
	s.mixer = m
	s.mu.Unlock()
}

func (s *Synth) current() *Mixer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mixer
}

// Available reports whether triggers are audible.
func (s *Synth) Available() bool {
	return s.current() != nil
}

func (s *Synth) Now() time.Duration {
	m := s.current()
	if m == nil {
		return 0
	}
	return m.Now()
}

// Trigger schedules one voice of t at output time at.
func (s *Synth) Trigger(t sequencer.Track, p sequencer.SoundParameters, at time.Duration) {
	m := s.current()
	if m == nil {
		return
	}
	if p.Frequency <= 0 || p.Decay <= 0 {
		debug.Log("synth", "skip %s: bad parameters %s", t, p)
		return
	}
	m.Schedule(NewVoice(t, p, m.SampleRate()), at)
	debug.LogEvery(32, "synth", "trigger %s %s at=%s voices=%d", t, p, at, m.Voices())
}
