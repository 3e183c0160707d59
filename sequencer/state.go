package sequencer

import "fmt"

// State is a copy of everything the engine owns, for rendering and for
// project files.
type State struct {
	Tempo   int          `json:"tempo"`
	Step    int          `json:"step"`
	Playing bool         `json:"playing"`
	Tracks  []TrackState `json:"tracks"`
}

// TrackState holds all state for a single track
type TrackState struct {
	Name    string             `json:"name"`
	Muted   bool               `json:"muted"`
	Variant string             `json:"variant,omitempty"`
	Sound   SoundParameters    `json:"-"` // derived from Variant
	Steps   [StepsPerLoop]bool `json:"steps"`
}

// Track returns the state of t, or nil if s has none.
func (s *State) Track(t Track) *TrackState {
	for i := range s.Tracks {
		if s.Tracks[i].Name == t.String() {
			return &s.Tracks[i]
		}
	}
	return nil
}

// Validate checks a state before it is loaded.
func (s *State) Validate() error {
	if s.Tempo != 0 {
		if err := checkTempo(s.Tempo); err != nil {
			return err
		}
	}
	seen := make(map[Track]bool)
	for _, ts := range s.Tracks {
		t, err := ParseTrack(ts.Name)
		if err != nil {
			return err
		}
		if seen[t] {
			return fmt.Errorf("%w: duplicate track %s", ErrInvalidArgument, t)
		}
		seen[t] = true
	}
	return nil
}

func snapshot(tr *Transport) State {
	running, step, bpm := tr.State()
	s := State{Tempo: bpm, Step: step, Playing: running}
	for _, t := range Tracks() {
		s.Tracks = append(s.Tracks, TrackState{
			Name:    t.String(),
			Muted:   tr.mutes.IsMuted(t),
			Variant: tr.sounds.Variant(t),
			Sound:   tr.sounds.ParametersFor(t),
			Steps:   tr.pattern.Row(t),
		})
	}
	return s
}
