package midi

import "go-drum/sequencer"

// Kit maps each drum track to the note a particular machine expects.
type Kit struct {
	Name  string
	Notes map[sequencer.Track]uint8
}

// Kits contains all available drum kit mappings
var Kits = map[string]Kit{
	"gm": {
		Name: "General MIDI",
		Notes: map[sequencer.Track]uint8{
			sequencer.Kick:  36,
			sequencer.Snare: 38,
			sequencer.HiHat: 42, // closed hat
			sequencer.Crash: 49,
		},
	},
	"rd8": {
		Name: "Behringer RD-8",
		Notes: map[sequencer.Track]uint8{
			sequencer.Kick:  36, // BD
			sequencer.Snare: 40, // SD - RD-8 uses 40, not 38!
			sequencer.HiHat: 42, // CH
			sequencer.Crash: 49, // CY
		},
	},
	"tr8s": {
		Name: "Roland TR-8S",
		Notes: map[sequencer.Track]uint8{
			sequencer.Kick:  36,
			sequencer.Snare: 38,
			sequencer.HiHat: 42,
			sequencer.Crash: 49,
		},
	},
	"er1": {
		Name: "Korg ER-1",
		Notes: map[sequencer.Track]uint8{
			sequencer.Kick:  36, // Perc Synth 1
			sequencer.Snare: 38, // Perc Synth 2
			sequencer.HiHat: 42, // Closed HH (PCM)
			sequencer.Crash: 49, // Crash (PCM)
		},
	},
}

// DefaultKit is the default kit name
const DefaultKit = "gm"

// KitNames returns the list of available kit names
func KitNames() []string {
	return []string{"gm", "rd8", "tr8s", "er1"}
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) Kit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}

// Note returns the note for t, and false if the kit has none.
func (k Kit) Note(t sequencer.Track) (uint8, bool) {
	n, ok := k.Notes[t]
	return n, ok
}

// TrackFor maps an incoming note back to a track.
func (k Kit) TrackFor(note uint8) (sequencer.Track, bool) {
	for _, t := range sequencer.Tracks() {
		if n, ok := k.Notes[t]; ok && n == note {
			return t, true
		}
	}
	return 0, false
}
