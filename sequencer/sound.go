package sequencer

import (
	"fmt"
	"time"
)

// Waveform is an oscillator shape.
type Waveform string

const (
	Sine     Waveform = "sine"
	Square   Waveform = "square"
	Sawtooth Waveform = "sawtooth"
	Triangle Waveform = "triangle"
)

func (w Waveform) Valid() bool {
	switch w {
	case Sine, Square, Sawtooth, Triangle:
		return true
	}
	return false
}

// SoundParameters describes one trigger of a track.
type SoundParameters struct {
	Frequency float64       // Hz, > 0
	Waveform  Waveform      // oscillator shape
	Decay     time.Duration // total envelope length, > 0
}

func (p SoundParameters) String() string {
	return fmt.Sprintf("%s %.0fHz %dms", p.Waveform, p.Frequency, p.Decay.Milliseconds())
}

// Variant is a named frequency/waveform preset. Decay is never overridden.
type Variant struct {
	ID        string
	Frequency float64
	Waveform  Waveform
}

var defaultSounds = [numTracks]SoundParameters{
	Kick:  {Frequency: 60, Waveform: Sine, Decay: 500 * time.Millisecond},
	Snare: {Frequency: 200, Waveform: Triangle, Decay: 200 * time.Millisecond},
	HiHat: {Frequency: 8000, Waveform: Square, Decay: 50 * time.Millisecond},
	Crash: {Frequency: 5000, Waveform: Sawtooth, Decay: time.Second},
}

// variantTable lists the presets of each track in display order.
var variantTable = map[Track][]Variant{
	Kick: {
		{ID: "kick1", Frequency: 60, Waveform: Sine},
		{ID: "kick2", Frequency: 40, Waveform: Triangle},
		{ID: "kick3", Frequency: 80, Waveform: Square},
	},
	Snare: {
		{ID: "snare1", Frequency: 200, Waveform: Triangle},
		{ID: "snare2", Frequency: 250, Waveform: Square},
		{ID: "snare3", Frequency: 180, Waveform: Sawtooth},
	},
	HiHat: {
		{ID: "hihat1", Frequency: 8000, Waveform: Square},
		{ID: "hihat2", Frequency: 10000, Waveform: Sawtooth},
		{ID: "hihat3", Frequency: 6000, Waveform: Triangle},
	},
	Crash: {
		{ID: "crash1", Frequency: 5000, Waveform: Sawtooth},
		{ID: "crash2", Frequency: 4000, Waveform: Square},
		{ID: "crash3", Frequency: 6000, Waveform: Triangle},
	},
}

// Variants returns the variant ids available for t, in table order.
func Variants(t Track) []string {
	ids := make([]string, 0, len(variantTable[t]))
	for _, v := range variantTable[t] {
		ids = append(ids, v.ID)
	}
	return ids
}

// LookupVariant finds the preset (t, id).
func LookupVariant(t Track, id string) (Variant, bool) {
	for _, v := range variantTable[t] {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// NextVariant returns the id following current in t's list, wrapping around.
// An unknown current yields the first id.
func NextVariant(t Track, current string) string {
	ids := Variants(t)
	if len(ids) == 0 {
		return ""
	}
	for i, id := range ids {
		if id == current {
			return ids[(i+1)%len(ids)]
		}
	}
	return ids[0]
}

// SoundBank holds the current parameters of every track.
type SoundBank struct {
	params  [numTracks]SoundParameters
	applied [numTracks]string
}

func NewSoundBank() *SoundBank {
	return &SoundBank{params: defaultSounds}
}

// ParametersFor returns t's current parameters.
func (b *SoundBank) ParametersFor(t Track) SoundParameters {
	if !t.Valid() {
		return SoundParameters{}
	}
	return b.params[t]
}

// ApplyVariant merges the (t, id) preset into t's parameters, keeping the
// decay. Unknown pairs are ignored and report false.
func (b *SoundBank) ApplyVariant(t Track, id string) bool {
	v, ok := LookupVariant(t, id)
	if !ok {
		return false
	}
	b.params[t].Frequency = v.Frequency
	b.params[t].Waveform = v.Waveform
	b.applied[t] = id
	return true
}

// Variant returns the last variant applied to t, or "" if none was.
func (b *SoundBank) Variant(t Track) string {
	if !t.Valid() {
		return ""
	}
	return b.applied[t]
}
