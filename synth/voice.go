package synth

import (
	"math"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/gopxl/beep"

	"go-drum/sequencer"
)

const (
	// Attack is the linear ramp from silence to Peak.
	Attack = 10 * time.Millisecond
	Peak   = 0.3
	// Floor is the gain reached at the end of the decay.
	Floor = 0.001

	kickCutoff  = 100.0  // Hz, lowpass
	hihatCutoff = 5000.0 // Hz, highpass
)

// butterworthQ gives a maximally flat 2nd order section.
var butterworthQ = 1 / math.Sqrt2

// Voice is one trigger of a track: oscillator, track filter, envelope. It
// drains itself after the decay.
type Voice struct {
	wave      sequencer.Waveform
	phase     float64
	phaseStep float64
	filter    *biquad.Section

	age    int
	attack int
	length int
}

func NewVoice(t sequencer.Track, p sequencer.SoundParameters, sr beep.SampleRate) *Voice {
	rate := float64(sr)
	return &Voice{
		wave:      p.Waveform,
		phaseStep: 2 * math.Pi * p.Frequency / rate,
		filter:    trackFilter(t, rate),
		attack:    sr.N(Attack),
		length:    sr.N(p.Decay),
	}
}

// trackFilter returns the filter a track is voiced with, or nil.
func trackFilter(t sequencer.Track, rate float64) *biquad.Section {
	switch t {
	case sequencer.Kick:
		return biquad.NewSection(design.Lowpass(kickCutoff, butterworthQ, rate))
	case sequencer.HiHat:
		return biquad.NewSection(design.Highpass(hihatCutoff, butterworthQ, rate))
	}
	return nil
}

// Len is the voice length in samples.
func (v *Voice) Len() int { return v.length }

func (v *Voice) Stream(samples [][2]float64) (n int, ok bool) {
	if v.age >= v.length {
		return 0, false
	}
	for i := range samples {
		if v.age >= v.length {
			break
		}
		x := oscillator(v.wave, v.phase)
		if v.filter != nil {
			x = v.filter.ProcessSample(x)
		}
		x *= envelope(v.age, v.attack, v.length)
		samples[i][0] = x
		samples[i][1] = x

		v.phase += v.phaseStep
		if v.phase > math.Pi {
			v.phase -= 2 * math.Pi
		}
		v.age++
		n++
	}
	return n, true
}

func (v *Voice) Err() error { return nil }

// oscillator evaluates one waveform at phase in (-π, π].
func oscillator(w sequencer.Waveform, phase float64) float64 {
	switch w {
	case sequencer.Triangle:
		return (2 / math.Pi) * math.Asin(math.Sin(phase))
	case sequencer.Sawtooth:
		return phase / math.Pi
	case sequencer.Square:
		if math.Sin(phase) >= 0 {
			return 1
		}
		return -1
	default:
		return math.Sin(phase)
	}
}

// envelope is the gain at sample age: linear 0 to Peak over attack, then
// exponential down to Floor at length. A decay no longer than the attack
// stays on the linear ramp.
func envelope(age, attack, length int) float64 {
	if age < attack || length <= attack {
		if attack <= 0 {
			return Peak
		}
		return core.Clamp(Peak*float64(age)/float64(attack), 0, Peak)
	}
	t := float64(age-attack) / float64(length-attack)
	return Peak * math.Pow(Floor/Peak, t)
}
