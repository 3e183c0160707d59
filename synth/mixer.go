package synth

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
)

type scheduled struct {
	s     beep.Streamer
	start int // absolute sample position
}

// Mixer sums scheduled voices into one stream. Its sample position is the
// output clock. It never drains: with nothing scheduled it streams silence.
type Mixer struct {
	sr beep.SampleRate

	mu     sync.Mutex
	pos    int
	voices []scheduled
	buf    [][2]float64
}

func NewMixer(sr beep.SampleRate) *Mixer {
	return &Mixer{sr: sr}
}

func (m *Mixer) SampleRate() beep.SampleRate { return m.sr }

// Now is the time of the next sample to be rendered.
func (m *Mixer) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sr.D(m.pos)
}

// Position is the number of samples rendered so far.
func (m *Mixer) Position() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// Voices is the number of voices scheduled or sounding.
func (m *Mixer) Voices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Schedule starts s at output time at. Times already rendered start now.
func (m *Mixer) Schedule(s beep.Streamer, at time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := sampleAt(m.sr, at)
	if start < m.pos {
		start = m.pos
	}
	m.voices = append(m.voices, scheduled{s: s, start: start})
}

// sampleAt rounds at to the nearest sample. beep's N truncates, which puts
// N(D(n)) one sample early for most n.
func sampleAt(sr beep.SampleRate, at time.Duration) int {
	return int(math.Round(at.Seconds() * float64(sr)))
}

func (m *Mixer) Stream(samples [][2]float64) (n int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range samples {
		samples[i] = [2]float64{}
	}
	if cap(m.buf) < len(samples) {
		m.buf = make([][2]float64, len(samples))
	}

	keep := m.voices[:0]
	for _, v := range m.voices {
		offset := v.start - m.pos
		if offset >= len(samples) {
			keep = append(keep, v)
			continue
		}
		if offset < 0 {
			offset = 0
		}
		want := len(samples) - offset
		buf := m.buf[:want]
		sn, sok := v.s.Stream(buf)
		for i := range buf[:sn] {
			samples[offset+i][0] += buf[i][0]
			samples[offset+i][1] += buf[i][1]
		}
		if sok && sn == want {
			keep = append(keep, v)
		}
	}
	for i := len(keep); i < len(m.voices); i++ {
		m.voices[i] = scheduled{}
	}
	m.voices = keep

	m.pos += len(samples)
	return len(samples), true
}

func (m *Mixer) Err() error { return nil }
