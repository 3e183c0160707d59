package sequencer

import (
	"time"

	"github.com/benbjohnson/clock"

	"go-drum/debug"
)

// DefaultTempo is the tempo a new Transport starts at.
const DefaultTempo = 120

// Synthesizer turns one trigger into an audible voice. Trigger must not
// block; the voice plays to completion on its own.
type Synthesizer interface {
	// Now returns the output device clock.
	Now() time.Duration
	Trigger(t Track, p SoundParameters, at time.Duration)
}

// StepInterval returns the time between ticks at bpm: one 16th note,
// 60000/bpm/4 milliseconds.
func StepInterval(bpm int) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Minute / time.Duration(4*bpm)
}

// Transport is the timing loop. It owns at most one ticker at a time and is
// driven from a single goroutine (see Engine).
type Transport struct {
	clock   clock.Clock
	pattern *PatternStore
	sounds  *SoundBank
	mutes   *MuteRegistry
	synth   Synthesizer
	obs     Observer

	running bool
	step    int
	bpm     int
	ticker  *clock.Ticker
}

func NewTransport(clk clock.Clock, pattern *PatternStore, sounds *SoundBank, mutes *MuteRegistry, synth Synthesizer, obs Observer) *Transport {
	return &Transport{
		clock:   clk,
		pattern: pattern,
		sounds:  sounds,
		mutes:   mutes,
		synth:   synth,
		obs:     obs,
		bpm:     DefaultTempo,
	}
}

// C is the tick channel of the live ticker, or nil when stopped. A nil
// channel never fires, so a select on C() is idle while stopped.
func (t *Transport) C() <-chan time.Time {
	if t.ticker == nil {
		return nil
	}
	return t.ticker.C
}

// Start begins playback from the current step. Starting while playing
// keeps the existing ticker.
func (t *Transport) Start() {
	if t.running {
		return
	}
	t.install()
	t.running = true
	debug.Log("transport", "start step=%d bpm=%d interval=%s", t.step, t.bpm, t.Interval())
}

// Pause halts playback and keeps the current step.
func (t *Transport) Pause() {
	t.cancel()
	t.running = false
	t.obs.OnCurrentHighlightCleared()
	debug.Log("transport", "pause step=%d", t.step)
}

// Stop halts playback and rewinds to step 0.
func (t *Transport) Stop() {
	t.Pause()
	t.step = 0
}

// SetTempo changes the tempo. While playing, the ticker is replaced so the
// next tick arrives one new interval from now. A tick already pending on
// the old ticker is played first, so no step is skipped or repeated.
func (t *Transport) SetTempo(bpm int) error {
	if err := checkTempo(bpm); err != nil {
		return err
	}
	t.bpm = bpm
	if t.running {
		// A tick that already fired is still owed.
		select {
		case <-t.ticker.C:
			t.Tick()
		default:
		}
		t.install()
	}
	t.obs.OnTempoChanged(bpm)
	debug.Log("transport", "tempo bpm=%d interval=%s running=%v", bpm, t.Interval(), t.running)
	return nil
}

// Tick plays the current step and advances. It is called once per ticker
// firing and runs to completion before anything else touches the engine.
func (t *Transport) Tick() {
	if !t.running {
		return
	}
	now := t.synth.Now()
	for _, track := range Tracks() {
		if !t.pattern.IsActive(track, t.step) || t.mutes.IsMuted(track) {
			continue
		}
		t.synth.Trigger(track, t.sounds.ParametersFor(track), now)
		t.obs.OnTrackFired(track)
	}
	t.step = (t.step + 1) % StepsPerLoop
	t.obs.OnStepAdvanced(t.step)
	debug.LogEvery(StepsPerLoop, "transport", "tick step=%d", t.step)
}

// State reports whether playback is running, the next step to play and the tempo.
func (t *Transport) State() (running bool, step, bpm int) {
	return t.running, t.step, t.bpm
}

// Interval is the current time between ticks.
func (t *Transport) Interval() time.Duration {
	return StepInterval(t.bpm)
}

// install replaces any live ticker with a fresh one at the current interval.
func (t *Transport) install() {
	t.cancel()
	t.ticker = t.clock.Ticker(t.Interval())
}

func (t *Transport) cancel() {
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
}
