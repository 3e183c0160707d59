package sequencer

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"go-drum/debug"
)

// Engine owns the pattern, sounds, mutes and transport of one drum machine.
// All of it is touched only by the goroutine running Run; every exported
// method is a command that is handed to that goroutine and waited for.
type Engine struct {
	pattern   *PatternStore
	sounds    *SoundBank
	mutes     *MuteRegistry
	transport *Transport
	synth     Synthesizer
	obs       Observers

	cmds    chan func()
	done    chan struct{}
	started atomic.Bool
}

type options struct {
	clock     clock.Clock
	tempo     int
	observers Observers
}

// Option configures an Engine.
type Option func(*options)

// WithClock replaces the wall clock that drives the ticker.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithTempo sets the starting tempo. Non-positive values keep DefaultTempo.
func WithTempo(bpm int) Option {
	return func(o *options) {
		if bpm > 0 {
			o.tempo = bpm
		}
	}
}

// WithObserver adds an observer. Observers are notified in the order added.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// silent stands in when no synthesizer is wired.
type silent struct{}

func (silent) Now() time.Duration                            { return 0 }
func (silent) Trigger(Track, SoundParameters, time.Duration) {}

// New creates an Engine with an empty pattern, default sounds and nothing
// muted. A nil synth plays nothing.
func New(synth Synthesizer, opts ...Option) *Engine {
	o := options{clock: clock.New(), tempo: DefaultTempo}
	for _, opt := range opts {
		opt(&o)
	}
	if synth == nil {
		synth = silent{}
	}

	e := &Engine{
		pattern: NewPatternStore(),
		sounds:  NewSoundBank(),
		mutes:   NewMuteRegistry(),
		synth:   synth,
		obs:     o.observers,
		cmds:    make(chan func()),
		done:    make(chan struct{}),
	}
	e.transport = NewTransport(o.clock, e.pattern, e.sounds, e.mutes, synth, e.obs)
	e.transport.bpm = o.tempo
	return e
}

var errRunning = errors.New("engine already running")

// Run processes commands and ticks until ctx is done. It stops playback on
// the way out; later commands fail with ErrClosed.
func (e *Engine) Run(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return errRunning
	}
	defer close(e.done)
	defer e.transport.Stop()

	debug.Log("engine", "run bpm=%d", e.transport.bpm)
	for {
		select {
		case <-ctx.Done():
			debug.Log("engine", "shutdown: %v", ctx.Err())
			return nil
		case fn := <-e.cmds:
			fn()
		case <-e.transport.C():
			e.transport.Tick()
		}
	}
}

// Done is closed once Run has returned.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// do runs fn on the engine goroutine and waits for it to finish.
func (e *Engine) do(fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}
	select {
	case e.cmds <- cmd:
	case <-e.done:
		return ErrClosed
	}
	<-finished
	return nil
}

// ToggleStep flips one cell and returns its new value. Turning a cell on
// auditions the track, muted or not.
func (e *Engine) ToggleStep(t Track, step int) (bool, error) {
	var (
		active bool
		err    error
	)
	if cerr := e.do(func() {
		active, err = e.pattern.Toggle(t, step)
		if err != nil {
			return
		}
		e.obs.OnCellChanged(t, step, active)
		if active {
			e.audition(t)
		}
	}); cerr != nil {
		return false, cerr
	}
	return active, err
}

// Start begins playback from the current step.
func (e *Engine) Start() error {
	return e.do(e.transport.Start)
}

// Pause halts playback, keeping the step.
func (e *Engine) Pause() error {
	return e.do(e.transport.Pause)
}

// Stop halts playback and rewinds to the first step.
func (e *Engine) Stop() error {
	return e.do(e.transport.Stop)
}

// TogglePlay starts a stopped engine and pauses a playing one.
func (e *Engine) TogglePlay() error {
	return e.do(func() {
		if e.transport.running {
			e.transport.Pause()
		} else {
			e.transport.Start()
		}
	})
}

func (e *Engine) SetTempo(bpm int) error {
	var err error
	if cerr := e.do(func() { err = e.transport.SetTempo(bpm) }); cerr != nil {
		return cerr
	}
	return err
}

// ToggleMute flips t's mute and returns the new state.
func (e *Engine) ToggleMute(t Track) (bool, error) {
	if err := checkTrack(t); err != nil {
		return false, err
	}
	var muted bool
	if err := e.do(func() {
		muted = e.mutes.Toggle(t)
		e.obs.OnMuteChanged(t, muted)
	}); err != nil {
		return false, err
	}
	return muted, nil
}

// ChangeSoundVariant applies the (t, id) preset. Unknown ids are ignored.
func (e *Engine) ChangeSoundVariant(t Track, id string) error {
	if err := checkTrack(t); err != nil {
		return err
	}
	return e.do(func() {
		if !e.sounds.ApplyVariant(t, id) {
			debug.Log("engine", "unknown variant %q for %s", id, t)
			return
		}
		e.obs.OnVariantChanged(t, id)
	})
}

// NextVariant cycles t to the variant after the current one.
func (e *Engine) NextVariant(t Track) (string, error) {
	if err := checkTrack(t); err != nil {
		return "", err
	}
	var id string
	if err := e.do(func() {
		id = NextVariant(t, e.sounds.Variant(t))
		if e.sounds.ApplyVariant(t, id) {
			e.obs.OnVariantChanged(t, id)
		}
	}); err != nil {
		return "", err
	}
	return id, nil
}

// ClearAll empties the pattern and stops playback.
func (e *Engine) ClearAll() error {
	return e.do(func() {
		e.pattern.ClearAll()
		e.obs.OnPatternCleared()
		e.transport.Stop()
	})
}

// Audition plays t once, now, with its current sound.
func (e *Engine) Audition(t Track) error {
	if err := checkTrack(t); err != nil {
		return err
	}
	return e.do(func() { e.audition(t) })
}

func (e *Engine) audition(t Track) {
	e.synth.Trigger(t, e.sounds.ParametersFor(t), e.synth.Now())
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() (State, error) {
	var s State
	if err := e.do(func() { s = snapshot(e.transport) }); err != nil {
		return State{}, err
	}
	return s, nil
}

// LoadState stops playback and replaces pattern, mutes, variants and tempo
// with s. Tracks missing from s are reset.
func (e *Engine) LoadState(s State) error {
	if err := s.Validate(); err != nil {
		return err
	}
	var err error
	if cerr := e.do(func() { err = e.load(s) }); cerr != nil {
		return cerr
	}
	return err
}

// load applies a validated state. It runs on the engine goroutine and keeps
// going past a bad track so the rest of s still lands.
func (e *Engine) load(s State) error {
	e.transport.Stop()
	e.pattern.ClearAll()
	*e.mutes = MuteRegistry{}
	*e.sounds = *NewSoundBank()
	e.obs.OnPatternCleared()

	var errs []error
	for _, ts := range s.Tracks {
		t, err := ParseTrack(ts.Name)
		if err == nil {
			err = e.pattern.SetRow(t, ts.Steps)
		}
		if err != nil {
			debug.Log("engine", "load: %v", err)
			errs = append(errs, err)
			continue
		}
		e.mutes.Set(t, ts.Muted)
		if ts.Variant != "" && !e.sounds.ApplyVariant(t, ts.Variant) {
			debug.Log("engine", "load: unknown variant %q for %s", ts.Variant, t)
		}
	}
	for _, t := range Tracks() {
		for step, on := range e.pattern.Row(t) {
			if on {
				e.obs.OnCellChanged(t, step, true)
			}
		}
		e.obs.OnMuteChanged(t, e.mutes.IsMuted(t))
		if id := e.sounds.Variant(t); id != "" {
			e.obs.OnVariantChanged(t, id)
		}
	}
	if s.Tempo != 0 {
		if err := e.transport.SetTempo(s.Tempo); err != nil {
			debug.Log("engine", "load: %v", err)
			errs = append(errs, err)
		}
	}
	debug.Log("engine", "loaded state tempo=%d tracks=%d", s.Tempo, len(s.Tracks))
	return errors.Join(errs...)
}
