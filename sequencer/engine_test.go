package sequencer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

type trigger struct {
	track  Track
	params SoundParameters
	at     time.Duration
}

type fakeSynth struct {
	mu       sync.Mutex
	now      time.Duration
	triggers []trigger
}

func (s *fakeSynth) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *fakeSynth) Trigger(t Track, p SoundParameters, at time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers = append(s.triggers, trigger{t, p, at})
}

func (s *fakeSynth) take() []trigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	got := s.triggers
	s.triggers = nil
	return got
}

// stamped records the mock time each step advance was observed at.
type stamped struct {
	NopObserver
	clock *clock.Mock
	mu    sync.Mutex
	at    []time.Time
}

func (s *stamped) OnStepAdvanced(int) {
	s.mu.Lock()
	s.at = append(s.at, s.clock.Now())
	s.mu.Unlock()
}

type harness struct {
	t      *testing.T
	e      *Engine
	clock  *clock.Mock
	events EventChan
	synth  *fakeSynth
	stamps *stamped
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		clock:  clock.NewMock(),
		events: NewEventChan(1024),
		synth:  &fakeSynth{},
	}
	h.stamps = &stamped{clock: h.clock}
	opts = append([]Option{WithClock(h.clock), WithObserver(h.stamps), WithObserver(h.events)}, opts...)
	h.e = New(h.synth, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.e.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

// tick advances the clock one interval and returns the events up to and
// including the resulting StepAdvanced.
func (h *harness) tick() []Event {
	h.t.Helper()
	s, err := h.e.Snapshot()
	if err != nil {
		h.t.Fatal(err)
	}
	h.clock.Add(StepInterval(s.Tempo))
	return h.until(StepAdvanced)
}

func (h *harness) until(kind EventKind) []Event {
	h.t.Helper()
	var got []Event
	for {
		select {
		case ev := <-h.events:
			got = append(got, ev)
			if ev.Kind == kind {
				return got
			}
		case <-time.After(2 * time.Second):
			h.t.Fatalf("timed out waiting for event %d, have %+v", kind, got)
		}
	}
}

// quiet asserts that nothing more arrives for a short while.
func (h *harness) quiet() {
	h.t.Helper()
	select {
	case ev := <-h.events:
		h.t.Fatalf("unexpected event %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func (h *harness) drain() {
	for {
		select {
		case <-h.events:
		default:
			return
		}
	}
}

func fired(events []Event) []Track {
	var out []Track
	for _, ev := range events {
		if ev.Kind == TrackFired {
			out = append(out, ev.Track)
		}
	}
	return out
}

func TestFirstTickFiresKick(t *testing.T) {
	h := newHarness(t)
	if got := StepInterval(DefaultTempo); got != 125*time.Millisecond {
		t.Fatalf("interval at 120 = %v, want 125ms", got)
	}

	if on, err := h.e.ToggleStep(Kick, 0); err != nil || !on {
		t.Fatalf("ToggleStep = %v, %v", on, err)
	}
	h.drain()
	h.synth.take()

	if err := h.e.Start(); err != nil {
		t.Fatal(err)
	}
	events := h.tick()

	if got := fired(events); len(got) != 1 || got[0] != Kick {
		t.Errorf("fired = %v, want [kick]", got)
	}
	last := events[len(events)-1]
	if last.Step != 1 {
		t.Errorf("OnStepAdvanced(%d), want 1", last.Step)
	}
	trig := h.synth.take()
	if len(trig) != 1 || trig[0].track != Kick || trig[0].params != NewSoundBank().ParametersFor(Kick) {
		t.Errorf("triggers = %+v", trig)
	}
}

func TestStepSequenceWraps(t *testing.T) {
	h := newHarness(t)
	h.e.Start()
	for i := 1; i <= 2*StepsPerLoop+3; i++ {
		events := h.tick()
		want := i % StepsPerLoop
		if got := events[len(events)-1].Step; got != want {
			t.Fatalf("tick %d: step %d, want %d", i, got, want)
		}
	}
}

func TestTickInterval(t *testing.T) {
	for _, bpm := range []int{60, 97, 120, 240, 1000} {
		h := newHarness(t, WithTempo(bpm))
		h.e.Start()
		for i := 0; i < 5; i++ {
			h.tick()
		}
		h.stamps.mu.Lock()
		at := h.stamps.at
		h.stamps.mu.Unlock()
		want := time.Minute / time.Duration(4*bpm)
		for i := 1; i < len(at); i++ {
			if d := at[i].Sub(at[i-1]); d != want {
				t.Errorf("bpm %d: gap %d = %v, want %v", bpm, i, d, want)
			}
		}
	}
}

func TestPauseResumesInPlaceStopRewinds(t *testing.T) {
	h := newHarness(t)
	h.e.Start()
	for i := 0; i < 5; i++ {
		h.tick()
	}

	h.e.Pause()
	h.until(HighlightCleared)
	s, _ := h.e.Snapshot()
	if s.Playing || s.Step != 5 {
		t.Fatalf("after pause: playing=%v step=%d", s.Playing, s.Step)
	}
	h.clock.Add(time.Second)
	h.quiet()

	h.e.Start()
	if ev := h.tick(); ev[len(ev)-1].Step != 6 {
		t.Errorf("resume advanced to %d, want 6", ev[len(ev)-1].Step)
	}

	h.e.Stop()
	h.until(HighlightCleared)
	h.e.Start()
	if ev := h.tick(); ev[len(ev)-1].Step != 1 {
		t.Errorf("after stop, first advance = %d, want 1", ev[len(ev)-1].Step)
	}
}

func TestStartWhilePlayingKeepsTicker(t *testing.T) {
	h := newHarness(t)
	h.e.Start()
	h.clock.Add(100 * time.Millisecond)
	h.e.Start()
	// The original ticker is due 25ms later; a restarted one would wait 125ms.
	h.clock.Add(25 * time.Millisecond)
	h.until(StepAdvanced)
}

func TestMutedTrackNeverFires(t *testing.T) {
	h := newHarness(t)
	if muted, err := h.e.ToggleMute(Snare); err != nil || !muted {
		t.Fatalf("ToggleMute = %v, %v", muted, err)
	}
	h.e.ToggleStep(Snare, 0)
	h.drain()
	if trig := h.synth.take(); len(trig) != 1 || trig[0].track != Snare {
		t.Errorf("toggling a muted track on should still audition it, got %+v", trig)
	}

	h.e.Start()
	for i := 0; i < StepsPerLoop; i++ {
		if got := fired(h.tick()); len(got) != 0 {
			t.Fatalf("tick %d fired %v while snare muted", i, got)
		}
	}
	if trig := h.synth.take(); len(trig) != 0 {
		t.Errorf("muted snare triggered %d voices", len(trig))
	}

	h.e.ToggleMute(Snare)
	events := h.tick()
	if got := fired(events); len(got) != 1 || got[0] != Snare {
		t.Errorf("after unmute, step 0 fired %v", got)
	}
}

func TestTempoChangeWhilePlaying(t *testing.T) {
	h := newHarness(t)
	h.e.Start()
	h.tick() // step 1

	h.clock.Add(60 * time.Millisecond)
	if err := h.e.SetTempo(240); err != nil {
		t.Fatal(err)
	}
	if ev := h.until(TempoChanged); ev[len(ev)-1].BPM != 240 {
		t.Errorf("TempoChanged = %+v", ev[len(ev)-1])
	}

	// The old ticker would have fired 65ms from here; the new one waits 62.5ms.
	h.clock.Add(62 * time.Millisecond)
	h.quiet()
	h.clock.Add(500 * time.Microsecond)
	ev := h.until(StepAdvanced)
	if got := ev[len(ev)-1].Step; got != 2 {
		t.Errorf("first tick after tempo change advanced to %d, want 2", got)
	}

	h.stamps.mu.Lock()
	at := h.stamps.at
	h.stamps.mu.Unlock()
	if d := at[1].Sub(at[0]); d < StepInterval(240) {
		t.Errorf("ticks %v apart, closer than the new interval", d)
	}
}

func TestClearAllStopsAndEmpties(t *testing.T) {
	h := newHarness(t)
	h.e.ToggleStep(Kick, 3)
	h.e.ToggleStep(Crash, 9)
	h.e.Start()
	h.tick()
	h.tick()

	if err := h.e.ClearAll(); err != nil {
		t.Fatal(err)
	}
	s, _ := h.e.Snapshot()
	if s.Playing || s.Step != 0 {
		t.Errorf("after ClearAll: playing=%v step=%d", s.Playing, s.Step)
	}
	for _, ts := range s.Tracks {
		if ts.Steps != [StepsPerLoop]bool{} {
			t.Errorf("%s still has steps %v", ts.Name, ts.Steps)
		}
	}
}

func TestInvalidArguments(t *testing.T) {
	h := newHarness(t)
	if _, err := h.e.ToggleStep(Kick, StepsPerLoop); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ToggleStep(kick, 16) = %v", err)
	}
	if err := h.e.SetTempo(0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetTempo(0) = %v", err)
	}
	if err := h.e.SetTempo(-30); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetTempo(-30) = %v", err)
	}
	if _, err := h.e.ToggleMute(Track(8)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ToggleMute(8) = %v", err)
	}
	if err := h.e.ChangeSoundVariant(Track(8), "kick1"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ChangeSoundVariant(8) = %v", err)
	}
	s, _ := h.e.Snapshot()
	if s.Tempo != DefaultTempo {
		t.Errorf("tempo = %d after rejected changes", s.Tempo)
	}
	h.quiet()
}

func TestChangeSoundVariant(t *testing.T) {
	h := newHarness(t)
	if err := h.e.ChangeSoundVariant(Kick, "kick2"); err != nil {
		t.Fatal(err)
	}
	ev := h.until(VariantChanged)
	if last := ev[len(ev)-1]; last.Track != Kick || last.Variant != "kick2" {
		t.Errorf("VariantChanged = %+v", last)
	}

	// Unknown ids are ignored without error or notification.
	if err := h.e.ChangeSoundVariant(Kick, "snare1"); err != nil {
		t.Errorf("unknown variant returned %v", err)
	}
	h.quiet()

	h.e.Audition(Kick)
	trig := h.synth.take()
	if len(trig) != 1 {
		t.Fatalf("audition triggered %d voices", len(trig))
	}
	if p := trig[0].params; p.Frequency != 40 || p.Waveform != Triangle || p.Decay != 500*time.Millisecond {
		t.Errorf("kick2 params = %v", p)
	}

	if id, err := h.e.NextVariant(Kick); err != nil || id != "kick3" {
		t.Errorf("NextVariant = %q, %v", id, err)
	}
}

func TestToggleStepNotifiesAndAuditions(t *testing.T) {
	h := newHarness(t)
	h.synth.now = 3 * time.Second

	h.e.ToggleStep(HiHat, 7)
	ev := h.until(CellChanged)
	if last := ev[len(ev)-1]; last.Track != HiHat || last.Step != 7 || !last.Active {
		t.Errorf("CellChanged = %+v", last)
	}
	if trig := h.synth.take(); len(trig) != 1 || trig[0].at != 3*time.Second {
		t.Errorf("audition = %+v", trig)
	}

	h.e.ToggleStep(HiHat, 7)
	ev = h.until(CellChanged)
	if ev[len(ev)-1].Active {
		t.Error("second toggle should report inactive")
	}
	if trig := h.synth.take(); len(trig) != 0 {
		t.Errorf("turning a cell off auditioned %d voices", len(trig))
	}
}

func TestSnapshotLoadState(t *testing.T) {
	h := newHarness(t)
	h.e.ToggleStep(Kick, 0)
	h.e.ToggleStep(Snare, 4)
	h.e.ToggleMute(HiHat)
	h.e.ChangeSoundVariant(Crash, "crash2")
	h.e.SetTempo(90)

	saved, err := h.e.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if c := saved.Track(Crash); c == nil || c.Variant != "crash2" || c.Sound.Waveform != Square {
		t.Errorf("crash state = %+v", c)
	}

	other := newHarness(t)
	other.e.ToggleStep(Crash, 15)
	if err := other.e.LoadState(saved); err != nil {
		t.Fatal(err)
	}
	got, _ := other.e.Snapshot()
	if got.Tempo != 90 {
		t.Errorf("tempo = %d", got.Tempo)
	}
	for _, tr := range Tracks() {
		want, have := saved.Track(tr), got.Track(tr)
		if *want != *have {
			t.Errorf("%s: loaded %+v, want %+v", tr, have, want)
		}
	}

	bad := State{Tracks: []TrackState{{Name: "cowbell"}}}
	if err := other.e.LoadState(bad); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("LoadState(cowbell) = %v", err)
	}
}

func TestLoadReportsUnappliedParts(t *testing.T) {
	// load is normally reached only through Validate; call it directly so
	// states Validate would reject still surface their errors.
	e := New(nil, WithClock(clock.NewMock()))
	s := State{
		Tempo: -5,
		Tracks: []TrackState{
			{Name: "cowbell"},
			{Name: "snare", Muted: true, Steps: [StepsPerLoop]bool{2: true}},
		},
	}
	err := e.load(s)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("load = %v, want ErrInvalidArgument", err)
	}
	for _, want := range []string{"cowbell", "tempo"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}

	// The valid track still lands and the tempo is unchanged.
	got := snapshot(e.transport)
	if snare := got.Track(Snare); !snare.Muted || !snare.Steps[2] {
		t.Errorf("snare = %+v", snare)
	}
	if got.Tempo != DefaultTempo {
		t.Errorf("tempo = %d, want %d", got.Tempo, DefaultTempo)
	}
}

func TestCommandsAfterRunReturn(t *testing.T) {
	e := New(nil, WithClock(clock.NewMock()))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run = %v", err)
	}

	if err := e.Start(); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after close = %v", err)
	}
	if _, err := e.Snapshot(); !errors.Is(err, ErrClosed) {
		t.Errorf("Snapshot after close = %v", err)
	}
	if err := e.Run(context.Background()); err == nil {
		t.Error("second Run should fail")
	}
}
