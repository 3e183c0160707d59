package sequencer

// Observer receives core notifications. Methods are called on the engine
// goroutine in the order the state changed; they must return quickly and
// must not call back into the Engine synchronously.
type Observer interface {
	OnCellChanged(t Track, step int, active bool)
	OnStepAdvanced(step int)
	OnTrackFired(t Track)
	OnCurrentHighlightCleared()
	OnMuteChanged(t Track, muted bool)
	OnTempoChanged(bpm int)
	OnVariantChanged(t Track, id string)
	OnPatternCleared()
}

// NopObserver ignores everything. Embed it to implement part of Observer.
type NopObserver struct{}

func (NopObserver) OnCellChanged(Track, int, bool) {}
func (NopObserver) OnStepAdvanced(int)             {}
func (NopObserver) OnTrackFired(Track)             {}
func (NopObserver) OnCurrentHighlightCleared()     {}
func (NopObserver) OnMuteChanged(Track, bool)      {}
func (NopObserver) OnTempoChanged(int)             {}
func (NopObserver) OnVariantChanged(Track, string) {}
func (NopObserver) OnPatternCleared()              {}

// Observers fans every notification out in slice order.
type Observers []Observer

func (obs Observers) OnCellChanged(t Track, step int, active bool) {
	for _, o := range obs {
		o.OnCellChanged(t, step, active)
	}
}

func (obs Observers) OnStepAdvanced(step int) {
	for _, o := range obs {
		o.OnStepAdvanced(step)
	}
}

func (obs Observers) OnTrackFired(t Track) {
	for _, o := range obs {
		o.OnTrackFired(t)
	}
}

func (obs Observers) OnCurrentHighlightCleared() {
	for _, o := range obs {
		o.OnCurrentHighlightCleared()
	}
}

func (obs Observers) OnMuteChanged(t Track, muted bool) {
	for _, o := range obs {
		o.OnMuteChanged(t, muted)
	}
}

func (obs Observers) OnTempoChanged(bpm int) {
	for _, o := range obs {
		o.OnTempoChanged(bpm)
	}
}

func (obs Observers) OnVariantChanged(t Track, id string) {
	for _, o := range obs {
		o.OnVariantChanged(t, id)
	}
}

func (obs Observers) OnPatternCleared() {
	for _, o := range obs {
		o.OnPatternCleared()
	}
}

// EventKind tags an Event.
type EventKind int

const (
	CellChanged EventKind = iota
	StepAdvanced
	TrackFired
	HighlightCleared
	MuteChanged
	TempoChanged
	VariantChanged
	PatternCleared
)

// Event is a notification flattened into a value, for delivery over a channel.
type Event struct {
	Kind    EventKind
	Track   Track
	Step    int
	Active  bool // CellChanged
	Muted   bool // MuteChanged
	BPM     int
	Variant string
}

// EventChan turns notifications into Events for collaborators running on
// other goroutines. Sends never block: when the buffer is full the event is
// dropped, so consumers should treat events as "something changed" hints
// and re-read state with Engine.Snapshot.
type EventChan chan Event

func NewEventChan(size int) EventChan {
	return make(EventChan, size)
}

func (c EventChan) send(e Event) {
	select {
	case c <- e:
	default:
	}
}

func (c EventChan) OnCellChanged(t Track, step int, active bool) {
	c.send(Event{Kind: CellChanged, Track: t, Step: step, Active: active})
}

func (c EventChan) OnStepAdvanced(step int) {
	c.send(Event{Kind: StepAdvanced, Step: step})
}

func (c EventChan) OnTrackFired(t Track) {
	c.send(Event{Kind: TrackFired, Track: t})
}

func (c EventChan) OnCurrentHighlightCleared() {
	c.send(Event{Kind: HighlightCleared})
}

func (c EventChan) OnMuteChanged(t Track, muted bool) {
	c.send(Event{Kind: MuteChanged, Track: t, Muted: muted})
}

func (c EventChan) OnTempoChanged(bpm int) {
	c.send(Event{Kind: TempoChanged, BPM: bpm})
}

func (c EventChan) OnVariantChanged(t Track, id string) {
	c.send(Event{Kind: VariantChanged, Track: t, Variant: id})
}

func (c EventChan) OnPatternCleared() {
	c.send(Event{Kind: PatternCleared})
}
