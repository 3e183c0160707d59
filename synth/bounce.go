package synth

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gopxl/beep"

	"go-drum/debug"
	"go-drum/sequencer"
)

// BounceTail is rendered after the last step so the final hits can decay.
const BounceTail = time.Second

var errStalled = errors.New("bounce: engine stopped ticking")

// stepper hands each step advance to the bounce loop.
type stepper struct {
	sequencer.NopObserver
	steps chan int
}

func (s stepper) OnStepAdvanced(step int) { s.steps <- step }

// Bounce plays s for the given number of steps on a mock clock and returns
// the mono audio, followed by BounceTail of decay. It runs the same engine
// and transport the live program does, so the timing matches.
func Bounce(s sequencer.State, steps int, sr beep.SampleRate) (*beep.Buffer, error) {
	mixer := NewMixer(sr)
	voice := New()
	voice.Attach(mixer)

	mock := clock.NewMock()
	tick := stepper{steps: make(chan int, 1)}
	engine := sequencer.New(voice, sequencer.WithClock(mock), sequencer.WithObserver(tick))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	if err := engine.LoadState(s); err != nil {
		return nil, err
	}
	snap, err := engine.Snapshot()
	if err != nil {
		return nil, err
	}
	interval := sequencer.StepInterval(snap.Tempo)
	if err := engine.Start(); err != nil {
		return nil, err
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: sr, NumChannels: 1, Precision: 2})
	for i := 0; i < steps; i++ {
		mock.Add(interval)
		select {
		case <-tick.steps:
		case <-time.After(time.Second):
			return nil, errStalled
		}
		buf.Append(beep.Take(sr.N(interval), mixer))
	}
	if err := engine.Stop(); err != nil {
		return nil, err
	}
	buf.Append(beep.Take(sr.N(BounceTail), mixer))

	debug.Log("synth", "bounced %d steps at %dbpm: %d samples", steps, snap.Tempo, buf.Len())
	return buf, nil
}
