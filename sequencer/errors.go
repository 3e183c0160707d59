package sequencer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for out-of-range steps, unknown tracks
	// and non-positive tempos. State is left unchanged.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClosed is returned by commands issued after the engine loop exited.
	ErrClosed = errors.New("engine closed")
)

func checkTrack(t Track) error {
	if !t.Valid() {
		return fmt.Errorf("%w: unknown track %d", ErrInvalidArgument, int(t))
	}
	return nil
}

func checkStep(step int) error {
	if step < 0 || step >= StepsPerLoop {
		return fmt.Errorf("%w: step %d out of range [0,%d)", ErrInvalidArgument, step, StepsPerLoop)
	}
	return nil
}

func checkTempo(bpm int) error {
	if bpm <= 0 {
		return fmt.Errorf("%w: tempo must be > 0, got %d", ErrInvalidArgument, bpm)
	}
	return nil
}
