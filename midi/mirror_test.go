package midi

import (
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-drum/sequencer"
)

type recorder struct {
	mu   sync.Mutex
	msgs []gomidi.Message
	got  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{got: make(chan struct{}, 64)}
}

func (r *recorder) send(msg gomidi.Message) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	r.got <- struct{}{}
	return nil
}

func (r *recorder) wait(t *testing.T, n int) []gomidi.Message {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d messages", i, n)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gomidi.Message(nil), r.msgs...)
}

func TestMirrorNoteOnThenOff(t *testing.T) {
	rec := newRecorder()
	m := NewMirror(rec.send, GetKit("gm"), 9, 5*time.Millisecond)

	m.OnTrackFired(sequencer.Snare)
	msgs := rec.wait(t, 2)

	var ch, key, vel uint8
	if !msgs[0].GetNoteStart(&ch, &key, &vel) {
		t.Fatalf("first message = %s, want NoteOn", msgs[0])
	}
	if ch != 9 || key != 38 || vel != Velocity {
		t.Errorf("NoteOn ch=%d key=%d vel=%d", ch, key, vel)
	}
	if !msgs[1].GetNoteEnd(&ch, &key) || key != 38 {
		t.Errorf("second message = %s, want NoteOff 38", msgs[1])
	}
}

func TestMirrorRetriggerEndsPreviousNote(t *testing.T) {
	rec := newRecorder()
	m := NewMirror(rec.send, GetKit("gm"), 9, time.Hour)

	m.OnTrackFired(sequencer.Kick)
	m.OnTrackFired(sequencer.Kick)
	msgs := rec.wait(t, 3)

	if !msgs[1].GetNoteEnd(nil, nil) {
		t.Errorf("retrigger should send NoteOff before NoteOn, got %s", msgs[1])
	}
	if !msgs[2].GetNoteStart(nil, nil, nil) {
		t.Errorf("third message = %s, want NoteOn", msgs[2])
	}

	m.Close()
	msgs = rec.wait(t, 1)
	if len(msgs) != 4 || !msgs[3].GetNoteEnd(nil, nil) {
		t.Errorf("Close should release the held note, got %v", msgs)
	}

	m.OnTrackFired(sequencer.Kick)
	rec.mu.Lock()
	n := len(rec.msgs)
	rec.mu.Unlock()
	if n != 4 {
		t.Errorf("hits after Close should be ignored, have %d messages", n)
	}
}
