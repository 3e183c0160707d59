package sequencer

import "testing"

func TestMuteToggle(t *testing.T) {
	m := NewMuteRegistry()
	if m.IsMuted(Snare) {
		t.Fatal("snare muted by default")
	}
	if !m.Toggle(Snare) || !m.IsMuted(Snare) {
		t.Error("first toggle should mute")
	}
	if m.IsMuted(Kick) {
		t.Error("muting snare muted kick")
	}
	if m.Toggle(Snare) || m.IsMuted(Snare) {
		t.Error("second toggle should unmute")
	}
	if m.Toggle(Track(5)) || m.IsMuted(Track(5)) {
		t.Error("unknown track must stay unmuted")
	}
}
