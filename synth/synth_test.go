package synth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/wav"

	"go-drum/sequencer"
)

func TestSynthWithoutDeviceIsSilent(t *testing.T) {
	s := New()
	if s.Available() {
		t.Fatal("Available without a mixer")
	}
	s.Trigger(sequencer.Kick, sequencer.NewSoundBank().ParametersFor(sequencer.Kick), time.Second)
	if s.Now() != 0 {
		t.Errorf("Now = %v", s.Now())
	}
}

func TestSynthTriggerSchedulesVoice(t *testing.T) {
	m := NewMixer(testRate)
	s := New()
	s.Attach(m)
	bank := sequencer.NewSoundBank()

	s.Trigger(sequencer.Snare, bank.ParametersFor(sequencer.Snare), s.Now())
	s.Trigger(sequencer.Snare, sequencer.SoundParameters{Frequency: 200, Waveform: sequencer.Sine}, 0)
	if m.Voices() != 1 {
		t.Fatalf("voices = %d, want 1 (zero decay skipped)", m.Voices())
	}

	out := render(m, testRate.N(300*time.Millisecond))
	if rms(out[:testRate.N(200*time.Millisecond)]) == 0 {
		t.Error("snare rendered silence")
	}
	if rms(out[testRate.N(200*time.Millisecond):]) != 0 {
		t.Error("snare sounds past its decay")
	}
	if m.Voices() != 0 {
		t.Errorf("voices after decay = %d", m.Voices())
	}
	if s.Now() != m.Now() {
		t.Errorf("Now = %v, mixer %v", s.Now(), m.Now())
	}

	s.Attach(nil)
	s.Trigger(sequencer.Kick, bank.ParametersFor(sequencer.Kick), 0)
	if m.Voices() != 0 {
		t.Error("detached synth still schedules")
	}
}

func TestRenderWAV(t *testing.T) {
	m := NewMixer(testRate)
	m.Schedule(NewVoice(sequencer.Kick, sequencer.NewSoundBank().ParametersFor(sequencer.Kick), testRate), 0)

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := RenderWAV(f, m, testRate, time.Second); err != nil {
		t.Fatal(err)
	}
	f.Close()

	r, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	s, format, err := wav.Decode(r)
	if err != nil {
		t.Fatal(err)
	}
	if format.SampleRate != testRate || format.NumChannels != 1 || format.Precision != 2 {
		t.Errorf("format = %+v", format)
	}
	if s.Len() != testRate.N(time.Second) {
		t.Errorf("len = %d samples, want %d", s.Len(), testRate.N(time.Second))
	}
}
