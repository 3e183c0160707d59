package synth

import (
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// RenderWAV pulls d of audio from s and writes it to w as mono 16-bit PCM.
func RenderWAV(w io.WriteSeeker, s beep.Streamer, sr beep.SampleRate, d time.Duration) error {
	format := beep.Format{SampleRate: sr, NumChannels: 1, Precision: 2}
	if err := wav.Encode(w, beep.Take(sr.N(d), s), format); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
