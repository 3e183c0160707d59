// Command drumrender bounces a saved project, or a demo beat, to a WAV file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gopxl/beep"

	"go-drum/debug"
	"go-drum/sequencer"
	"go-drum/synth"
)

func main() {
	project := flag.String("project", "", "project to render (default: demo beat)")
	save := flag.String("save", "", "save file within the project (default: latest)")
	out := flag.String("o", "out.wav", "output file")
	bars := flag.Int("bars", 2, "number of 16-step loops")
	tempo := flag.Int("tempo", 0, "override tempo in BPM")
	rate := flag.Int("rate", 44100, "sample rate")
	verbose := flag.Bool("v", false, "log to stderr")
	flag.Parse()

	if *verbose {
		debug.EnableWriter(os.Stderr)
	}
	if err := run(*project, *save, *out, *bars, *tempo, *rate); err != nil {
		fmt.Fprintf(os.Stderr, "drumrender: %v\n", err)
		os.Exit(1)
	}
}

func run(project, save, out string, bars, tempo, rate int) error {
	if bars < 1 {
		return fmt.Errorf("bars must be at least 1")
	}

	s := demo()
	if project != "" {
		dir, err := sequencer.DefaultProjectsDir()
		if err != nil {
			return err
		}
		if s, err = sequencer.NewProjectStore(dir).Load(project, save); err != nil {
			return err
		}
	}
	if tempo > 0 {
		s.Tempo = tempo
	}

	sr := beep.SampleRate(rate)
	buf, err := synth.Bounce(s, bars*sequencer.StepsPerLoop, sr)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := synth.RenderWAV(f, buf.Streamer(0, buf.Len()), sr, sr.D(buf.Len())); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%s)\n", out, sr.D(buf.Len()))
	return nil
}

// demo is a plain four-on-the-floor beat.
func demo() sequencer.State {
	s := sequencer.State{Tempo: sequencer.DefaultTempo}
	for _, t := range sequencer.Tracks() {
		s.Tracks = append(s.Tracks, sequencer.TrackState{Name: t.String()})
	}
	for step := 0; step < sequencer.StepsPerLoop; step++ {
		s.Track(sequencer.Kick).Steps[step] = step%4 == 0
		s.Track(sequencer.Snare).Steps[step] = step%8 == 4
		s.Track(sequencer.HiHat).Steps[step] = step%2 == 0
	}
	s.Track(sequencer.Crash).Steps[0] = true
	return s
}
