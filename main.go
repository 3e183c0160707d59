package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-drum/config"
	"go-drum/debug"
	"go-drum/midi"
	"go-drum/sequencer"
	"go-drum/synth"
	"go-drum/theme"
	"go-drum/tui"
)

func main() {
	tempo := flag.Int("tempo", 0, "starting tempo in BPM (default: last used)")
	noAudio := flag.Bool("no-audio", false, "do not open the speaker")
	debugLog := flag.Bool("debug", false, "write debug.log to the config directory")
	project := flag.String("project", "", "project to load and save into")
	flag.Parse()

	if err := run(*tempo, *noAudio, *debugLog, *project); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(tempo int, noAudio, debugLog bool, project string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	if debugLog {
		if dir, err := config.Dir(); err == nil {
			if err := debug.Enable(dir); err != nil {
				fmt.Printf("Debug log: %v\n", err)
			}
		}
		defer debug.Disable()
	}

	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		debug.Log("main", "palette %q: %v", cfg.UI.Palette, err)
	}
	th := theme.New(palette)

	// Audio
	voice := synth.New()
	if cfg.Audio.Enabled && !noAudio {
		mixer := synth.NewMixer(beep.SampleRate(cfg.Audio.SampleRate))
		buffer := time.Duration(cfg.Audio.BufferMs) * time.Millisecond
		if err := openSpeaker(mixer, buffer); err != nil {
			fmt.Printf("Audio unavailable: %v\n", err)
			debug.Log("main", "audio: %v", err)
		} else {
			voice.Attach(mixer)
			defer speaker.Close()
		}
	}

	events := sequencer.NewEventChan(256)
	bpm := cfg.UI.LastTempo
	if tempo > 0 {
		bpm = tempo
	}
	opts := []sequencer.Option{
		sequencer.WithTempo(bpm),
		sequencer.WithObserver(events),
	}

	// MIDI, both sides optional
	var ports midi.Ports
	var portsErr error
	if cfg.MIDI.OutPort != "" || cfg.MIDI.InPort != "" {
		if ports, portsErr = midi.ListPorts(midi.PortTimeout); portsErr != nil {
			fmt.Printf("MIDI: %v\n", portsErr)
		}
	}
	kit := midi.GetKit(cfg.MIDI.Kit)
	if cfg.MIDI.OutPort != "" && portsErr == nil {
		if mirror, err := openMirror(ports, cfg.MIDI, kit); err != nil {
			fmt.Printf("MIDI out: %v\n", err)
		} else {
			defer mirror.Close()
			opts = append(opts, sequencer.WithObserver(mirror))
		}
	}

	engine := sequencer.New(voice, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	if cfg.MIDI.InPort != "" && portsErr == nil {
		if in, err := ports.FindIn(cfg.MIDI.InPort); err != nil {
			fmt.Printf("MIDI in: %v\n", err)
		} else {
			pads := midi.NewPads(kit, engine)
			if err := pads.Listen(in); err != nil {
				fmt.Printf("MIDI in: %v\n", err)
			} else {
				defer pads.Close()
			}
		}
	}

	// Projects
	var store *sequencer.ProjectStore
	if dir, err := sequencer.DefaultProjectsDir(); err == nil {
		store = sequencer.NewProjectStore(dir)
	}
	name := project
	if name == "" {
		name = "untitled"
	} else if store != nil {
		if s, err := store.Load(name, ""); err != nil {
			debug.Log("main", "load project %s: %v", name, err)
		} else {
			if tempo > 0 {
				s.Tempo = tempo
			}
			if err := engine.LoadState(s); err != nil {
				fmt.Printf("Load %s: %v\n", name, err)
			}
		}
	}

	m := tui.NewModel(engine, events, th)
	m.Title = "go-drum · " + name
	if store != nil {
		m.Save = func(s sequencer.State) (string, error) {
			fn, err := store.Save(name, s)
			return name + "/" + fn, err
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := p.Run()

	if s, err := engine.Snapshot(); err == nil && s.Tempo > 0 {
		cfg.UI.LastTempo = s.Tempo
		if err := cfg.Save(); err != nil {
			debug.Log("main", "save config: %v", err)
		}
	}

	return runErr
}

// openSpeaker opens the default output device and starts it pulling m.
// The speaker needs cgo, so only the interactive binary links it.
func openSpeaker(m *synth.Mixer, buffer time.Duration) error {
	sr := m.SampleRate()
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return fmt.Errorf("open speaker: %w", err)
	}
	speaker.Play(m)
	debug.Log("main", "speaker open rate=%d buffer=%s", sr, buffer)
	return nil
}

func openMirror(ports midi.Ports, cfg config.MIDIConfig, kit midi.Kit) (*midi.Mirror, error) {
	out, err := ports.FindOut(cfg.OutPort)
	if err != nil {
		return nil, err
	}
	gate := time.Duration(cfg.GateMs) * time.Millisecond
	return midi.OpenMirror(out, kit, uint8(cfg.Channel-1), gate)
}
