package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-drum/midi"
	"go-drum/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "kits":
		listKits()
	case "monitor":
		err = monitor(arg(2))
	case "hit":
		err = hit(arg(2), arg(3), arg(4))
	case "poll":
		pollDevices()
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func arg(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return ""
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                    - List all MIDI ports")
	fmt.Println("  kits                    - Show kit note mappings")
	fmt.Println("  monitor <in>            - Print notes from an input, mapped to tracks")
	fmt.Println("  hit <out> <track> [kit] - Send one drum hit")
	fmt.Println("  poll                    - Poll for device changes")
}

func listPorts() error {
	fmt.Printf("(waiting up to %s...)\n", midi.PortTimeout)
	ports, err := midi.ListPorts(midi.PortTimeout)
	if err != nil {
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}

	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ports.Ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range ports.Outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	return nil
}

func listKits() {
	for _, name := range midi.KitNames() {
		kit := midi.Kits[name]
		fmt.Printf("%-5s %s\n", name, kit.Name)
		for _, t := range sequencer.Tracks() {
			note, _ := kit.Note(t)
			fmt.Printf("      %-6s %d\n", t, note)
		}
	}
}

// printer prints pad auditions instead of playing them.
type printer struct{}

func (printer) Audition(t sequencer.Track) error {
	fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05.000"), t)
	return nil
}

func monitor(name string) error {
	if name == "" {
		return fmt.Errorf("monitor needs an input port name")
	}
	ports, err := midi.ListPorts(midi.PortTimeout)
	if err != nil {
		return err
	}
	in, err := ports.FindIn(name)
	if err != nil {
		return err
	}

	pads := midi.NewPads(midi.GetKit(midi.DefaultKit), printer{})
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		if !pads.Handle(msg) {
			fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05.000"), msg)
		}
	})
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer stop()

	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", in.String())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	return nil
}

func hit(outName, trackName, kitName string) error {
	if outName == "" || trackName == "" {
		return fmt.Errorf("hit needs an output port and a track")
	}
	t, err := sequencer.ParseTrack(trackName)
	if err != nil {
		return err
	}
	if kitName == "" {
		kitName = midi.DefaultKit
	}
	ports, err := midi.ListPorts(midi.PortTimeout)
	if err != nil {
		return err
	}
	out, err := ports.FindOut(outName)
	if err != nil {
		return err
	}

	gate := 100 * time.Millisecond
	mirror, err := midi.OpenMirror(out, midi.GetKit(kitName), 9, gate)
	if err != nil {
		return err
	}
	mirror.OnTrackFired(t)
	time.Sleep(2 * gate)
	mirror.Close()
	fmt.Printf("Sent %s to %s\n", t, out.String())
	return nil
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a drum machine to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ports, err := midi.ListPorts(midi.PortTimeout)
		if err != nil {
			fmt.Printf("\n[%s] %v\n", time.Now().Format("15:04:05"), err)
			time.Sleep(2 * time.Second)
			continue
		}

		var inNames, outNames []string
		for _, p := range ports.Ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range ports.Outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
