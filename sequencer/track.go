package sequencer

import (
	"fmt"
	"strings"
)

// StepsPerLoop is the fixed number of steps in one loop.
const StepsPerLoop = 16

// Track identifies one percussion voice. The set and its order are fixed.
type Track int

const (
	Kick Track = iota
	Snare
	HiHat
	Crash

	numTracks
)

var trackNames = [numTracks]string{"kick", "snare", "hihat", "crash"}

// Tracks returns all tracks in playback order.
func Tracks() []Track {
	return []Track{Kick, Snare, HiHat, Crash}
}

// Valid reports whether t is one of the known tracks.
func (t Track) Valid() bool {
	return t >= 0 && t < numTracks
}

func (t Track) String() string {
	if !t.Valid() {
		return fmt.Sprintf("track(%d)", int(t))
	}
	return trackNames[t]
}

// ParseTrack looks up a track by name (case-insensitive)
func ParseTrack(name string) (Track, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range trackNames {
		if n == name {
			return Track(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown track %q", ErrInvalidArgument, name)
}

// MarshalText encodes the track by name so it can key JSON objects.
func (t Track) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown track %d", ErrInvalidArgument, int(t))
	}
	return []byte(t.String()), nil
}

func (t *Track) UnmarshalText(b []byte) error {
	parsed, err := ParseTrack(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
