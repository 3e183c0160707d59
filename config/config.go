package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go-drum/midi"
)

// AudioConfig controls the speaker.
type AudioConfig struct {
	Enabled    bool `json:"enabled"`
	SampleRate int  `json:"sampleRate"`
	BufferMs   int  `json:"bufferMs"`
}

// MIDIConfig selects the ports for mirroring and pads. Empty port names
// disable that side.
type MIDIConfig struct {
	OutPort string `json:"outPort,omitempty"`
	InPort  string `json:"inPort,omitempty"`
	Channel int    `json:"channel"` // 1-16
	Kit     string `json:"kit"`
	GateMs  int    `json:"gateMs"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo int    `json:"lastTempo,omitempty"`
	Palette   string `json:"palette,omitempty"` // path to a GIMP .gpl file
}

// Config is the main configuration structure
type Config struct {
	Audio AudioConfig `json:"audio"`
	MIDI  MIDIConfig  `json:"midi"`
	UI    UIConfig    `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			BufferMs:   50,
		},
		MIDI: MIDIConfig{
			Channel: 10,
			Kit:     midi.DefaultKit,
			GateMs:  50,
		},
		UI: UIConfig{
			LastTempo: 120,
		},
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drum"), nil
}

// Path returns the full path to config.json in dir
func Path(dir string) string {
	return filepath.Join(dir, "config.json")
}

// Load reads the config from ~/.config/go-drum, or returns defaults if not found
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(dir)
}

// LoadFrom reads dir/config.json. Keys missing from the file keep their defaults.
func LoadFrom(dir string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", Path(dir), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", Path(dir), err)
	}
	return cfg, nil
}

// Save writes the config to ~/.config/go-drum
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return c.SaveTo(dir)
}

// SaveTo writes the config to dir/config.json
func (c *Config) SaveTo(dir string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(Path(dir), data, 0644)
}

// Validate rejects values the engine or the MIDI layer cannot use.
func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sampleRate must be > 0, got %d", c.Audio.SampleRate)
	}
	if c.Audio.BufferMs <= 0 {
		return fmt.Errorf("audio.bufferMs must be > 0, got %d", c.Audio.BufferMs)
	}
	if c.MIDI.Channel < 1 || c.MIDI.Channel > 16 {
		return fmt.Errorf("midi.channel must be 1-16, got %d", c.MIDI.Channel)
	}
	if !slices.Contains(midi.KitNames(), c.MIDI.Kit) {
		return fmt.Errorf("midi.kit %q unknown (have %v)", c.MIDI.Kit, midi.KitNames())
	}
	if c.MIDI.GateMs < 0 {
		return fmt.Errorf("midi.gateMs must be >= 0, got %d", c.MIDI.GateMs)
	}
	if c.UI.LastTempo < 0 {
		return fmt.Errorf("ui.lastTempo must be > 0 (or 0 for default), got %d", c.UI.LastTempo)
	}
	return nil
}
