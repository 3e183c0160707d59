package theme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-dsp/dsp/core"
)

type RGB [3]uint8

// Palette is an ordered color ramp, usually read from a GIMP .gpl file.
type Palette struct {
	Name   string
	Colors []RGB
}

func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ParseGPL(f)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

// ParseGPL reads GIMP palette text. Header lines and comments are skipped;
// each color line starts with three 0-255 components.
func ParseGPL(r io.Reader) (*Palette, error) {
	p := &Palette{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "", line[0] == '#':
			continue
		case strings.HasPrefix(line, "Name:"):
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		case strings.HasPrefix(line, "GIMP"), strings.HasPrefix(line, "Columns"):
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: want R G B, got %q", lineNo, line)
		}
		var c RGB
		for i := range c {
			v, err := strconv.Atoi(fields[i])
			if err != nil || v < 0 || v > 255 {
				return nil, fmt.Errorf("line %d: bad component %q", lineNo, fields[i])
			}
			c[i] = uint8(v)
		}
		p.Colors = append(p.Colors, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors")
	}
	return p, nil
}

// DefaultPalette is a dark purple to yellow ramp, used when no .gpl file is
// configured.
func DefaultPalette() *Palette {
	return &Palette{
		Name: "go-drum",
		Colors: []RGB{
			{13, 8, 135},
			{84, 2, 163},
			{139, 10, 165},
			{185, 50, 137},
			{219, 92, 104},
			{244, 136, 73},
			{254, 188, 43},
			{240, 249, 33},
		},
	}
}

// LoadOrDefault loads path, falling back to DefaultPalette when path is
// empty or unreadable. The error reports why the fallback was taken.
func LoadOrDefault(path string) (*Palette, error) {
	if path == "" {
		return DefaultPalette(), nil
	}
	p, err := LoadGPL(path)
	if err != nil {
		return DefaultPalette(), err
	}
	return p, nil
}

// Lookup interpolates along the ramp; norm is clamped to 0-1.
func (p *Palette) Lookup(norm float64) RGB {
	last := len(p.Colors) - 1
	pos := core.Clamp(norm, 0, 1) * float64(last)
	i := min(int(pos), last)
	if i == last {
		return p.Colors[last]
	}
	frac := pos - float64(i)
	var out RGB
	for k := range out {
		out[k] = lerp(p.Colors[i][k], p.Colors[i+1][k], frac)
	}
	return out
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}

// Index returns the i'th color, clamped to the ramp.
func (p *Palette) Index(i int) RGB {
	return p.Colors[max(0, min(i, len(p.Colors)-1))]
}
