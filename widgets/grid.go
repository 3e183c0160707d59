package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Cell is one rendered grid position.
type Cell struct {
	Symbol rune
	Color  [3]uint8
	Bold   bool
}

// RenderCell renders a single colored symbol
func RenderCell(c Cell) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(c.Color))).Bold(c.Bold)
	return style.Render(string(c.Symbol))
}

// RenderRow renders cells with one space between them and an extra space
// after every group (4 for one beat of 16ths). group <= 0 disables grouping.
func RenderRow(cells []Cell, group int) string {
	var out strings.Builder
	for i, c := range cells {
		if i > 0 {
			out.WriteString(" ")
			if group > 0 && i%group == 0 {
				out.WriteString(" ")
			}
		}
		out.WriteString(RenderCell(c))
	}
	return out.String()
}

// RenderRuler numbers the first step of every group, aligned with RenderRow.
func RenderRuler(n, group int) string {
	var out strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			out.WriteString(" ")
			if group > 0 && i%group == 0 {
				out.WriteString(" ")
			}
		}
		if group > 0 && i%group == 0 {
			out.WriteString(fmt.Sprintf("%d", (i/group+1)%10))
		} else {
			out.WriteString(" ")
		}
	}
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
