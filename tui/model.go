package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-drum/debug"
	"go-drum/sequencer"
	"go-drum/theme"
	"go-drum/widgets"
)

// Tempo bounds for the +/- keys.
const (
	MinTempo  = 60
	MaxTempo  = 240
	TempoStep = 5
)

// Engine is the part of sequencer.Engine the UI drives.
type Engine interface {
	ToggleStep(t sequencer.Track, step int) (bool, error)
	TogglePlay() error
	Stop() error
	SetTempo(bpm int) error
	ToggleMute(t sequencer.Track) (bool, error)
	NextVariant(t sequencer.Track) (string, error)
	ClearAll() error
	Snapshot() (sequencer.State, error)
}

// SaveFunc stores a snapshot and returns where it went.
type SaveFunc func(sequencer.State) (string, error)

type Model struct {
	Engine Engine
	Events sequencer.EventChan
	Theme  *theme.Theme
	Save   SaveFunc // nil disables saving
	Title  string

	state    sequencer.State
	playhead int                      // last step played, -1 when cleared
	firing   map[sequencer.Track]bool // fired during the tick in progress
	lit      map[sequencer.Track]bool // fired on the playhead step
	track    int
	step     int
	showHelp bool
	status   string
	quitting bool
}

// EventMsg carries one engine notification into Update.
type EventMsg sequencer.Event

func NewModel(engine Engine, events sequencer.EventChan, th *theme.Theme) Model {
	m := Model{
		Engine:   engine,
		Events:   events,
		Theme:    th,
		Title:    "go-drum",
		playhead: -1,
		firing:   make(map[sequencer.Track]bool),
		lit:      make(map[sequencer.Track]bool),
	}
	m.resync()
	return m
}

// ListenForEvents waits for the next engine notification.
func ListenForEvents(events sequencer.EventChan) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForEvents(m.Events)
}

// State is the snapshot the view renders from.
func (m Model) State() sequencer.State { return m.state }

// Cursor returns the selected track and step.
func (m Model) Cursor() (sequencer.Track, int) {
	return sequencer.Tracks()[m.track], m.step
}

func (m *Model) resync() {
	s, err := m.Engine.Snapshot()
	if err != nil {
		m.status = err.Error()
		return
	}
	m.state = s
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		m.apply(sequencer.Event(msg))
		return m, ListenForEvents(m.Events)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tracks := sequencer.Tracks()
	cur := tracks[m.track]

	var err error
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Engine.Stop()
		return m, tea.Quit

	case "up", "k":
		m.track = (m.track + len(tracks) - 1) % len(tracks)
	case "down", "j":
		m.track = (m.track + 1) % len(tracks)
	case "left", "h":
		m.step = (m.step + sequencer.StepsPerLoop - 1) % sequencer.StepsPerLoop
	case "right", "l":
		m.step = (m.step + 1) % sequencer.StepsPerLoop

	case " ", "enter":
		_, err = m.Engine.ToggleStep(cur, m.step)
	case "p":
		err = m.Engine.TogglePlay()
	case "s":
		err = m.Engine.Stop()
	case "+", "=":
		err = m.Engine.SetTempo(clampTempo(m.state.Tempo + TempoStep))
	case "-", "_":
		err = m.Engine.SetTempo(clampTempo(m.state.Tempo - TempoStep))
	case "m":
		_, err = m.Engine.ToggleMute(cur)
	case "v":
		var id string
		if id, err = m.Engine.NextVariant(cur); err == nil {
			m.status = fmt.Sprintf("%s: %s", cur, id)
		}
	case "c":
		err = m.Engine.ClearAll()
	case "w":
		m.status = m.save()
	case "?":
		m.showHelp = !m.showHelp
	default:
		return m, nil
	}

	if err != nil {
		debug.Log("tui", "key %q: %v", msg.String(), err)
		m.status = err.Error()
	}
	m.resync()
	return m, nil
}

func (m *Model) save() string {
	if m.Save == nil {
		return "saving disabled"
	}
	s, err := m.Engine.Snapshot()
	if err != nil {
		return err.Error()
	}
	where, err := m.Save(s)
	if err != nil {
		debug.Log("tui", "save: %v", err)
		return "save failed: " + err.Error()
	}
	return "saved " + where
}

func clampTempo(bpm int) int {
	return max(MinTempo, min(MaxTempo, bpm))
}

// apply folds a notification into the view state. Events may be dropped
// when the channel is full, so anything but playback position resyncs.
func (m *Model) apply(ev sequencer.Event) {
	switch ev.Kind {
	case sequencer.TrackFired:
		m.firing[ev.Track] = true
	case sequencer.StepAdvanced:
		m.playhead = (ev.Step + sequencer.StepsPerLoop - 1) % sequencer.StepsPerLoop
		m.lit, m.firing = m.firing, make(map[sequencer.Track]bool)
		m.state.Step = ev.Step
	case sequencer.HighlightCleared:
		m.playhead = -1
		clear(m.lit)
		clear(m.firing)
		m.resync()
	default:
		m.resync()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	labelStyle := lipgloss.NewStyle().Foreground(m.Theme.FG()).Width(7)
	selStyle := labelStyle.Foreground(m.Theme.Cursor()).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	playState := "STOP"
	if m.state.Playing {
		playState = "PLAY"
	}
	header := headerStyle.Render(fmt.Sprintf("%s  %s  %3dbpm  step:%02d", m.Title, playState, m.state.Tempo, m.state.Step))

	var grid strings.Builder
	grid.WriteString(labelStyle.Render(""))
	grid.WriteString("  ")
	grid.WriteString(dimStyle.Render(widgets.RenderRuler(sequencer.StepsPerLoop, 4)))
	grid.WriteString("\n")
	for i, t := range sequencer.Tracks() {
		ts := m.state.Track(t)
		if ts == nil {
			continue
		}
		label := labelStyle
		if i == m.track {
			label = selStyle
		}
		mute := ' '
		if ts.Muted {
			mute = m.Theme.Symbols.Muted
		}
		grid.WriteString(label.Render(ts.Name))
		grid.WriteString(warnStyle.Render(string(mute)))
		grid.WriteString(" ")
		grid.WriteString(widgets.RenderRow(m.cells(i, t, ts), 4))
		grid.WriteString("  ")
		grid.WriteString(dimStyle.Render(ts.Sound.String()))
		grid.WriteString("\n")
	}

	help := dimStyle.Render("hjkl:move  space:toggle  p:play  s:stop  +/-:tempo  m:mute  v:variant  c:clear  w:save  ?:help  q:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(grid.String())
	out.WriteString("\n")
	if m.showHelp {
		out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keyHelp)))
		out.WriteString("\n\n")
	}
	out.WriteString(help)
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(m.status))
	}
	return out.String()
}

func (m Model) cells(row int, t sequencer.Track, ts *sequencer.TrackState) []widgets.Cell {
	sym := m.Theme.Symbols
	cells := make([]widgets.Cell, sequencer.StepsPerLoop)
	for step, on := range ts.Steps {
		c := widgets.Cell{Symbol: sym.StepEmpty, Color: m.Theme.RGB(theme.RoleMuted)}
		if on {
			c = widgets.Cell{Symbol: sym.StepActive, Color: m.Theme.RGB(theme.RoleActive)}
			if ts.Muted {
				c.Color = m.Theme.RGB(theme.RoleMuted)
			}
		}
		if step == m.playhead {
			switch {
			case m.lit[t]:
				c = widgets.Cell{Symbol: sym.StepFired, Color: m.Theme.RGB(theme.RoleSuccess), Bold: true}
			case !on:
				c = widgets.Cell{Symbol: sym.StepPlayhead, Color: m.Theme.RGB(theme.RoleAccent)}
			}
		}
		if row == m.track && step == m.step {
			c.Symbol = sym.CursorEmpty
			if on {
				c.Symbol = sym.CursorActive
			}
			c.Color = m.Theme.RGB(theme.RoleCursor)
		}
		cells[step] = c
	}
	return cells
}

var keyHelp = []widgets.KeySection{
	{Title: "Grid", Keys: []widgets.KeyBinding{
		{Key: "arrows/hjkl", Desc: "move cursor"},
		{Key: "space", Desc: "toggle step (plays the track)"},
		{Key: "m", Desc: "mute track"},
		{Key: "v", Desc: "next sound variant"},
		{Key: "c", Desc: "clear pattern and stop"},
	}},
	{Title: "Transport", Keys: []widgets.KeyBinding{
		{Key: "p", Desc: "play / pause"},
		{Key: "s", Desc: "stop and rewind"},
		{Key: "+ / -", Desc: fmt.Sprintf("tempo ±%d (%d-%d)", TempoStep, MinTempo, MaxTempo)},
	}},
	{Title: "Project", Keys: []widgets.KeyBinding{
		{Key: "w", Desc: "save snapshot"},
		{Key: "q", Desc: "quit"},
	}},
}
