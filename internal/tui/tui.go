// Package tui is the terminal control surface for local playback.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/satindergrewal/soundscape/internal/audio"
	"github.com/satindergrewal/soundscape/internal/console"
)

const (
	sliderStep  = 0.05
	sliderWidth = 24
	allOff      = "allOff"
)

var refreshInterval = 250 * time.Millisecond

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	startStyle    = lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("24")).Foreground(lipgloss.Color("255"))
)

type tickMsg time.Time

type startedMsg struct{ err error }

// Model drives a console from the keyboard.
type Model struct {
	ctx      context.Context
	console  *console.Console
	status   console.Status
	selected int
	errLine  string
	starting bool
	help     help.Model
}

// New creates a model over c. ctx bounds the output resume.
func New(ctx context.Context, c *console.Console) Model {
	return Model{ctx: ctx, console: c, status: c.Status(), help: help.New()}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) start() tea.Cmd {
	ctx, c := m.ctx, m.console
	return func() tea.Msg {
		return startedMsg{err: c.Start(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.status = m.console.Status()
		return m, tick()

	case startedMsg:
		m.starting = false
		if msg.err != nil {
			m.errLine = msg.err.Error()
		} else {
			m.errLine = ""
		}
		m.status = m.console.Status()
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Start):
		if m.starting || !m.status.StartVisible {
			return m, nil
		}
		m.starting = true
		return m, m.start()

	case key.Matches(msg, keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, keys.Down):
		if m.selected < len(m.status.Tracks)-1 {
			m.selected++
		}

	case key.Matches(msg, keys.Quieter):
		m.nudge(-sliderStep)
	case key.Matches(msg, keys.Louder):
		m.nudge(sliderStep)

	case key.Matches(msg, keys.AllOff):
		m.applyPreset(allOff)
	case key.Matches(msg, keys.Preset):
		i := int(msg.String()[0] - '1')
		if i < len(m.status.Presets) {
			m.applyPreset(m.status.Presets[i].ID)
		}
	}
	return m, nil
}

func (m *Model) nudge(delta float64) {
	if len(m.status.Tracks) == 0 {
		return
	}
	t := m.status.Tracks[m.selected]
	v := math.Round((t.Value+delta)*100) / 100
	v = max(0, min(1, v))
	m.setErr(m.console.SetVolume(t.ID, v))
	m.status = m.console.Status()
}

func (m *Model) applyPreset(id string) {
	m.setErr(m.console.ApplyPreset(id))
	m.status = m.console.Status()
}

func (m *Model) setErr(err error) {
	if err != nil {
		m.errLine = err.Error()
		return
	}
	m.errLine = ""
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("soundscape"))
	b.WriteString("\n\n")

	if m.status.StartVisible {
		label := "press enter to start"
		if m.starting {
			label = "starting..."
		}
		b.WriteString(startStyle.Render(label))
		b.WriteString("\n\n")
	}

	for i, t := range m.status.Tracks {
		cursor := "  "
		name := fmt.Sprintf("%-8s", t.Label)
		if i == m.selected {
			cursor = "> "
			name = selectedStyle.Render(name)
		}
		fmt.Fprintf(&b, "%s%s %s %3.0f%% %s\n", cursor, name, bar(t.Value), t.Value*100, trackNote(t))
	}

	b.WriteString("\n")
	var presets []string
	for i, p := range m.status.Presets {
		presets = append(presets, fmt.Sprintf("%d %s", i+1, p.Label))
	}
	b.WriteString(dimStyle.Render(strings.Join(presets, "  ·  ")))
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	b.WriteString("\n")

	if m.errLine != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errLine))
		b.WriteString("\n")
	}
	return b.String()
}

func bar(v float64) string {
	filled := int(math.Round(v * sliderWidth))
	return strings.Repeat("█", filled) + strings.Repeat("░", sliderWidth-filled)
}

func trackNote(t console.TrackView) string {
	switch t.State {
	case audio.Playing, audio.NotStarted:
		return ""
	case audio.Failed:
		return errorStyle.Render("unavailable")
	}
	return dimStyle.Render(t.State.String())
}
