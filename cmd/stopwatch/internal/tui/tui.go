// Package tui is the terminal host of the stopwatch.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/influxdata/stopwatch"
)

// Messages delivered by Listener.
type (
	AnglesMsg  stopwatch.ClockHandAngles
	LapMsg     stopwatch.ElapsedSeconds
	StoppedMsg stopwatch.ElapsedSeconds
)

// snapshotMsg carries the state read after a press or a tick.
type snapshotMsg struct {
	snapshot stopwatch.Snapshot
	err      error
}

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(tea.Msg)
}

// Listener forwards widget notifications to a running program. Sender must
// be set before the widget is mounted.
type Listener struct {
	Sender Sender
}

func (l *Listener) LapRecorded(v stopwatch.ElapsedSeconds) { l.Sender.Send(LapMsg(v)) }
func (l *Listener) Stopped(v stopwatch.ElapsedSeconds)     { l.Sender.Send(StoppedMsg(v)) }
func (l *Listener) HandAngles(a stopwatch.ClockHandAngles) { l.Sender.Send(AnglesMsg(a)) }

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	timeStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
	stateStyle = map[stopwatch.RunState]lipgloss.Style{
		stopwatch.Idle:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		stopwatch.Running: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		stopwatch.Paused:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
	lapStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Keys bound to buttons.
var keys = map[string]stopwatch.Event{
	"s": stopwatch.StartClicked,
	"t": stopwatch.TakeClicked,
	"l": stopwatch.TakeClicked,
	"p": stopwatch.PauseClicked,
	"x": stopwatch.StopClicked,
}

// maxLaps is how many laps the view lists.
const maxLaps = 10

// Model renders one stopwatch and turns key presses into button events.
type Model struct {
	svc stopwatch.Service
	ctx context.Context

	snapshot stopwatch.Snapshot
	angles   stopwatch.ClockHandAngles
	laps     []stopwatch.ElapsedSeconds
	last     *stopwatch.ElapsedSeconds // value of the last stop
	err      error
}

// New returns a model driving svc. ctx bounds every call to svc.
func New(ctx context.Context, svc stopwatch.Service) Model {
	return Model{svc: svc, ctx: ctx}
}

func (m Model) Init() tea.Cmd {
	return m.refresh
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch k := msg.String(); k {
		case "q", "ctrl+c":
			return m, tea.Quit
		default:
			if e, ok := keys[k]; ok {
				return m, m.press(e)
			}
		}
	case AnglesMsg:
		m.angles = stopwatch.ClockHandAngles(msg)
		return m, m.refresh
	case LapMsg:
		m.laps = append(m.laps, stopwatch.ElapsedSeconds(msg))
	case StoppedMsg:
		v := stopwatch.ElapsedSeconds(msg)
		m.last = &v
		m.laps = nil
	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.snapshot = msg.snapshot
	}
	return m, nil
}

func (m Model) press(e stopwatch.Event) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.svc.Dispatch(m.ctx, e); err != nil {
			return snapshotMsg{err: err}
		}
		return m.refresh()
	}
}

func (m Model) refresh() tea.Msg {
	s, err := m.svc.Snapshot(m.ctx)
	return snapshotMsg{snapshot: s, err: err}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("stopwatch"))
	b.WriteString("  ")
	style, ok := stateStyle[m.snapshot.State]
	if !ok {
		style = lipgloss.NewStyle()
	}
	b.WriteString(style.Render(m.snapshot.State.String()))
	b.WriteString("\n")

	b.WriteString(timeStyle.Render(m.snapshot.Elapsed.String()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "hands  sec %6.1f°  min %6.1f°  hr %6.1f°\n",
		m.angles.SecondsDeg, m.angles.MinutesDeg, m.angles.HoursDeg)

	if m.last != nil {
		fmt.Fprintf(&b, "last   %s\n", *m.last)
	}

	laps := m.laps
	if len(laps) > maxLaps {
		laps = laps[len(laps)-maxLaps:]
	}
	first := len(m.laps) - len(laps)
	for i, v := range laps {
		b.WriteString(lapStyle.Render(fmt.Sprintf("lap %-3d %s", first+i+1, v)))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("s start  t take  p pause/resume  x stop  q quit"))
	b.WriteString("\n")
	return b.String()
}
