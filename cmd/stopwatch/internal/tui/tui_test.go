package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/influxdata/stopwatch"
	"github.com/influxdata/stopwatch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step feeds msg to m and runs the returned command, if any, feeding its
// message back.
func step(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	m, cmd := m.Update(msg)
	if cmd != nil {
		m, _ = m.Update(cmd())
	}
	return m
}

type recordingSender struct {
	msgs []tea.Msg
}

func (s *recordingSender) Send(msg tea.Msg) { s.msgs = append(s.msgs, msg) }

func TestModel_KeysDispatchButtons(t *testing.T) {
	svc := mock.NewStopwatchService()
	var pressed []stopwatch.Event
	state := stopwatch.Snapshot{}
	svc.DispatchFn = func(_ context.Context, events ...stopwatch.Event) ([]stopwatch.Command, error) {
		pressed = append(pressed, events...)
		state.State = stopwatch.Running
		return nil, nil
	}
	svc.SnapshotFn = func(context.Context) (stopwatch.Snapshot, error) { return state, nil }

	var m tea.Model = New(context.Background(), svc)
	for _, k := range []string{"s", "t", "l", "p", "x", "z"} {
		m = step(t, m, key(k))
	}

	assert.Equal(t, []stopwatch.Event{
		stopwatch.StartClicked,
		stopwatch.TakeClicked,
		stopwatch.TakeClicked,
		stopwatch.PauseClicked,
		stopwatch.StopClicked,
	}, pressed)
	assert.Contains(t, m.View(), "running")
}

func TestModel_Quit(t *testing.T) {
	m := New(context.Background(), mock.NewStopwatchService())

	for _, msg := range []tea.KeyMsg{key("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
	}
}

func TestModel_Notifications(t *testing.T) {
	svc := mock.NewStopwatchService()
	svc.SnapshotFn = func(context.Context) (stopwatch.Snapshot, error) {
		return stopwatch.Snapshot{State: stopwatch.Running, Elapsed: 65}, nil
	}

	var m tea.Model = New(context.Background(), svc)
	m = step(t, m, AnglesMsg{SecondsDeg: 120, MinutesDeg: 96, HoursDeg: 90})
	m = step(t, m, LapMsg(7))
	m = step(t, m, LapMsg(65))

	view := m.View()
	assert.Contains(t, view, "00:01:05")
	assert.Contains(t, view, "sec  120.0°")
	assert.Contains(t, view, "min   96.0°")
	assert.Contains(t, view, "lap 1   00:00:07")
	assert.Contains(t, view, "lap 2   00:01:05")

	m = step(t, m, StoppedMsg(70))
	view = m.View()
	assert.Contains(t, view, "last   00:01:10")
	assert.NotContains(t, view, "lap 1")
}

func TestModel_ShowsErrors(t *testing.T) {
	svc := mock.NewStopwatchService()
	svc.DispatchFn = func(context.Context, ...stopwatch.Event) ([]stopwatch.Command, error) {
		return nil, errors.New("stopwatch widget is not mounted")
	}

	var m tea.Model = New(context.Background(), svc)
	m = step(t, m, key("s"))
	assert.Contains(t, m.View(), "stopwatch widget is not mounted")
}

func TestModel_ListsRecentLaps(t *testing.T) {
	var m tea.Model = New(context.Background(), mock.NewStopwatchService())
	for i := 1; i <= maxLaps+2; i++ {
		m = step(t, m, LapMsg(i))
	}

	view := m.View()
	assert.NotContains(t, view, "lap 2 ")
	assert.Contains(t, view, "lap 3 ")
	assert.Contains(t, view, "lap 12")
}

func TestListener(t *testing.T) {
	s := &recordingSender{}
	l := &Listener{Sender: s}

	l.HandAngles(stopwatch.ClockHandAngles{SecondsDeg: 90, MinutesDeg: 90, HoursDeg: 90})
	l.LapRecorded(3)
	l.Stopped(4)

	assert.Equal(t, []tea.Msg{
		AnglesMsg{SecondsDeg: 90, MinutesDeg: 90, HoursDeg: 90},
		LapMsg(3),
		StoppedMsg(4),
	}, s.msgs)
}
