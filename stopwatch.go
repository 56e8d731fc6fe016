// Package stopwatch holds the domain types shared by the elapsed-time engine,
// the command router, the angle projector and the widget that wires them.
package stopwatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/influxdata/stopwatch/kit/platform/errors"
)

// ElapsedSeconds is the whole number of seconds since the current session
// began, net of paused time.
type ElapsedSeconds uint64

// String formats v as HH:MM:SS. Hours do not wrap.
func (v ElapsedSeconds) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", v/3600, v/60%60, v%60)
}

// RunState is the state of a stopwatch session.
type RunState int

const (
	// Idle is the state before the first start and after every stop.
	Idle RunState = iota
	// Running means the tick cadence is active.
	Running
	// Paused means the session is frozen and resumable.
	Paused
	// Stopped is passed through on stop before the engine returns to Idle.
	Stopped
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CommandKind identifies a normalized engine command.
type CommandKind int

const (
	CommandStart CommandKind = iota
	CommandTake
	CommandPause
	CommandStop
)

func (k CommandKind) String() string {
	switch k {
	case CommandStart:
		return "start"
	case CommandTake:
		return "take"
	case CommandPause:
		return "pause"
	case CommandStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Command is a normalized instruction for the engine, tagged with the
// elapsed value it applied to.
type Command struct {
	Kind CommandKind    `json:"kind"`
	At   ElapsedSeconds `json:"at"`
}

// MarshalText renders the kind by name so commands read well in JSON.
func (k CommandKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ClockHandAngles are rotation offsets, in degrees, applied to the at-rest
// orientation of each clock hand.
type ClockHandAngles struct {
	SecondsDeg float64 `json:"secondsDeg"`
	MinutesDeg float64 `json:"minutesDeg"`
	HoursDeg   float64 `json:"hoursDeg"`
}

// Event is a raw button activation coming from the presentation layer.
type Event int

const (
	StartClicked Event = iota
	TakeClicked
	PauseClicked
	StopClicked
)

func (e Event) String() string {
	switch e {
	case StartClicked:
		return "start"
	case TakeClicked:
		return "take"
	case PauseClicked:
		return "pause"
	case StopClicked:
		return "stop"
	default:
		return "unknown"
	}
}

// ParseEvent returns the event named by s. "lap" is accepted for take and
// "resume" for pause, since the pause button doubles as resume.
func ParseEvent(s string) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start":
		return StartClicked, nil
	case "take", "lap":
		return TakeClicked, nil
	case "pause", "resume":
		return PauseClicked, nil
	case "stop":
		return StopClicked, nil
	}
	return 0, &errors.Error{
		Code: errors.EInvalid,
		Op:   "stopwatch/ParseEvent",
		Msg:  "unknown button " + strings.TrimSpace(s),
		Err:  ErrUnknownEvent,
	}
}

// Listener receives the notifications a widget pushes to its host.
// Listeners are called from the widget's event loop and must not block.
type Listener interface {
	// LapRecorded is called on each take.
	LapRecorded(elapsed ElapsedSeconds)
	// Stopped is called once per session on stop.
	Stopped(elapsed ElapsedSeconds)
	// HandAngles is called on every tick and on reset.
	HandAngles(angles ClockHandAngles)
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are skipped.
type ListenerFuncs struct {
	LapRecordedFn func(ElapsedSeconds)
	StoppedFn     func(ElapsedSeconds)
	HandAnglesFn  func(ClockHandAngles)
}

var _ Listener = ListenerFuncs{}

func (f ListenerFuncs) LapRecorded(v ElapsedSeconds) {
	if f.LapRecordedFn != nil {
		f.LapRecordedFn(v)
	}
}

func (f ListenerFuncs) Stopped(v ElapsedSeconds) {
	if f.StoppedFn != nil {
		f.StoppedFn(v)
	}
}

func (f ListenerFuncs) HandAngles(a ClockHandAngles) {
	if f.HandAnglesFn != nil {
		f.HandAnglesFn(a)
	}
}

// Snapshot is a consistent read of one stopwatch.
type Snapshot struct {
	State       RunState        `json:"state"`
	Elapsed     ElapsedSeconds  `json:"elapsed"`
	PauseOffset ElapsedSeconds  `json:"pauseOffset"`
	Sessions    uint64          `json:"sessions"`
	Angles      ClockHandAngles `json:"angles"`
}

// Service drives a mounted stopwatch.
type Service interface {
	// Dispatch delivers events activated together and returns the commands
	// that were applied.
	Dispatch(ctx context.Context, events ...Event) ([]Command, error)
	// Snapshot returns the current state.
	Snapshot(ctx context.Context) (Snapshot, error)
}
