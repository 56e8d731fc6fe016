package mock

import (
	"sync"

	"github.com/influxdata/stopwatch"
)

var _ stopwatch.Listener = (*Listener)(nil)

// Notification is one call recorded by Listener.
type Notification struct {
	Kind    string // "lap", "stopped" or "angles"
	Elapsed stopwatch.ElapsedSeconds
	Angles  stopwatch.ClockHandAngles
}

// Listener records every notification it receives. It is safe to read from
// a different goroutine than the one delivering notifications.
type Listener struct {
	// C receives a copy of each notification. Sends never block; once the
	// buffer is full further notifications are only recorded.
	C chan Notification

	mu     sync.Mutex
	laps   []stopwatch.ElapsedSeconds
	stops  []stopwatch.ElapsedSeconds
	angles []stopwatch.ClockHandAngles
}

// NewListener returns a Listener whose channel buffers n notifications.
func NewListener(n int) *Listener {
	return &Listener{C: make(chan Notification, n)}
}

func (l *Listener) LapRecorded(v stopwatch.ElapsedSeconds) {
	l.mu.Lock()
	l.laps = append(l.laps, v)
	l.mu.Unlock()
	l.send(Notification{Kind: "lap", Elapsed: v})
}

func (l *Listener) Stopped(v stopwatch.ElapsedSeconds) {
	l.mu.Lock()
	l.stops = append(l.stops, v)
	l.mu.Unlock()
	l.send(Notification{Kind: "stopped", Elapsed: v})
}

func (l *Listener) HandAngles(a stopwatch.ClockHandAngles) {
	l.mu.Lock()
	l.angles = append(l.angles, a)
	l.mu.Unlock()
	l.send(Notification{Kind: "angles", Angles: a})
}

func (l *Listener) send(n Notification) {
	if l.C == nil {
		return
	}
	select {
	case l.C <- n:
	default:
	}
}

// Laps returns the recorded lap values.
func (l *Listener) Laps() []stopwatch.ElapsedSeconds {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]stopwatch.ElapsedSeconds(nil), l.laps...)
}

// Stops returns the recorded stop values.
func (l *Listener) Stops() []stopwatch.ElapsedSeconds {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]stopwatch.ElapsedSeconds(nil), l.stops...)
}

// Angles returns the recorded hand angles.
func (l *Listener) Angles() []stopwatch.ClockHandAngles {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]stopwatch.ClockHandAngles(nil), l.angles...)
}
