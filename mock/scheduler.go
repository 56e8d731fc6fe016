package mock

import (
	"time"

	"github.com/influxdata/stopwatch/elapsed"
)

var _ elapsed.Scheduler = (*Scheduler)(nil)

// Scheduler is a manual elapsed.Scheduler. Nothing fires until Fire is called.
type Scheduler struct {
	// ScheduleCalls counts every cadence ever started.
	ScheduleCalls int
	cadences      []*Cadence
}

// NewScheduler returns a manual scheduler with no cadences.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule records a new cadence.
func (s *Scheduler) Schedule(interval time.Duration, fn func()) elapsed.Cadence {
	s.ScheduleCalls++
	c := &Cadence{Interval: interval, fn: fn}
	s.cadences = append(s.cadences, c)
	return c
}

// Fire delivers one interval to each cadence that has not been stopped.
func (s *Scheduler) Fire() {
	for _, c := range s.Active() {
		c.fn()
	}
}

// FireN calls Fire n times.
func (s *Scheduler) FireN(n int) {
	for i := 0; i < n; i++ {
		s.Fire()
	}
}

// FireStale delivers one interval to every cadence, stopped or not. It
// simulates a fire that was already in flight when Stop was called.
func (s *Scheduler) FireStale() {
	for _, c := range s.cadences {
		c.fn()
	}
}

// Active returns the cadences that have not been stopped.
func (s *Scheduler) Active() []*Cadence {
	var active []*Cadence
	for _, c := range s.cadences {
		if !c.Stopped {
			active = append(active, c)
		}
	}
	return active
}

// Cadence is a cadence started by Scheduler.
type Cadence struct {
	Interval time.Duration
	Stopped  bool
	fn       func()
}

// Stop marks the cadence stopped.
func (c *Cadence) Stop() {
	c.Stopped = true
}
