// Package router turns raw button events into engine commands.
//
// The take and pause buttons share one combined listener. Each carries a
// click counter seeded at zero, and every activation of either button
// produces a joint update carrying both counters. The router compares the
// counters with the previous joint update to decide which button was meant;
// when both advanced in the same update, take wins.
package router

import (
	"github.com/influxdata/stopwatch"
	"go.uber.org/zap"
)

// Target is the part of the elapsed-time engine the router drives.
type Target interface {
	State() stopwatch.RunState
	Elapsed() stopwatch.ElapsedSeconds
	Apply(stopwatch.Command) bool
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger for the router.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) {
		r.logger = logger.With(zap.String("svc", "stopwatch/router"))
	}
}

// Router routes events to a Target. It is not safe for concurrent use.
type Router struct {
	target Target
	logger *zap.Logger

	take, pause         uint64 // click counters
	lastTake, lastPause uint64 // counters as of the previous joint update
}

// New returns a router driving target.
func New(target Target, opts ...Option) *Router {
	r := &Router{
		target: target,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Counters returns the take and pause click counters.
func (r *Router) Counters() (take, pause uint64) {
	return r.take, r.pause
}

// Press handles events activated together and returns the commands the
// target applied.
//
// Consecutive take and pause events form one joint update; start and stop
// events are applied in order around it. Every command is tagged with the
// target's elapsed value at the moment it is routed.
func (r *Router) Press(events ...stopwatch.Event) []stopwatch.Command {
	var (
		applied []stopwatch.Command
		pending bool
	)
	flush := func() {
		if !pending {
			return
		}
		pending = false
		if cmd, ok := r.joint(); ok {
			applied = r.apply(applied, cmd)
		}
	}

	for _, ev := range events {
		switch ev {
		case stopwatch.TakeClicked:
			r.take++
			pending = true
		case stopwatch.PauseClicked:
			r.pause++
			pending = true
		case stopwatch.StartClicked:
			flush()
			applied = r.apply(applied, stopwatch.Command{Kind: stopwatch.CommandStart, At: r.target.Elapsed()})
		case stopwatch.StopClicked:
			flush()
			applied = r.apply(applied, stopwatch.Command{Kind: stopwatch.CommandStop, At: r.target.Elapsed()})
		default:
			r.logger.Debug("Unknown event", zap.Int("event", int(ev)))
		}
	}
	flush()

	return applied
}

// joint resolves the current joint update into a single command.
func (r *Router) joint() (stopwatch.Command, bool) {
	if r.take == 0 && r.pause == 0 {
		return stopwatch.Command{}, false
	}

	takeAdvanced := r.take != r.lastTake
	pauseAdvanced := r.pause != r.lastPause
	r.lastTake, r.lastPause = r.take, r.pause

	at := r.target.Elapsed()
	switch {
	case takeAdvanced:
		return stopwatch.Command{Kind: stopwatch.CommandTake, At: at}, true
	case pauseAdvanced:
		// The pause button doubles as resume.
		if r.target.State() == stopwatch.Paused {
			return stopwatch.Command{Kind: stopwatch.CommandStart, At: at}, true
		}
		return stopwatch.Command{Kind: stopwatch.CommandPause, At: at}, true
	}
	return stopwatch.Command{}, false
}

func (r *Router) apply(applied []stopwatch.Command, cmd stopwatch.Command) []stopwatch.Command {
	if !r.target.Apply(cmd) {
		return applied
	}
	r.logger.Debug("Command applied",
		zap.Stringer("command", cmd.Kind),
		zap.Uint64("at", uint64(cmd.At)),
	)
	return append(applied, cmd)
}
