// Package elapsed implements the elapsed-time engine: the state machine that
// owns the authoritative elapsed-seconds value of a stopwatch session.
//
// An Engine is not safe for concurrent use. Every method, and every fire of
// the cadence it schedules, must run on a single event loop.
package elapsed

import (
	"github.com/influxdata/stopwatch"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
// If not set, the engine will use a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.With(zap.String("svc", "stopwatch/engine"))
	}
}

// Engine tracks elapsed seconds across start, pause, resume and stop.
type Engine struct {
	sched   Scheduler
	logger  *zap.Logger
	metrics *engineMetrics

	state       stopwatch.RunState
	elapsed     stopwatch.ElapsedSeconds
	pauseOffset stopwatch.ElapsedSeconds
	ticks       stopwatch.ElapsedSeconds
	sessions    uint64
	closed      bool
	// idleTaken is set once a take has reported 0 in the current Idle period.
	idleTaken bool

	// gen identifies the current cadence; fires from older cadences are dropped.
	gen     uint64
	cadence Cadence

	elapsedSubs subscriptions
	lapSubs     subscriptions
	stopSubs    subscriptions
}

// New returns an idle engine whose cadence comes from sched.
func New(sched Scheduler, opts ...Option) *Engine {
	e := &Engine{
		sched:   sched,
		logger:  zap.NewNop(),
		metrics: newEngineMetrics(),
		state:   stopwatch.Idle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current run state.
func (e *Engine) State() stopwatch.RunState { return e.state }

// Elapsed returns the value most recently published to observers.
func (e *Engine) Elapsed() stopwatch.ElapsedSeconds { return e.elapsed }

// PauseOffset returns the value captured at the most recent pause, or 0.
func (e *Engine) PauseOffset() stopwatch.ElapsedSeconds { return e.pauseOffset }

// Sessions returns the number of sessions ended by Stop.
func (e *Engine) Sessions() uint64 { return e.sessions }

// Subscribe registers fn to observe every published elapsed value: each tick,
// the immediate emission on start, and the reset to zero on stop.
func (e *Engine) Subscribe(fn func(stopwatch.ElapsedSeconds)) (unsubscribe func()) {
	return e.elapsedSubs.add(fn)
}

// OnLap registers fn to receive the value of each take.
func (e *Engine) OnLap(fn func(stopwatch.ElapsedSeconds)) (unsubscribe func()) {
	return e.lapSubs.add(fn)
}

// OnStop registers fn to receive the final value of each session.
func (e *Engine) OnStop(fn func(stopwatch.ElapsedSeconds)) (unsubscribe func()) {
	return e.stopSubs.add(fn)
}

// Apply routes cmd to the matching operation and reports whether it was applied.
func (e *Engine) Apply(cmd stopwatch.Command) bool {
	switch cmd.Kind {
	case stopwatch.CommandStart:
		return e.Start()
	case stopwatch.CommandTake:
		return e.Take(cmd.At)
	case stopwatch.CommandPause:
		return e.Pause(cmd.At)
	case stopwatch.CommandStop:
		return e.Stop(cmd.At)
	}
	e.logger.Debug("Unknown command", zap.Stringer("command", cmd.Kind))
	return false
}

// Start begins a cadence seeded with the pause offset. Tick 0 is published
// before Start returns. Start is ignored while already running, so only the
// first start of a session counts.
func (e *Engine) Start() bool {
	if e.closed || e.state == stopwatch.Running {
		return e.ignore(stopwatch.CommandStart)
	}

	e.teardown()
	e.ticks = 0
	e.state = stopwatch.Running
	e.idleTaken = false

	e.gen++
	gen := e.gen
	e.cadence = e.sched.Schedule(TickInterval, func() { e.tick(gen) })

	e.logger.Debug("Started", zap.Uint64("pause_offset", uint64(e.pauseOffset)))
	e.metrics.applied(stopwatch.CommandStart)
	e.publish(e.pauseOffset)
	return true
}

// Resume continues a paused session. It is Start restricted to Paused.
func (e *Engine) Resume() bool {
	if e.state != stopwatch.Paused {
		return e.ignore(stopwatch.CommandStart)
	}
	return e.Start()
}

// Pause freezes the session at the value at and tears down the cadence.
// It is ignored unless running.
func (e *Engine) Pause(at stopwatch.ElapsedSeconds) bool {
	if e.closed || e.state != stopwatch.Running {
		return e.ignore(stopwatch.CommandPause)
	}

	e.teardown()
	e.pauseOffset = at
	e.elapsed = at
	e.state = stopwatch.Paused

	e.logger.Debug("Paused", zap.Uint64("elapsed", uint64(at)))
	e.metrics.applied(stopwatch.CommandPause)
	return true
}

// Stop reports at as the final value of the session, then resets the engine
// to Idle at zero. It is ignored unless running or paused.
func (e *Engine) Stop(at stopwatch.ElapsedSeconds) bool {
	if e.closed || (e.state != stopwatch.Running && e.state != stopwatch.Paused) {
		return e.ignore(stopwatch.CommandStop)
	}

	e.teardown()
	e.stopSubs.emit(at)

	// Stopped is transient: the session is over and the engine lands in Idle.
	e.pauseOffset = 0
	e.sessions++
	e.state = stopwatch.Idle
	e.idleTaken = false

	e.logger.Debug("Stopped", zap.Uint64("elapsed", uint64(at)))
	e.metrics.applied(stopwatch.CommandStop)
	e.metrics.sessions.Inc()
	e.publish(0)
	return true
}

// Take reports at as a lap without touching the session. While Idle only
// the first take reports, with the value 0; later takes wait for a start.
func (e *Engine) Take(at stopwatch.ElapsedSeconds) bool {
	if e.closed || (e.state == stopwatch.Idle && e.idleTaken) {
		return e.ignore(stopwatch.CommandTake)
	}
	if e.state == stopwatch.Idle {
		e.idleTaken = true
	}
	e.lapSubs.emit(at)
	e.metrics.applied(stopwatch.CommandTake)
	return true
}

// Close tears down the cadence and drops every subscription. All commands
// are ignored afterwards.
func (e *Engine) Close() {
	e.teardown()
	e.closed = true
	e.elapsedSubs.clear()
	e.lapSubs.clear()
	e.stopSubs.clear()
}

// PrometheusCollectors returns the engine's metrics.
func (e *Engine) PrometheusCollectors() []prometheus.Collector {
	return e.metrics.PrometheusCollectors()
}

func (e *Engine) tick(gen uint64) {
	if gen != e.gen || e.state != stopwatch.Running {
		e.logger.Debug("Dropped tick from a stopped cadence")
		return
	}
	e.ticks++
	e.metrics.ticks.Inc()
	e.publish(e.pauseOffset + e.ticks)
}

func (e *Engine) publish(v stopwatch.ElapsedSeconds) {
	e.elapsed = v
	e.metrics.elapsed.Set(float64(v))
	e.elapsedSubs.emit(v)
}

// teardown stops the current cadence, if any, and invalidates its fires.
func (e *Engine) teardown() {
	e.gen++
	if e.cadence != nil {
		e.cadence.Stop()
		e.cadence = nil
	}
}

func (e *Engine) ignore(k stopwatch.CommandKind) bool {
	e.logger.Debug("Command ignored", zap.Stringer("command", k), zap.Stringer("state", e.state))
	e.metrics.ignored(k)
	return false
}

type subscription struct {
	id int
	fn func(stopwatch.ElapsedSeconds)
}

// subscriptions is an ordered set of observers.
type subscriptions struct {
	next int
	subs []subscription
}

func (s *subscriptions) add(fn func(stopwatch.ElapsedSeconds)) func() {
	s.next++
	id := s.next
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() { s.remove(id) }
}

func (s *subscriptions) remove(id int) {
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *subscriptions) emit(v stopwatch.ElapsedSeconds) {
	for _, sub := range s.subs {
		sub.fn(v)
	}
}

func (s *subscriptions) clear() {
	s.subs = nil
}
