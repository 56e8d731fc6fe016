// Package widget hosts a stopwatch: it owns the event loop on which the
// engine, the router and the angle projector run, and pushes their output
// to a stopwatch.Listener.
package widget

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/influxdata/stopwatch"
	"github.com/influxdata/stopwatch/angle"
	"github.com/influxdata/stopwatch/elapsed"
	"github.com/influxdata/stopwatch/router"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var _ stopwatch.Service = (*Widget)(nil)

// Option configures a Widget.
type Option func(*Widget)

// WithClock sets the clock driving the tick cadence.
// If not set, the realtime clock is used.
func WithClock(clk clock.Clock) Option {
	return func(w *Widget) {
		w.clock = clk
	}
}

// WithLogger sets the logger for the widget and its components.
// If not set, the widget will use a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Widget) {
		w.logger = logger
	}
}

// Widget is one stopwatch instance. Its methods are safe for concurrent use;
// the components behind it only ever run on the widget's event loop.
//
// A Widget is mounted at most once.
type Widget struct {
	listener stopwatch.Listener
	clock    clock.Clock
	logger   *zap.Logger

	queue chan func()
	done  chan struct{} // closed when the loop exits

	mu        sync.Mutex
	mounted   bool
	unmounted bool
	cancel    context.CancelFunc

	// Owned by the event loop.
	engine    *elapsed.Engine
	router    *router.Router
	projector angle.Projector
	unsubs    []func()

	handMoves *prometheus.CounterVec
}

// New returns an unmounted widget that notifies l.
func New(l stopwatch.Listener, opts ...Option) *Widget {
	w := &Widget{
		listener: l,
		logger:   zap.NewNop(),
		queue:    make(chan func()),
		done:     make(chan struct{}),
		handMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stopwatch",
			Subsystem: "widget",
			Name:      "hand_moves_total",
			Help:      "Total number of clock hand movements, by hand",
		}, []string{"hand"}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.clock == nil {
		w.clock = clock.New()
	}
	w.logger = w.logger.With(zap.String("svc", "stopwatch/widget"))

	sched := elapsed.NewClockScheduler(w.clock, w.post, w.logger)
	w.engine = elapsed.New(sched, elapsed.WithLogger(w.logger))
	w.router = router.New(w.engine, router.WithLogger(w.logger))
	return w
}

// Mount starts the event loop, wires the engine's output to the listener
// and puts the hands at the base orientation. Cancelling ctx stops the loop.
func (w *Widget) Mount(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mounted {
		w.logger.Error("Mount called twice", zap.Error(stopwatch.ErrAlreadyMounted))
		return stopwatch.ErrAlreadyMounted
	}
	if w.unmounted {
		w.logger.Error("Mount called after unmount", zap.Error(stopwatch.ErrUnmounted))
		return stopwatch.ErrUnmounted
	}

	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)

	err := w.do(ctx, func() {
		w.unsubs = append(w.unsubs,
			w.engine.Subscribe(w.observe),
			w.engine.OnLap(w.listener.LapRecorded),
			w.engine.OnStop(w.listener.Stopped),
		)
		w.listener.HandAngles(w.projector.Reset())
	})
	if err != nil {
		w.unmounted = true
		w.cancel()
		<-w.done
		return err
	}

	w.mounted = true
	w.logger.Info("Mounted")
	return nil
}

// Unmount releases every subscription, cancels the tick cadence and stops
// the event loop. No notification is delivered once Unmount returns.
func (w *Widget) Unmount() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.mounted {
		w.logger.Error("Unmount called on a widget that is not mounted", zap.Error(stopwatch.ErrNotMounted))
		return stopwatch.ErrNotMounted
	}
	w.mounted, w.unmounted = false, true

	teardown := func() {
		for _, unsubscribe := range w.unsubs {
			unsubscribe()
		}
		w.unsubs = nil
		w.engine.Close()
	}
	if err := w.do(context.Background(), teardown); err != nil {
		// The loop is gone already; nothing else can touch the engine.
		<-w.done
		teardown()
	}

	w.cancel()
	<-w.done
	w.logger.Info("Unmounted")
	return nil
}

// Dispatch delivers events activated together and returns the commands that
// were applied. Events in one call form a single joint update of the take
// and pause buttons.
//
// Dispatch must not be called from a Listener.
func (w *Widget) Dispatch(ctx context.Context, events ...stopwatch.Event) ([]stopwatch.Command, error) {
	if err := w.checkMounted("Dispatch"); err != nil {
		return nil, err
	}

	var applied []stopwatch.Command
	if err := w.do(ctx, func() { applied = w.router.Press(events...) }); err != nil {
		return nil, err
	}
	return applied, nil
}

// Snapshot reads the current state from the event loop.
func (w *Widget) Snapshot(ctx context.Context) (stopwatch.Snapshot, error) {
	if err := w.checkMounted("Snapshot"); err != nil {
		return stopwatch.Snapshot{}, err
	}

	var s stopwatch.Snapshot
	err := w.do(ctx, func() {
		s = stopwatch.Snapshot{
			State:       w.engine.State(),
			Elapsed:     w.engine.Elapsed(),
			PauseOffset: w.engine.PauseOffset(),
			Sessions:    w.engine.Sessions(),
			Angles:      w.projector.Angles(),
		}
	})
	return s, err
}

// PrometheusCollectors returns the metrics of the widget and its engine.
func (w *Widget) PrometheusCollectors() []prometheus.Collector {
	return append(w.engine.PrometheusCollectors(), w.handMoves)
}

func (w *Widget) checkMounted(op string) error {
	w.mu.Lock()
	mounted := w.mounted
	w.mu.Unlock()

	if !mounted {
		w.logger.Error("Widget used before Mount or after Unmount",
			zap.String("op", op),
			zap.Error(stopwatch.ErrNotMounted),
		)
		return stopwatch.ErrNotMounted
	}
	return nil
}

// observe projects an elapsed value. It runs in the same loop turn as the
// engine publishing it.
func (w *Widget) observe(v stopwatch.ElapsedSeconds) {
	a, c := w.projector.Update(v)
	for _, h := range hands {
		if c.Has(h.mask) {
			w.handMoves.WithLabelValues(h.name).Inc()
		}
	}
	w.listener.HandAngles(a)
}

var hands = []struct {
	mask angle.Changed
	name string
}{
	{angle.Seconds, "seconds"},
	{angle.Minutes, "minutes"},
	{angle.Hours, "hours"},
}

func (w *Widget) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case fn := <-w.queue:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// post hands fn to the loop. It is the scheduler's PostFunc.
func (w *Widget) post(ctx context.Context, fn func()) bool {
	select {
	case w.queue <- fn:
		return true
	case <-ctx.Done():
		return false
	case <-w.done:
		return false
	}
}

// do runs fn on the loop and waits for it to finish.
func (w *Widget) do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	if !w.post(ctx, func() {
		defer close(ran)
		fn()
	}) {
		if err := ctx.Err(); err != nil {
			return err
		}
		return stopwatch.ErrNotMounted
	}
	<-ran
	return nil
}
