package elapsed

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// TickInterval is the resolution of the tick cadence. The engine does not
// promise anything finer than one second.
const TickInterval = time.Second

// Cadence is a running periodic task.
type Cadence interface {
	// Stop cancels the cadence. No fire is delivered once Stop returns.
	Stop()
}

// Scheduler starts periodic tasks for the engine.
type Scheduler interface {
	// Schedule calls fn once per interval until the returned Cadence is
	// stopped. The first call happens one interval after Schedule.
	Schedule(interval time.Duration, fn func()) Cadence
}

// PostFunc hands fn to the owner's event loop. It reports false if the loop
// did not accept fn before ctx was done.
type PostFunc func(ctx context.Context, fn func()) bool

// ClockScheduler schedules cadences on a clock.Clock. Each fire is handed to
// Post so it runs on the caller's event loop; with a nil Post, fires run on
// the ticker goroutine and the caller must serialize access itself.
type ClockScheduler struct {
	Clock  clock.Clock
	Post   PostFunc
	logger *zap.Logger
}

// NewClockScheduler returns a scheduler driven by clk. A nil clk uses the
// realtime clock.
func NewClockScheduler(clk clock.Clock, post PostFunc, logger *zap.Logger) *ClockScheduler {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClockScheduler{
		Clock:  clk,
		Post:   post,
		logger: logger.With(zap.String("svc", "stopwatch/scheduler")),
	}
}

// Schedule implements Scheduler. The ticker is created before Schedule
// returns, so a mock clock advanced afterwards always reaches it.
func (s *ClockScheduler) Schedule(interval time.Duration, fn func()) Cadence {
	ctx, cancel := context.WithCancel(context.Background())
	c := &clockCadence{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	ticker := s.Clock.Ticker(interval)

	go func() {
		defer close(c.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				if s.Post == nil {
					fn()
					continue
				}
				if !s.Post(ctx, fn) {
					s.logger.Debug("Tick not delivered; loop closed or cadence stopped")
					return
				}
			}
		}
	}()

	return c
}

type clockCadence struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the ticker goroutine and waits for it to exit.
func (c *clockCadence) Stop() {
	c.cancel()
	<-c.done
}
