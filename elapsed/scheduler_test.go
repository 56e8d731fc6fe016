package elapsed_test

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/influxdata/stopwatch/elapsed"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for fire")
	}
}

func requireQuiet(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal("unexpected fire")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestClockScheduler_FiresEveryInterval(t *testing.T) {
	clk := clock.NewMock()
	fired := make(chan struct{}, 8)
	s := elapsed.NewClockScheduler(clk, nil, zaptest.NewLogger(t))

	c := s.Schedule(elapsed.TickInterval, func() { fired <- struct{}{} })
	defer c.Stop()

	clk.Add(500 * time.Millisecond)
	requireQuiet(t, fired)

	clk.Add(500 * time.Millisecond)
	waitFor(t, fired)

	clk.Add(time.Second)
	waitFor(t, fired)
}

func TestClockScheduler_StopIsTotal(t *testing.T) {
	clk := clock.NewMock()
	fired := make(chan struct{}, 8)
	s := elapsed.NewClockScheduler(clk, nil, zaptest.NewLogger(t))

	c := s.Schedule(time.Second, func() { fired <- struct{}{} })
	clk.Add(time.Second)
	waitFor(t, fired)

	c.Stop()
	clk.Add(10 * time.Second)
	requireQuiet(t, fired)
}

func TestClockScheduler_PostsToLoop(t *testing.T) {
	clk := clock.NewMock()
	queue := make(chan func())
	post := func(ctx context.Context, fn func()) bool {
		select {
		case queue <- fn:
			return true
		case <-ctx.Done():
			return false
		}
	}
	s := elapsed.NewClockScheduler(clk, post, zaptest.NewLogger(t))

	ran := make(chan struct{}, 1)
	c := s.Schedule(time.Second, func() { ran <- struct{}{} })
	defer c.Stop()

	clk.Add(time.Second)
	select {
	case fn := <-queue:
		requireQuiet(t, ran)
		fn()
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for posted tick")
	}
	waitFor(t, ran)
}

func TestClockScheduler_StopUnblocksPendingPost(t *testing.T) {
	clk := clock.NewMock()
	posting := make(chan struct{}, 1)
	post := func(ctx context.Context, fn func()) bool {
		posting <- struct{}{}
		<-ctx.Done()
		return false
	}
	s := elapsed.NewClockScheduler(clk, post, zaptest.NewLogger(t))

	c := s.Schedule(time.Second, func() { t.Error("tick must not run") })
	clk.Add(time.Second)
	waitFor(t, posting)

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()
	waitFor(t, stopped)
}

func TestNewClockScheduler_Defaults(t *testing.T) {
	s := elapsed.NewClockScheduler(nil, nil, nil)
	require.NotNil(t, s.Clock)
}
