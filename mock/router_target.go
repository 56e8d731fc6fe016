package mock

import (
	"github.com/influxdata/stopwatch"
	"github.com/influxdata/stopwatch/router"
)

var _ router.Target = (*RouterTarget)(nil)

// RouterTarget is a mock implementation of router.Target.
type RouterTarget struct {
	StateFn   func() stopwatch.RunState
	ElapsedFn func() stopwatch.ElapsedSeconds
	ApplyFn   func(stopwatch.Command) bool
}

// NewRouterTarget returns an idle target at zero that applies every command.
func NewRouterTarget() *RouterTarget {
	return &RouterTarget{
		StateFn:   func() stopwatch.RunState { return stopwatch.Idle },
		ElapsedFn: func() stopwatch.ElapsedSeconds { return 0 },
		ApplyFn:   func(stopwatch.Command) bool { return true },
	}
}

func (t *RouterTarget) State() stopwatch.RunState {
	return t.StateFn()
}

func (t *RouterTarget) Elapsed() stopwatch.ElapsedSeconds {
	return t.ElapsedFn()
}

func (t *RouterTarget) Apply(c stopwatch.Command) bool {
	return t.ApplyFn(c)
}
