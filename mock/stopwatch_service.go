package mock

import (
	"context"

	"github.com/influxdata/stopwatch"
)

var _ stopwatch.Service = (*StopwatchService)(nil)

// StopwatchService is a mock implementation of stopwatch.Service.
type StopwatchService struct {
	DispatchFn func(context.Context, ...stopwatch.Event) ([]stopwatch.Command, error)
	SnapshotFn func(context.Context) (stopwatch.Snapshot, error)
}

// NewStopwatchService returns a service that applies nothing and reports an
// idle stopwatch.
func NewStopwatchService() *StopwatchService {
	return &StopwatchService{
		DispatchFn: func(context.Context, ...stopwatch.Event) ([]stopwatch.Command, error) {
			return nil, nil
		},
		SnapshotFn: func(context.Context) (stopwatch.Snapshot, error) {
			return stopwatch.Snapshot{}, nil
		},
	}
}

func (s *StopwatchService) Dispatch(ctx context.Context, events ...stopwatch.Event) ([]stopwatch.Command, error) {
	return s.DispatchFn(ctx, events...)
}

func (s *StopwatchService) Snapshot(ctx context.Context) (stopwatch.Snapshot, error) {
	return s.SnapshotFn(ctx)
}
