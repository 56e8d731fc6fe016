package launcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/influxdata/stopwatch"
	"github.com/influxdata/stopwatch/logger"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// uiMode selects the interactive host.
type uiMode string

const (
	uiAuto uiMode = "auto"
	uiTUI  uiMode = "tui"
	uiLine uiMode = "line"
	uiNone uiMode = "none"
)

func (m *uiMode) String() string { return string(*m) }

func (m *uiMode) Set(s string) error {
	switch v := uiMode(strings.ToLower(s)); v {
	case uiAuto, uiTUI, uiLine, uiNone:
		*m = v
		return nil
	}
	return fmt.Errorf("unknown ui %q; expected auto, tui, line or none", s)
}

func (m *uiMode) Type() string { return "ui" }

// resolve picks tui for auto when both ends are terminals, line otherwise.
func (m uiMode) resolve(in io.Reader, out io.Writer) uiMode {
	if m != uiAuto {
		return m
	}
	if isTerminal(in) && isTerminal(out) {
		return uiTUI
	}
	return uiLine
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// listeners fans notifications out in order.
type listeners []stopwatch.Listener

func (ls listeners) LapRecorded(v stopwatch.ElapsedSeconds) {
	for _, l := range ls {
		l.LapRecorded(v)
	}
}

func (ls listeners) Stopped(v stopwatch.ElapsedSeconds) {
	for _, l := range ls {
		l.Stopped(v)
	}
}

func (ls listeners) HandAngles(a stopwatch.ClockHandAngles) {
	for _, l := range ls {
		l.HandAngles(a)
	}
}

type logListener struct {
	log *zap.Logger
}

func (l *logListener) LapRecorded(v stopwatch.ElapsedSeconds) {
	l.log.Info("Lap recorded", zap.Stringer("elapsed", v))
}

func (l *logListener) Stopped(v stopwatch.ElapsedSeconds) {
	l.log.Info("Stopwatch stopped", zap.Stringer("elapsed", v))
}

func (l *logListener) HandAngles(a stopwatch.ClockHandAngles) {
	l.log.Debug("Hands moved",
		zap.Float64("seconds_deg", a.SecondsDeg),
		zap.Float64("minutes_deg", a.MinutesDeg),
		zap.Float64("hours_deg", a.HoursDeg),
	)
}

// syncWriter serializes writes from the widget loop and the line host.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// lineListener prints laps and stops, one per line.
type lineListener struct {
	out io.Writer
}

func (l *lineListener) LapRecorded(v stopwatch.ElapsedSeconds) { fmt.Fprintf(l.out, "lap %s\n", v) }
func (l *lineListener) Stopped(v stopwatch.ElapsedSeconds)     { fmt.Fprintf(l.out, "stopped %s\n", v) }
func (l *lineListener) HandAngles(stopwatch.ClockHandAngles)   {}

// lineHost reads button names from in. Names on one line are pressed
// together. It returns at end of input or on a "quit" line. Failures are
// logged to the logger carried by the context.
type lineHost struct {
	in  io.Reader
	out io.Writer
	svc stopwatch.Service
}

func (h *lineHost) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		sc := bufio.NewScanner(h.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return errors.Wrap(err, "reading buttons")
		case line := <-lines:
			fields := strings.Fields(line)
			if len(fields) == 1 && strings.EqualFold(fields[0], "quit") {
				return nil
			}
			if len(fields) > 0 {
				h.press(ctx, fields)
			}
		}
	}
}

func (h *lineHost) press(ctx context.Context, names []string) {
	events := make([]stopwatch.Event, 0, len(names))
	for _, name := range names {
		e, err := stopwatch.ParseEvent(name)
		if err != nil {
			fmt.Fprintf(h.out, "error: %v\n", err)
			return
		}
		events = append(events, e)
	}

	if _, err := h.svc.Dispatch(ctx, events...); err != nil {
		logger.FromContext(ctx).Error("Failed to press buttons", zap.Strings("buttons", names), zap.Error(err))
		fmt.Fprintf(h.out, "error: %v\n", err)
		return
	}
	s, err := h.svc.Snapshot(ctx)
	if err != nil {
		fmt.Fprintf(h.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(h.out, "%s %s\n", s.State, s.Elapsed)
}
