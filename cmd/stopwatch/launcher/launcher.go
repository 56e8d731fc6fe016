// Package launcher assembles the stopwatch process: logging, metrics, the
// widget, the HTTP control API and the interactive host.
package launcher

import (
	"context"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/influxdata/stopwatch"
	"github.com/influxdata/stopwatch/cmd/stopwatch/internal/tui"
	"github.com/influxdata/stopwatch/http"
	"github.com/influxdata/stopwatch/kit/cli"
	"github.com/influxdata/stopwatch/kit/prom"
	"github.com/influxdata/stopwatch/logger"
	"github.com/influxdata/stopwatch/widget"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// Launcher represents the main program execution.
type Launcher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Clock drives the tick cadence. Nil means the wall clock.
	Clock clock.Clock

	logLevel        zapcore.Level
	logFormat       string
	httpBindAddress string
	ui              uiMode
	shutdownTimeout time.Duration

	log         *zap.Logger
	reg         *prom.Registry
	widget      *widget.Widget
	tuiListener *tui.Listener
	lineOut     io.Writer

	httpListener net.Listener
	httpServer   *nethttp.Server

	ready chan struct{}
}

// NewLauncher returns a new instance of Launcher connected to standard in/out/err.
func NewLauncher() *Launcher {
	return &Launcher{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		ui:     uiAuto,
		ready:  make(chan struct{}),
	}
}

// NewCommand returns the root command of the stopwatch process. The process
// stops when ctx is done.
func NewCommand(ctx context.Context, v *viper.Viper) (*cobra.Command, error) {
	return NewLauncher().Command(ctx, v)
}

// Command returns a command that runs l with options resolved through v.
func (l *Launcher) Command(ctx context.Context, v *viper.Viper) (*cobra.Command, error) {
	prog := &cli.Program{
		Name: "stopwatch",
		Run:  func() error { return l.run(ctx) },
		Opts: l.options(),
	}
	cmd, err := cli.NewCommand(v, prog)
	if err != nil {
		return nil, err
	}
	cmd.Short = "A stopwatch with lap times and clock hands"
	cmd.SetOut(l.Stdout)
	cmd.SetErr(l.Stderr)
	return cmd, nil
}

func (l *Launcher) options() []cli.Opt {
	return []cli.Opt{
		{
			DestP:   &l.logLevel,
			Flag:    "log-level",
			Default: zapcore.InfoLevel,
			Desc:    "supported log levels are debug, info, warn and error",
		},
		{
			DestP:   &l.logFormat,
			Flag:    "log-format",
			Default: "auto",
			Desc:    "log encoding: auto, logfmt, json or console",
		},
		{
			DestP:   &l.httpBindAddress,
			Flag:    "http-bind-address",
			Default: "127.0.0.1:8089",
			Desc:    "bind address for the control API; empty disables it",
		},
		{
			DestP:   &l.ui,
			Flag:    "ui",
			Default: string(uiAuto),
			Desc:    "interactive host: auto, tui, line or none",
		},
		{
			DestP:   &l.shutdownTimeout,
			Flag:    "shutdown-timeout",
			Default: 5 * time.Second,
			Desc:    "how long to wait for the HTTP server to drain on shutdown",
		},
	}
}

// Ready is closed once the HTTP listener is bound and the host is starting.
func (l *Launcher) Ready() <-chan struct{} {
	return l.ready
}

// URL returns the URL to connect to the HTTP server. It is empty when HTTP
// is disabled or before Ready is closed.
func (l *Launcher) URL() string {
	if l.httpListener == nil {
		return ""
	}
	return "http://" + l.httpListener.Addr().String()
}

// Registry returns the prometheus metrics registry.
func (l *Launcher) Registry() *prom.Registry {
	return l.reg
}

func (l *Launcher) run(ctx context.Context) (err error) {
	logconf := logger.Config{Format: l.logFormat, Level: l.logLevel}
	l.log, err = logconf.New(l.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = l.log.Sync() }()

	mode := l.ui.resolve(l.Stdin, l.Stdout)
	l.log.Info("Starting stopwatch", zap.String("ui", string(mode)))
	l.log.Debug("Resolved options", zap.Stringer("options", l))

	if err := l.open(mode); err != nil {
		return err
	}

	ctx = logger.NewContextWithLogger(ctx, l.log)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if l.httpServer != nil {
		g.Go(func() error {
			l.log.Info("Listening", zap.String("transport", "http"), zap.String("addr", l.httpListener.Addr().String()))
			if err := l.httpServer.Serve(l.httpListener); err != nil && err != nethttp.ErrServerClosed {
				return errors.Wrap(err, "serving http")
			}
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		return l.host(ctx, mode)
	})
	close(l.ready)

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()
	// Serve only returns once the server is shut down, and the host must be
	// gone before the widget is unmounted.
	httpErr := l.shutdownHTTP(shutdownCtx)
	return multierr.Combine(g.Wait(), httpErr, l.unmount())
}

// open builds the widget and binds the HTTP listener.
func (l *Launcher) open(mode uiMode) error {
	l.reg = prom.NewRegistry(l.log.With(zap.String("service", "prom_registry")))
	l.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ls := listeners{&logListener{log: l.log.With(zap.String("service", "listener"))}}
	switch mode {
	case uiTUI:
		l.tuiListener = &tui.Listener{}
		ls = append(ls, l.tuiListener)
	case uiLine:
		l.lineOut = &syncWriter{w: l.Stdout}
		ls = append(ls, &lineListener{out: l.lineOut})
	}

	opts := []widget.Option{widget.WithLogger(l.log)}
	if l.Clock != nil {
		opts = append(opts, widget.WithClock(l.Clock))
	}
	l.widget = widget.New(ls, opts...)
	l.reg.MustRegisterAll(l.widget)

	if l.httpBindAddress == "" {
		l.log.Info("HTTP control API disabled")
		return nil
	}

	httpLogger := l.log.With(zap.String("service", "http"))
	h := http.NewHandler(
		http.NewStopwatchHandler(httpLogger, l.widget),
		http.WithLog(httpLogger),
		http.WithMetrics(l.reg.HTTPHandler()),
	)
	l.reg.MustRegisterAll(h)

	ln, err := net.Listen("tcp", l.httpBindAddress)
	if err != nil {
		l.log.Error("Failed to set up TCP listener", zap.String("addr", l.httpBindAddress), zap.Error(err))
		return errors.Wrapf(err, "listening on %s", l.httpBindAddress)
	}
	l.httpListener = ln
	l.httpServer = &nethttp.Server{
		Handler:  h,
		ErrorLog: zap.NewStdLog(httpLogger),
	}
	return nil
}

// host mounts the widget and runs the interactive host until it finishes
// or ctx is done.
func (l *Launcher) host(ctx context.Context, mode uiMode) error {
	if mode == uiTUI {
		return l.runTUI(ctx)
	}

	if err := l.widget.Mount(ctx); err != nil {
		return errors.Wrap(err, "mounting stopwatch")
	}
	if mode == uiLine {
		h := &lineHost{in: l.Stdin, out: l.lineOut, svc: l.widget}
		return h.Run(ctx)
	}
	<-ctx.Done()
	return nil
}

func (l *Launcher) runTUI(ctx context.Context) error {
	p := tea.NewProgram(tui.New(ctx, l.widget),
		tea.WithContext(ctx),
		tea.WithInput(l.Stdin),
		tea.WithOutput(l.Stdout),
	)
	l.tuiListener.Sender = p

	// Notifications block until the program loop reads them, so the widget
	// is mounted once the program runs.
	mounted := make(chan error, 1)
	go func() {
		err := l.widget.Mount(ctx)
		if err != nil {
			p.Quit()
		}
		mounted <- err
	}()

	_, err := p.Run()
	if mountErr := <-mounted; mountErr != nil {
		return errors.Wrap(mountErr, "mounting stopwatch")
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return errors.Wrap(err, "running terminal ui")
}

// Shutdown stops the HTTP server and unmounts the widget.
func (l *Launcher) Shutdown(ctx context.Context) error {
	return multierr.Append(l.shutdownHTTP(ctx), l.unmount())
}

func (l *Launcher) shutdownHTTP(ctx context.Context) error {
	if l.httpServer == nil {
		return nil
	}
	l.log.Info("Stopping", zap.String("service", "http"))
	if err := l.httpServer.Shutdown(ctx); err != nil {
		l.log.Error("Failed to close HTTP server", zap.Error(err))
		return errors.Wrap(err, "closing http server")
	}
	return nil
}

func (l *Launcher) unmount() error {
	if l.widget == nil {
		return nil
	}
	l.log.Info("Stopping", zap.String("service", "widget"))
	if err := l.widget.Unmount(); err != nil && err != stopwatch.ErrNotMounted {
		return errors.Wrap(err, "unmounting stopwatch")
	}
	return nil
}

// String describes the resolved options.
func (l *Launcher) String() string {
	return fmt.Sprintf("stopwatch{ui=%s http=%q log-level=%s log-format=%s}",
		l.ui, l.httpBindAddress, l.logLevel, l.logFormat)
}
