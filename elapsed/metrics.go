package elapsed

import (
	"github.com/influxdata/stopwatch"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "stopwatch"
	subsystem = "engine"
)

type engineMetrics struct {
	ticks    prometheus.Counter
	commands *prometheus.CounterVec
	sessions prometheus.Counter
	elapsed  prometheus.Gauge
}

func newEngineMetrics() *engineMetrics {
	return &engineMetrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ticks_total",
			Help:      "Total number of cadence ticks applied to the elapsed value",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commands_total",
			Help:      "Total number of commands received, by command and whether they were applied or ignored",
		}, []string{"command", "result"}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_total",
			Help:      "Total number of stopped sessions",
		}),
		elapsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "elapsed_seconds",
			Help:      "Current elapsed seconds of the session",
		}),
	}
}

func (m *engineMetrics) applied(k stopwatch.CommandKind) {
	m.commands.WithLabelValues(k.String(), "applied").Inc()
}

func (m *engineMetrics) ignored(k stopwatch.CommandKind) {
	m.commands.WithLabelValues(k.String(), "ignored").Inc()
}

// PrometheusCollectors satisfies the prom.PrometheusCollector interface.
func (m *engineMetrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ticks,
		m.commands,
		m.sessions,
		m.elapsed,
	}
}
