// Package http serves the stopwatch control API.
package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi"
	kithttp "github.com/influxdata/stopwatch/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// MetricsPath exposes the prometheus metrics over /metrics.
	MetricsPath = "/metrics"
	// ReadyPath exposes the readiness of the service over /ready.
	ReadyPath = "/ready"
	// HealthPath exposes the health of the service over /health.
	HealthPath = "/health"
	// APIPrefix is where the stopwatch routes are mounted.
	APIPrefix = "/api/v1"
)

// Handler is the root handler of the control API.
type Handler struct {
	chi.Router

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// HandlerOptFn configures a Handler.
type HandlerOptFn func(*handlerOpts)

type handlerOpts struct {
	log     *zap.Logger
	metrics http.Handler
}

// WithLog sets the logger of the handler.
func WithLog(log *zap.Logger) HandlerOptFn {
	return func(o *handlerOpts) {
		o.log = log
	}
}

// WithMetrics serves h on MetricsPath.
func WithMetrics(h http.Handler) HandlerOptFn {
	return func(o *handlerOpts) {
		o.metrics = h
	}
}

// NewHandler returns the root handler with sw mounted under APIPrefix.
func NewHandler(sw *StopwatchHandler, opts ...HandlerOptFn) *Handler {
	opt := handlerOpts{log: zap.NewNop()}
	for _, o := range opts {
		o(&opt)
	}

	labels := []string{"handler", "method", "path", "status", "response_code", "user_agent"}
	h := &Handler{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stopwatch",
			Subsystem: "http",
			Name:      "api_requests_total",
			Help:      "Number of API requests served",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stopwatch",
			Subsystem: "http",
			Name:      "api_request_duration_seconds",
			Help:      "Time taken to serve API requests",
		}, labels),
	}

	r := chi.NewRouter()
	r.Use(
		kithttp.SkipOptions,
		kithttp.SetCORS,
		kithttp.Metrics("api", h.requests, h.duration),
		kithttp.Logging(opt.log.With(zap.String("handler", "api"))),
	)
	r.Get(ReadyPath, ReadyHandler)
	r.Get(HealthPath, HealthHandler)
	if opt.metrics != nil {
		r.Handle(MetricsPath, opt.metrics)
	}
	r.Mount(APIPrefix, sw)
	h.Router = r
	return h
}

// PrometheusCollectors returns the request metrics of the handler.
func (h *Handler) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{h.requests, h.duration}
}

// ReadyHandler is a default readiness handler. The default behavior is always ready.
func ReadyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"status": "ready"}`)
}

// HealthHandler reports that the process is serving.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"name":"stopwatch","status":"pass"}`)
}
