// Package prom provides a wrapper around a prometheus metrics registry
// so that all services are unified in how they expose prometheus metrics.
package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// PrometheusCollector is the interface for a type to expose prometheus metrics.
// This interface is provided as a convention, so that you can optionally check
// if a type implements it and then pass its collectors to (*Registry).MustRegister.
type PrometheusCollector interface {
	// PrometheusCollectors returns a slice of prometheus collectors
	// containing metrics for the underlying instance.
	PrometheusCollectors() []prometheus.Collector
}

// Registry embeds a prometheus registry and adds a couple convenience methods.
type Registry struct {
	*prometheus.Registry

	log *zap.Logger
}

// NewRegistry returns a new registry.
func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		Registry: prometheus.NewRegistry(),
		log:      log,
	}
}

// MustRegisterAll registers the collectors of every c.
func (r *Registry) MustRegisterAll(cs ...PrometheusCollector) {
	for _, c := range cs {
		r.MustRegister(c.PrometheusCollectors()...)
	}
}

// HTTPHandler returns an http.Handler for the registry,
// so that the /metrics HTTP handler is uniformly configured across all apps in the platform.
func (r *Registry) HTTPHandler() http.Handler {
	opts := promhttp.HandlerOpts{
		ErrorLog:      promLogger{r: r},
		ErrorHandling: promhttp.ContinueOnError,
	}
	return promhttp.HandlerFor(r.Registry, opts)
}

// promLogger satisfies the promhttp.Logger interface with the registry's logger.
type promLogger struct {
	r *Registry
}

var _ promhttp.Logger = (*promLogger)(nil)

// Println implements promhttp.Logger.
func (pl promLogger) Println(v ...interface{}) {
	pl.r.log.Sugar().Info(v...)
}
