package prom_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/influxdata/stopwatch/kit/prom"
	"github.com/influxdata/stopwatch/kit/prom/promtest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type counters struct {
	laps prometheus.Counter
}

func (c counters) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{c.laps}
}

func TestRegistry_HTTPHandler(t *testing.T) {
	reg := prom.NewRegistry(zaptest.NewLogger(t))
	c := counters{laps: prometheus.NewCounter(prometheus.CounterOpts{Name: "laps_total"})}
	reg.MustRegisterAll(c)
	c.laps.Add(3)

	srv := httptest.NewServer(reg.HTTPHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	mfs, err := promtest.FromHTTPResponse(resp)
	require.NoError(t, err)
	m := promtest.MustFindMetric(t, mfs, "laps_total", nil)
	assert.Equal(t, float64(3), m.GetCounter().GetValue())
}
