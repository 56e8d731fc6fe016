package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/influxdata/stopwatch/kit/prom/promtest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCors(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("nextHandler"))
	})

	tests := []struct {
		name            string
		method          string
		origin          string
		expectedStatus  int
		expectedHeaders map[string]string
	}{
		{
			name:           "OPTIONS without Origin",
			method:         http.MethodOptions,
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "OPTIONS with Origin",
			method:         http.MethodOptions,
			origin:         "http://myapp.com",
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "GET with Origin",
			method:         http.MethodGet,
			origin:         "http://anotherapp.com",
			expectedStatus: http.StatusOK,
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin": "http://anotherapp.com",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svr := SkipOptions(SetCORS(nextHandler))

			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			svr.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for k, v := range tt.expectedHeaders {
				assert.Equal(t, v, w.Header().Get(k))
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	labels := []string{"handler", "method", "path", "status", "response_code", "user_agent"}
	reqs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "requests_total"}, labels)
	durs := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "request_duration_seconds"}, labels)
	reg := prometheus.NewRegistry()
	reg.MustRegister(reqs, durs)

	r := chi.NewRouter()
	r.Use(Metrics("api", reqs, durs), Logging(zaptest.NewLogger(t)))
	r.Post("/api/v1/buttons/{button}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, p := range []string{"/api/v1/buttons/start", "/api/v1/buttons/stop", "/missing"} {
		method := http.MethodPost
		if p == "/missing" {
			method = http.MethodGet
		}
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, p, nil))
	}

	got := promtest.CounterValue(t, reg, "requests_total", map[string]string{
		"handler":       "api",
		"method":        http.MethodPost,
		"path":          "/api/v1/buttons/{button}",
		"status":        "2XX",
		"response_code": "202",
		"user_agent":    "unknown",
	})
	assert.Equal(t, float64(2), got)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "requests_total" {
			assert.Len(t, mf.GetMetric(), 1, "4XX responses are not reported")
		}
	}
}

func TestStatusResponseWriter(t *testing.T) {
	w := NewStatusResponseWriter(httptest.NewRecorder())
	assert.Equal(t, http.StatusOK, w.Code())
	assert.Equal(t, "2XX", w.StatusCodeClass())

	w.WriteHeader(http.StatusServiceUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code())
	assert.Equal(t, "5XX", w.StatusCodeClass())
}

func TestUserAgent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "unknown", UserAgent(req))

	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/70.0.3538.77 Safari/537.36")
	assert.Equal(t, "Chrome", UserAgent(req))
}
