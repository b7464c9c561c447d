package daemon

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics uses a registry per Service so tests can build several services.
type metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	eventsTotal     *prometheus.CounterVec
	eventsDropped   prometheus.Counter
	remoteCounts    *prometheus.CounterVec
	authFailures    prometheus.Counter
	taps            prometheus.Counter
	sessionsEnded   prometheus.Counter
}

func newMetrics(s *Service) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "japa_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "japa_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "japa_events_total",
				Help: "Events published to companions, by type",
			},
			[]string{"type"},
		),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "japa_events_dropped_total",
			Help: "Events a slow stream subscriber missed",
		}),
		remoteCounts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "japa_remote_counts_total",
				Help: "Remote count updates, by result",
			},
			[]string{"result"},
		),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "japa_auth_failures_total",
			Help: "Requests rejected for a missing or bad token",
		}),
		taps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "japa_taps_total",
			Help: "Taps received over the API",
		}),
		sessionsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "japa_sessions_ended_total",
			Help: "Sessions ended over the API",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.eventsTotal,
		m.eventsDropped,
		m.remoteCounts,
		m.authFailures,
		m.taps,
		m.sessionsEnded,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "japa_stream_subscribers",
			Help: "Connected SSE subscribers",
		}, func() float64 { return float64(s.subscriberCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "japa_lifetime_count",
			Help: "Lifetime chant count",
		}, func() float64 { return float64(s.tr.Widget().TotalLifetimeCount) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "japa_current_streak_days",
			Help: "Current streak in days",
		}, func() float64 { return float64(s.tr.Widget().CurrentStreak) }),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument records count and latency per route pattern.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		m.requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
