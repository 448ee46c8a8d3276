package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hearthhq/hearth/internal/activity"
	"github.com/hearthhq/hearth/internal/models"
)

// Collector exposes Prometheus metrics for inbound HTTP requests and for the
// per-source activity collector fan-out.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	fetchErrors     *prometheus.CounterVec
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hearth",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hearth",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hearth",
		Subsystem: "activity",
		Name:      "collector_fetch_duration_seconds",
		Help:      "Latency distribution for activity collector fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	fetchErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hearth",
		Subsystem: "activity",
		Name:      "collector_fetch_errors_total",
		Help:      "Total number of failed activity collector fetches.",
	}, []string{"source"})

	for _, c := range []prometheus.Collector{requestDuration, requestTotal, fetchDuration, fetchErrors} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:        registry,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		fetchDuration:   fetchDuration,
		fetchErrors:     fetchErrors,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// WrapCollector decorates an activity collector so every fetch is timed and
// failures counted, keeping the engine itself free of metrics concerns.
func (c *Collector) WrapCollector(inner activity.Collector) activity.Collector {
	return &instrumentedCollector{inner: inner, metrics: c}
}

type instrumentedCollector struct {
	inner   activity.Collector
	metrics *Collector
}

func (i *instrumentedCollector) Name() string              { return i.inner.Name() }
func (i *instrumentedCollector) Type() models.ActivityType { return i.inner.Type() }

func (i *instrumentedCollector) Collect(ctx context.Context, scope activity.Scope) ([]models.RawActivity, error) {
	start := time.Now()
	records, err := i.inner.Collect(ctx, scope)
	i.metrics.fetchDuration.WithLabelValues(i.inner.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		i.metrics.fetchErrors.WithLabelValues(i.inner.Name()).Inc()
	}
	return records, err
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
