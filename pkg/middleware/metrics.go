package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/richtext/pkg/richtext"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "richtext").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "richtext",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors of a richtext server. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	rendersTotal       *prometheus.CounterVec
	renderDuration     prometheus.Histogram
	renderNodes        prometheus.Histogram
	placeholders       *prometheus.CounterVec
	previewSubscribers prometheus.Gauge
	previewBroadcasts  prometheus.Counter
	sinkWrites         *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
//
// Metrics collected:
//   - richtext_http_requests_total: requests by route, method and status class
//   - richtext_http_request_duration_seconds: request duration by route
//   - richtext_renders_total: documents rendered by output format
//   - richtext_render_duration_seconds: render duration
//   - richtext_render_nodes: document size in nodes
//   - richtext_placeholders_total: unresolved nodes by placeholder kind
//   - richtext_preview_subscribers: open preview websockets
//   - richtext_preview_broadcasts_total: preview documents pushed
//   - richtext_sink_writes_total: sink writes by sink and status
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of documents rendered",
			ConstLabels: config.ConstLabels,
		}, []string{"format"}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Document render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		renderNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_nodes",
			Help:        "Number of nodes per rendered document",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 4, 8), // 1 to 16384
		}),

		placeholders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "placeholders_total",
			Help:        "Total number of unresolved nodes rendered as placeholders",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		previewSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "preview_subscribers",
			Help:        "Number of open preview websockets",
			ConstLabels: config.ConstLabels,
		}),

		previewBroadcasts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "preview_broadcasts_total",
			Help:        "Total number of preview documents pushed to subscribers",
			ConstLabels: config.ConstLabels,
		}),

		sinkWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sink_writes_total",
			Help:        "Total number of sink writes",
			ConstLabels: config.ConstLabels,
		}, []string{"sink", "status"}),
	}
}

// Prometheus returns middleware recording request count and duration.
// Routes are labelled with their chi pattern to keep cardinality bounded.
//
//	m := middleware.NewMetrics()
//	r := chi.NewRouter()
//	r.Use(middleware.Prometheus(m))
//	r.Handle("/metrics", promhttp.Handler())
func Prometheus(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			m.requestsTotal.WithLabelValues(route, r.Method, statusClass(ww.Status())).Inc()
		})
	}
}

// ObserveRender records one rendered document.
func (m *Metrics) ObserveRender(format string, stats richtext.Stats, d time.Duration) {
	if m == nil {
		return
	}
	m.rendersTotal.WithLabelValues(format).Inc()
	m.renderDuration.Observe(d.Seconds())
	m.renderNodes.Observe(float64(stats.Nodes))
}

// RecordPlaceholder counts an unresolved node. It has the signature of a
// richtext placeholder hook.
func (m *Metrics) RecordPlaceholder(p richtext.Placeholder) {
	if m == nil {
		return
	}
	m.placeholders.WithLabelValues(p.Kind.String()).Inc()
}

// PreviewSubscribed adjusts the open preview websocket gauge by delta.
func (m *Metrics) PreviewSubscribed(delta int) {
	if m == nil {
		return
	}
	m.previewSubscribers.Add(float64(delta))
}

// RecordBroadcast counts a preview document push.
func (m *Metrics) RecordBroadcast() {
	if m == nil {
		return
	}
	m.previewBroadcasts.Inc()
}

// RecordSinkWrite counts a sink write.
func (m *Metrics) RecordSinkWrite(sink string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.sinkWrites.WithLabelValues(sink, status).Inc()
}

// routePattern returns the matched chi route, or "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusClass maps a status code to "2xx", "4xx" and so on.
func statusClass(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	return strconv.Itoa(code/100) + "xx"
}
