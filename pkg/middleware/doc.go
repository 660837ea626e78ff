// Package middleware provides the net/http observability middleware of the
// richtext server.
//
// # Prometheus Metrics
//
// NewMetrics registers request, render, placeholder, preview and sink
// collectors. Prometheus wraps a handler and records request count and
// duration per chi route pattern:
//
//	m := middleware.NewMetrics(middleware.WithNamespace("cms"))
//	r.Use(middleware.Prometheus(m))
//	r.Handle("/metrics", promhttp.Handler())
//
// The render path records into the same collectors with ObserveRender and
// RecordPlaceholder. A nil *Metrics records nothing, so callers need no
// enabled checks.
//
// # OpenTelemetry
//
// OpenTelemetry starts a server span per request, continuing any trace
// carried in the request headers. Render handlers add a child span:
//
//	ctx, span := middleware.StartRender(r.Context(), "html")
//	nodes, stats, err := renderer.RenderWithStats(root, override)
//	middleware.EndRender(span, stats, err)
package middleware
