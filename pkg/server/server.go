package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/richtext/internal/config"
	"github.com/vango-dev/richtext/pkg/backend/vnode"
	"github.com/vango-dev/richtext/pkg/engine"
	"github.com/vango-dev/richtext/pkg/middleware"
	"github.com/vango-dev/richtext/pkg/preview"
)

// WebSocketPath is where preview clients subscribe.
const WebSocketPath = "/preview/ws"

// Server is the richtext HTTP server.
type Server struct {
	config  *config.Config
	engine  *engine.Engine
	hub     *preview.Hub
	metrics *middleware.Metrics
	gather  prometheus.Gatherer
	logger  *slog.Logger
	router  chi.Router

	// Last rendered preview per story, shown when a preview page loads.
	mu      sync.RWMutex
	stories map[string]string

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	components *vnode.Registry
	registry   *prometheus.Registry
}

// WithLogger sets the server logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithComponents sets the component registry used for HTML output.
func WithComponents(reg *vnode.Registry) Option {
	return func(o *options) {
		o.components = reg
	}
}

// WithPrometheusRegistry sets the registry metrics are registered with and
// served from. Default: a new registry with the Go and process collectors.
func WithPrometheusRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// New creates a server for cfg. A nil cfg uses config.New().
func New(cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.New()
	}
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger.With("component", "server")

	s := &Server{
		config:  cfg,
		logger:  logger,
		stories: make(map[string]string),
	}

	if cfg.Metrics.Enabled {
		reg := o.registry
		if reg == nil {
			reg = prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}
		s.metrics = middleware.NewMetrics(
			middleware.WithRegistry(reg),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		)
		s.gather = reg
	}

	s.engine = engine.New(cfg.Richtext,
		engine.WithRegistry(o.components),
		engine.WithMetrics(s.metrics),
		engine.WithLogger(logger),
	)
	s.hub = preview.NewHub(
		preview.WithLogger(logger),
		preview.WithAllowedOrigins(cfg.Bridge.AllowedOrigins...),
		preview.WithSubscriberHook(s.metrics.PreviewSubscribed),
	)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Prometheus(s.metrics))
	if s.config.Tracing.Enabled {
		r.Use(middleware.OpenTelemetry(
			middleware.WithTracerName(s.config.Tracing.ServiceName),
			middleware.WithRequestFilter(func(r *http.Request) bool {
				return r.URL.Path != "/healthz" && r.URL.Path != s.config.Metrics.Path
			}),
		))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Post("/api/render", s.handleRender)
	r.Get(s.config.Server.EditorPath, s.handleEditor)

	if s.config.Bridge.Enabled {
		r.Post("/api/preview/{story}", s.handlePreviewPush)
		r.Get(WebSocketPath, s.hub.HandleWebSocket)
		r.Get("/preview/{story}", s.handlePreviewPage)
	}

	if s.gather != nil {
		r.Handle(s.config.Metrics.Path, promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Engine returns the render engine.
func (s *Server) Engine() *engine.Engine {
	return s.engine
}

// Hub returns the live preview hub.
func (s *Server) Hub() *preview.Hub {
	return s.hub
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.config.ReadTimeout(),
		WriteTimeout:      s.config.WriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			"address", s.config.Server.Addr,
			"editor", s.config.Server.EditorPath,
			"bridge", s.config.Bridge.Enabled,
		)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes preview subscriptions and gracefully stops the HTTP
// server within the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout())
	defer cancel()

	s.hub.Close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
