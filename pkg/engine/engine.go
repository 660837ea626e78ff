package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vango-dev/richtext/pkg/backend/tree"
	"github.com/vango-dev/richtext/pkg/backend/vnode"
	"github.com/vango-dev/richtext/pkg/middleware"
	"github.com/vango-dev/richtext/pkg/render"
	"github.com/vango-dev/richtext/pkg/richtext"
	"github.com/vango-dev/richtext/pkg/vdom"
)

// ErrUnsupportedFormat is returned by ParseFormat for unknown formats.
var ErrUnsupportedFormat = errors.New("engine: unsupported format")

// Format is an output format.
type Format string

const (
	FormatHTML   Format = "html"
	FormatJSON   Format = "json"
	FormatBinary Format = "binary"
)

// ParseFormat parses a format name. The empty string means HTML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatHTML, nil
	case FormatHTML, FormatJSON, FormatBinary:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatBinary:
		return "application/octet-stream"
	default:
		return "text/html; charset=utf-8"
	}
}

// Engine renders documents to HTML, a JSON tree or the binary tree encoding.
// It is safe for concurrent use.
type Engine struct {
	html *richtext.Renderer[*vdom.VNode]
	tree *richtext.Renderer[*tree.Node]

	plain  *render.Renderer
	pretty *render.Renderer

	metrics *middleware.Metrics
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	registry *vnode.Registry
	metrics  *middleware.Metrics
	logger   *slog.Logger
}

// WithRegistry sets the component registry of the HTML output.
func WithRegistry(reg *vnode.Registry) Option {
	return func(c *engineConfig) {
		c.registry = reg
	}
}

// WithMetrics records renders and placeholders on m.
func WithMetrics(m *middleware.Metrics) Option {
	return func(c *engineConfig) {
		c.metrics = m
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an Engine whose base configuration is built from base.
func New(base richtext.Options, opts ...Option) *Engine {
	cfg := &engineConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	ropts := []richtext.RendererOption{
		richtext.WithLogger(cfg.logger),
		richtext.WithPlaceholderHook(cfg.metrics.RecordPlaceholder),
	}
	return &Engine{
		html:    richtext.New[*vdom.VNode](vnode.NewBackend(cfg.registry), richtext.ConfigFrom[*vdom.VNode](base), ropts...),
		tree:    richtext.New[*tree.Node](tree.Backend{}, richtext.ConfigFrom[*tree.Node](base), ropts...),
		plain:   render.NewRenderer(render.RendererConfig{}),
		pretty:  render.NewRenderer(render.RendererConfig{Pretty: true}),
		metrics: cfg.metrics,
		logger:  cfg.logger,
	}
}

// Request is one render call.
type Request struct {
	Root richtext.Root

	// Options override the base configuration for this call.
	Options *richtext.Options

	Format Format
	Pretty bool
}

// Result is a rendered document.
type Result struct {
	Body        []byte
	ContentType string
	Stats       richtext.Stats
}

// Render renders req.Root in req.Format. The only document error is
// richtext.ErrInvalidRoot.
func (e *Engine) Render(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	format := req.Format
	if format == "" {
		format = FormatHTML
	}

	ctx, span := middleware.StartRender(ctx, string(format))
	start := time.Now()

	var (
		body  []byte
		stats richtext.Stats
		err   error
	)
	switch format {
	case FormatHTML:
		var out string
		out, stats, err = e.renderHTML(req.Root, req.Options, req.Pretty)
		body = []byte(out)
	case FormatJSON:
		var nodes []*tree.Node
		if nodes, stats, err = e.renderTree(req.Root, req.Options); err == nil {
			body, err = encodeJSON(nodes, req.Pretty)
		}
	case FormatBinary:
		var nodes []*tree.Node
		if nodes, stats, err = e.renderTree(req.Root, req.Options); err == nil {
			body, err = tree.Encode(nodes)
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	middleware.EndRender(span, stats, err)
	if err != nil {
		return Result{}, err
	}

	e.metrics.ObserveRender(string(format), stats, time.Since(start))
	e.logger.DebugContext(ctx, "rendered document",
		"format", format,
		"nodes", stats.Nodes,
		"placeholders", stats.Placeholders,
		"bytes", len(body),
	)
	return Result{Body: body, ContentType: format.ContentType(), Stats: stats}, nil
}

// HTML renders root to an HTML fragment.
func (e *Engine) HTML(root richtext.Root, opts *richtext.Options) (string, error) {
	out, _, err := e.renderHTML(root, opts, false)
	return out, err
}

// Nodes renders root to VNodes, for embedding in a page.
func (e *Engine) Nodes(root richtext.Root, opts *richtext.Options) ([]*vdom.VNode, error) {
	out, _, err := e.html.RenderWithStats(root, override[*vdom.VNode](opts))
	return out, err
}

// Page returns the HTML page renderer.
func (e *Engine) Page() *render.Renderer {
	return e.plain
}

func (e *Engine) renderHTML(root richtext.Root, opts *richtext.Options, pretty bool) (string, richtext.Stats, error) {
	nodes, stats, err := e.html.RenderWithStats(root, override[*vdom.VNode](opts))
	if err != nil {
		return "", stats, err
	}
	r := e.plain
	if pretty {
		r = e.pretty
	}
	out, err := r.RenderNodesToString(nodes)
	return out, stats, err
}

func (e *Engine) renderTree(root richtext.Root, opts *richtext.Options) ([]*tree.Node, richtext.Stats, error) {
	return e.tree.RenderWithStats(root, override[*tree.Node](opts))
}

func override[O any](opts *richtext.Options) *richtext.Config[O] {
	if opts == nil {
		return nil
	}
	cfg := richtext.ConfigFrom[O](*opts)
	return &cfg
}

func encodeJSON(nodes []*tree.Node, pretty bool) ([]byte, error) {
	if nodes == nil {
		nodes = []*tree.Node{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(nodes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
