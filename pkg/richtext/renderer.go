package richtext

import (
	"log/slog"
	"strconv"
	"sync"
)

// Renderer turns documents into output nodes of type O.
// A Renderer is safe for concurrent use.
type Renderer[O any] struct {
	backend Backend[O]
	base    Config[O]

	logger        *slog.Logger
	onPlaceholder func(Placeholder)

	once     sync.Once
	baseline Config[O]
}

// RendererOption configures a Renderer.
type RendererOption func(*rendererConfig)

type rendererConfig struct {
	logger        *slog.Logger
	onPlaceholder func(Placeholder)
}

// WithLogger sets the logger used to report unresolved nodes.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) RendererOption {
	return func(c *rendererConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPlaceholderHook registers fn to be called for every placeholder the
// renderer emits. The hook runs synchronously on the rendering goroutine.
func WithPlaceholderHook(fn func(Placeholder)) RendererOption {
	return func(c *rendererConfig) {
		c.onPlaceholder = fn
	}
}

// New creates a renderer with the given base configuration. The base is
// copied; later changes to the caller's maps do not affect the renderer.
// New panics if backend is nil.
func New[O any](backend Backend[O], base Config[O], opts ...RendererOption) *Renderer[O] {
	if backend == nil {
		panic("richtext: nil backend")
	}

	cfg := &rendererConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Renderer[O]{
		backend:       backend,
		base:          Config[O]{}.Merge(base),
		logger:        cfg.logger,
		onPlaceholder: cfg.onPlaceholder,
	}
}

// Backend returns the backend the renderer builds output with.
func (r *Renderer[O]) Backend() Backend[O] {
	return r.backend
}

// snapshot returns the defaults merged with the base configuration. It is
// computed once and never modified afterwards.
func (r *Renderer[O]) snapshot() Config[O] {
	r.once.Do(func() {
		r.baseline = DefaultConfig[O]().Merge(r.base)
	})
	return r.baseline
}

// Effective returns the configuration a render call with override would
// use. The result is a fresh copy the caller may modify.
func (r *Renderer[O]) Effective(override *Config[O]) Config[O] {
	if override == nil {
		return r.snapshot().Merge(Config[O]{})
	}
	return r.snapshot().Merge(*override)
}

// Stats counts what a render call produced.
type Stats struct {
	Nodes        int
	Placeholders int
}

// RenderDocument renders root with the base configuration merged with
// override, which may be nil.
//
// A single component node yields one output per embedded instance, any other
// single node yields one output, and a sequence yields the flattened outputs
// of its nodes. Nodes that cannot be resolved render as placeholders; the
// only error is ErrInvalidRoot.
func (r *Renderer[O]) RenderDocument(root Root, override *Config[O]) ([]O, error) {
	out, _, err := r.RenderWithStats(root, override)
	return out, err
}

// Render renders a single node. See RenderDocument.
func (r *Renderer[O]) Render(n *Node, override *Config[O]) ([]O, error) {
	return r.RenderDocument(Single(n), override)
}

// RenderWithStats is RenderDocument that also reports node and placeholder
// counts.
func (r *Renderer[O]) RenderWithStats(root Root, override *Config[O]) ([]O, Stats, error) {
	if !root.Valid() {
		return nil, Stats{}, ErrInvalidRoot
	}

	cfg := r.snapshot()
	if override != nil {
		cfg = cfg.Merge(*override)
	}

	p := &pass[O]{
		r:        r,
		cfg:      cfg,
		omit:     flag(cfg.OmitParagraphInListItems),
		editable: flag(cfg.Editable),
	}
	out := p.renderList(root.Nodes())
	return out, p.stats, nil
}

// pass holds the state of one render call.
type pass[O any] struct {
	r        *Renderer[O]
	cfg      Config[O]
	omit     bool
	editable bool
	stats    Stats
}

func (p *pass[O]) renderList(nodes []*Node) []O {
	out := make([]O, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = append(out, p.renderNode(n)...)
	}
	return out
}

func (p *pass[O]) renderNode(n *Node) []O {
	p.stats.Nodes++

	switch n.Shape() {
	case ShapeText:
		return []O{p.renderText(n)}
	case ShapeBlock:
		return []O{p.renderBlock(n)}
	case ShapeComponent:
		return p.renderComponent(n)
	}
	return []O{p.placeholder(Placeholder{Kind: PlaceholderBlock, Type: string(n.Type)}, nil)}
}

// renderText folds the marks over the text in document order, so the last
// mark ends up outermost.
func (p *pass[O]) renderText(n *Node) O {
	out := p.r.backend.Text(n.Text)
	for _, m := range n.Marks {
		out = p.renderMark(m, out)
	}
	return out
}

func (p *pass[O]) renderMark(m Mark, text O) O {
	t := string(m.Type)
	res := p.cfg.Resolvers.node(t)
	miss := Placeholder{Kind: PlaceholderMark, Type: t}
	ctx := RenderContext[O]{Type: t, Text: text, Children: []O{text}}

	switch m.Type.Shape() {
	case MarkPlain:
		return p.resolve(res, ctx, miss)
	case MarkWithAttrs:
		ctx.Attrs = withClasses(m.Attrs, p.class(t))
		return p.resolve(res, ctx, miss)
	case MarkUnknown:
		if !res.IsSet() {
			return p.placeholder(miss, ctx.Children)
		}
		ctx.Attrs = withClasses(m.Attrs, p.class(t))
		return p.resolve(res, ctx, miss)
	}
	return p.placeholder(miss, ctx.Children)
}

func (p *pass[O]) renderBlock(n *Node) O {
	t := string(n.Type)
	res := p.cfg.Resolvers.node(t)
	miss := Placeholder{Kind: PlaceholderBlock, Type: t}

	switch n.Type.BlockShape() {
	case BlockWithContent:
		return p.resolve(res, RenderContext[O]{
			Type:     t,
			Attrs:    withClasses(n.Attrs, p.class(t)),
			Children: p.renderChildren(n),
		}, miss)
	case BlockWithContentAndAttrs:
		cls := p.class(t)
		if n.Type == TypeHeading {
			cls = p.headingClass(n.Attrs)
		}
		return p.resolve(res, RenderContext[O]{
			Type:     t,
			Attrs:    withClasses(n.Attrs, cls),
			Children: p.renderChildren(n),
		}, miss)
	case BlockWithAttrs:
		return p.resolve(res, RenderContext[O]{
			Type:  t,
			Attrs: withClasses(n.Attrs, p.class(t)),
		}, miss)
	case BlockWithoutOptions:
		return p.resolve(res, RenderContext[O]{Type: t}, miss)
	case BlockUnknown:
		if !res.IsSet() {
			return p.placeholder(miss, nil)
		}
		return p.resolve(res, RenderContext[O]{
			Type:     t,
			Attrs:    withClasses(n.Attrs, p.class(t)),
			Children: p.renderChildren(n),
		}, miss)
	}
	return p.placeholder(miss, nil)
}

// renderChildren renders the content of n. With paragraph omission on, a
// list item whose only child is a non-empty paragraph renders that
// paragraph's children instead. Only the list item itself is inspected;
// nested lists get the same treatment when their own items are rendered.
func (p *pass[O]) renderChildren(n *Node) []O {
	if p.omit && n.Type == TypeListItem && len(n.Content) == 1 {
		if only := n.Content[0]; only != nil && only.Type == TypeParagraph && len(only.Content) > 0 {
			return p.renderList(only.Content)
		}
	}
	return p.renderList(n.Content)
}

func (p *pass[O]) renderComponent(n *Node) []O {
	id := n.ComponentID()
	instances := n.Instances()

	out := make([]O, 0, len(instances))
	for _, inst := range instances {
		out = append(out, p.renderInstance(id, inst))
	}
	return out
}

func (p *pass[O]) renderInstance(id string, inst Instance) O {
	res := p.cfg.Resolvers.Components[inst.Component]
	if !res.IsSet() {
		res = p.cfg.Resolvers.node(string(TypeBlok))
	}

	fields := make(map[string]any, len(inst.Fields))
	for k, v := range inst.Fields {
		fields[k] = v
	}

	return p.resolve(res, RenderContext[O]{
		Type:      inst.Component,
		Attrs:     p.componentAttrs(inst),
		ID:        id,
		Component: inst.Component,
		UID:       inst.UID,
		Fields:    fields,
	}, Placeholder{Kind: PlaceholderComponent, Type: inst.Component})
}

func (p *pass[O]) componentAttrs(inst Instance) Attrs {
	attrs := Attrs{BlokAttr: inst.Data()}
	if cls, ok := p.cfg.Classes.StringAt("components", inst.Component); ok && cls != "" {
		attrs[ClassesAttr] = cls
	}
	if p.editable {
		for k, v := range inst.EditableAttrs() {
			attrs[k] = v
		}
	}
	return attrs
}

// resolve applies a resolver to a prepared context. Named and primitive
// resolvers bind the context's attributes and children; callbacks return
// their own result. An unset resolver yields the miss placeholder.
func (p *pass[O]) resolve(res Resolver[O], ctx RenderContext[O], miss Placeholder) O {
	ctx.pass = p

	switch res.kind {
	case ResolverNamed:
		prim, ok := p.r.backend.Lookup(res.name)
		if !ok {
			return p.placeholder(Placeholder{Kind: PlaceholderName, Type: res.name}, ctx.Children)
		}
		return p.r.backend.Bind(prim, ctx.Attrs, ctx.Children)
	case ResolverPrimitive:
		return p.r.backend.Bind(res.prim, ctx.Attrs, ctx.Children)
	case ResolverCallback:
		return p.call(res.fn, ctx)
	case ResolverUnset:
		return p.placeholder(miss, ctx.Children)
	}
	return p.placeholder(miss, ctx.Children)
}

// call runs a callback resolver. A panicking callback renders a placeholder
// so the rest of the document still renders.
func (p *pass[O]) call(fn func(RenderContext[O]) O, ctx RenderContext[O]) (out O) {
	defer func() {
		if rec := recover(); rec != nil {
			p.r.logger.Error("resolver panicked", "type", ctx.Type, "panic", rec)
			out = p.placeholder(Placeholder{Kind: PlaceholderPanic, Type: ctx.Type}, nil)
		}
	}()
	return fn(ctx)
}

func (p *pass[O]) placeholder(ph Placeholder, children []O) O {
	p.stats.Placeholders++
	p.r.logger.Warn("unresolved richtext node", "kind", ph.Kind.String(), "type", ph.Type)
	if p.r.onPlaceholder != nil {
		p.r.onPlaceholder(ph)
	}
	return p.r.backend.Placeholder(ph, children)
}

func (p *pass[O]) class(t string) string {
	cls, _ := p.cfg.Classes.StringAt(t)
	return cls
}

func (p *pass[O]) headingClass(attrs Attrs) string {
	level := attrs.Int("level", 0)
	if level < 1 {
		return ""
	}
	cls, _ := p.cfg.Classes.StringAt(string(TypeHeading), strconv.Itoa(level))
	return cls
}

// withClasses copies attrs and sets the configured class, if any.
func withClasses(attrs Attrs, cls string) Attrs {
	out := attrs.Clone()
	if cls != "" {
		out[ClassesAttr] = cls
	}
	return out
}
