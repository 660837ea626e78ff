package richtext

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
)

// stringBackend renders output nodes as compact markup strings, which makes
// expected trees easy to write down.
type stringBackend struct {
	names map[string]Primitive
}

func (stringBackend) Text(text string) string { return text }

func (b stringBackend) Bind(p Primitive, attrs Attrs, children []string) string {
	var sb strings.Builder
	name := p.PrimitiveName()
	sb.WriteString("<" + name)

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := attrs[k]
		if data, ok := v.(map[string]any); ok {
			v = data["_uid"]
		}
		fmt.Fprintf(&sb, " %s=%q", k, fmt.Sprint(v))
	}

	sb.WriteString(">")
	sb.WriteString(strings.Join(children, ""))
	sb.WriteString("</" + name + ">")
	return sb.String()
}

func (b stringBackend) Lookup(name string) (Primitive, bool) {
	p, ok := b.names[name]
	return p, ok
}

func (stringBackend) Placeholder(p Placeholder, children []string) string {
	return fmt.Sprintf("{%s %s:%s}", p.Kind, p.Type, strings.Join(children, ""))
}

// placeholderLog collects placeholders reported by a renderer.
type placeholderLog struct {
	mu  sync.Mutex
	got []Placeholder
}

func (l *placeholderLog) hook(p Placeholder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.got = append(l.got, p)
}

func (l *placeholderLog) list() []Placeholder {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Placeholder(nil), l.got...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRenderer(t *testing.T, base Config[string]) (*Renderer[string], *placeholderLog) {
	t.Helper()
	log := &placeholderLog{}
	backend := stringBackend{names: map[string]Primitive{
		"teaser-card": Tag("card"),
		"callout":     Tag("aside"),
	}}
	r := New[string](backend, base, WithLogger(quietLogger()), WithPlaceholderHook(log.hook))
	return r, log
}

func renderOne(t *testing.T, r *Renderer[string], n *Node, override *Config[string]) string {
	t.Helper()
	out, err := r.Render(n, override)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return strings.Join(out, "")
}

func para(children ...*Node) *Node {
	return NewBlock(TypeParagraph, nil, children...)
}

func text(s string, marks ...Mark) *Node {
	return NewText(s, marks...)
}
