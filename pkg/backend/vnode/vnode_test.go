package vnode

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/richtext/pkg/merge"
	"github.com/vango-dev/richtext/pkg/render"
	"github.com/vango-dev/richtext/pkg/richtext"
	"github.com/vango-dev/richtext/pkg/vdom"
)

func renderHTML(t *testing.T, r *richtext.Renderer[*vdom.VNode], root richtext.Root, override *richtext.Config[*vdom.VNode]) string {
	t.Helper()
	nodes, err := r.RenderDocument(root, override)
	if err != nil {
		t.Fatalf("RenderDocument() error = %v", err)
	}
	html, err := render.NewRenderer(render.RendererConfig{}).RenderNodesToString(nodes)
	if err != nil {
		t.Fatalf("RenderNodesToString() error = %v", err)
	}
	return html
}

func newRenderer(reg *Registry, cfg richtext.Config[*vdom.VNode]) *richtext.Renderer[*vdom.VNode] {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return richtext.New[*vdom.VNode](NewBackend(reg), cfg, richtext.WithLogger(logger))
}

func TestBackendRendersDocument(t *testing.T) {
	const doc = `{
		"type": "doc",
		"content": [
			{"type": "heading", "attrs": {"level": 2}, "content": [{"type": "text", "text": "Hello"}]},
			{"type": "paragraph", "content": [
				{"type": "text", "text": "a <b>", "marks": [{"type": "italic"}]},
				{"type": "text", "text": "link", "marks": [{"type": "link", "attrs": {"href": "/x", "linktype": "url"}}]}
			]},
			{"type": "code_block", "attrs": {"class": "language-go"}, "content": [{"type": "text", "text": "x := 1"}]},
			{"type": "image", "attrs": {"src": "/a.png", "alt": "A"}},
			{"type": "horizontal_rule"}
		]
	}`
	root, err := richtext.ParseRoot([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}

	r := newRenderer(nil, richtext.Config[*vdom.VNode]{
		Classes: merge.Map{
			"paragraph": merge.String("prose"),
			"heading":   merge.Map{"2": merge.String("title")},
		},
	})
	got := renderHTML(t, r, root, nil)

	want := `<div>` +
		`<h2 class="title">Hello</h2>` +
		`<p class="prose"><i>a &lt;b&gt;</i><a href="/x">link</a></p>` +
		`<pre><code class="language-go">x := 1</code></pre>` +
		`<img alt="A" src="/a.png">` +
		`<hr>` +
		`</div>`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestBackendComponents(t *testing.T) {
	reg := NewRegistry()
	reg.Register("teaser-card", func(props vdom.Props, _ []*vdom.VNode) *vdom.VNode {
		blok := props[richtext.BlokAttr].(map[string]any)
		cls, _ := props[richtext.ClassesAttr].(string)
		return vdom.Element("article", vdom.Class("teaser", cls), vdom.Text(blok["headline"].(string)))
	})

	r := newRenderer(reg, richtext.Config[*vdom.VNode]{
		Resolvers: richtext.Resolvers[*vdom.VNode]{Components: map[string]richtext.Resolver[*vdom.VNode]{
			"teaser": richtext.Named[*vdom.VNode]("teaser-card"),
		}},
		Classes: merge.Map{"components": merge.Map{"teaser": merge.String("featured")}},
	})

	n := richtext.NewComponent("b1",
		richtext.Instance{Component: "teaser", UID: "u1", Fields: map[string]any{"headline": "One"}},
		richtext.Instance{Component: "teaser", UID: "u2", Fields: map[string]any{"headline": "Two"}},
		richtext.Instance{Component: "grid", UID: "u3"},
	)

	nodes, err := r.Render(n, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	if nodes[0].Kind != vdom.KindComponent || nodes[0].Key != "u1" || nodes[1].Key != "u2" {
		t.Errorf("component nodes = %+v %+v", nodes[0], nodes[1])
	}

	html, err := render.NewRenderer(render.RendererConfig{}).RenderNodesToString(nodes)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`<article class="teaser featured">One</article>`,
		`<article class="teaser featured">Two</article>`,
		`data-richtext-fallback="component"`,
		`data-richtext-type="grid"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %s in %s", want, html)
		}
	}
}

func TestBackendLookup(t *testing.T) {
	reg := NewRegistry()
	card := reg.Register("card", nil)
	b := NewBackend(reg)

	if p, ok := b.Lookup("card"); !ok || p != card {
		t.Errorf("Lookup(card) = %v, %v", p, ok)
	}
	if p, ok := b.Lookup("section"); !ok || p != richtext.Tag("section") {
		t.Errorf("Lookup(section) = %v, %v", p, ok)
	}
	for _, name := range []string{"", "Teaser Card", "1x", "x>"} {
		if _, ok := b.Lookup(name); ok {
			t.Errorf("Lookup(%q) should fail", name)
		}
	}
	if names := reg.Names(); len(names) != 1 || names[0] != "card" {
		t.Errorf("Names() = %v", names)
	}
}

func TestNamedTagFromOptions(t *testing.T) {
	opts := richtext.Options{Resolvers: map[string]string{"paragraph": "section"}}
	r := newRenderer(nil, richtext.ConfigFrom[*vdom.VNode](opts))

	got := renderHTML(t, r, richtext.Single(richtext.NewBlock(richtext.TypeParagraph, nil, richtext.NewText("x"))), nil)
	if got != "<section>x</section>" {
		t.Errorf("got %s", got)
	}
}

func TestPlaceholders(t *testing.T) {
	r := newRenderer(nil, richtext.Config[*vdom.VNode]{})

	doc := richtext.NewBlock(richtext.TypeDoc, nil,
		richtext.NewBlock("table", nil),
		richtext.NewBlock(richtext.TypeParagraph, nil, richtext.NewText("t", richtext.Mark{Type: "glow"})),
	)
	got := renderHTML(t, r, richtext.Single(doc), nil)

	want := `<div>` +
		`<div class="richtext-fallback" data-richtext-fallback="block" data-richtext-type="table">fallback block &quot;table&quot;</div>` +
		`<p><span class="richtext-fallback" data-richtext-fallback="mark" data-richtext-type="glow">t</span></p>` +
		`</div>`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestElementProps(t *testing.T) {
	props := elementProps(richtext.Attrs{
		"class":   "language-go",
		"classes": "highlight",
		"start":   3,
		"blok":    map[string]any{"a": 1},
		"list":    []any{1},
	})

	if props["class"] != "language-go highlight" {
		t.Errorf("class = %v", props["class"])
	}
	if props["start"] != 3 {
		t.Errorf("start = %v", props["start"])
	}
	if _, ok := props["blok"]; ok {
		t.Error("composite value kept")
	}
	if _, ok := props["classes"]; ok {
		t.Error("classes key kept")
	}
}

func TestBackendDropsUnsafeAttributes(t *testing.T) {
	const doc = `{
		"type": "doc",
		"content": [
			{"type": "paragraph", "attrs": {"onmouseover": "alert(1)", "ONCLICK": "alert(2)", "style": "x", "title": "t"},
				"content": [{"type": "text", "text": "hi"}]},
			{"type": "paragraph", "content": [
				{"type": "text", "text": "x", "marks": [{"type": "link", "attrs": {
					"href": " java\tscript:alert(3)", "linktype": "url", "custom": {"onclick": "alert(4)", "rel": "nofollow"}}}]}
			]},
			{"type": "image", "attrs": {"src": "javascript:alert(5)", "alt": "A"}},
			{"type": "image", "attrs": {"src": "data:image/png;base64,AAAA", "alt": "B"}}
		]
	}`
	root, err := richtext.ParseRoot([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}

	got := renderHTML(t, newRenderer(nil, richtext.Config[*vdom.VNode]{}), root, nil)

	want := `<div>` +
		`<p title="t">hi</p>` +
		`<p><a rel="nofollow">x</a></p>` +
		`<img alt="A">` +
		`<img alt="B" src="data:image/png;base64,AAAA">` +
		`</div>`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
	if strings.Contains(got, "alert") {
		t.Errorf("script survived: %s", got)
	}
}
