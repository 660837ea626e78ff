package markdown

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/vango-dev/richtext/pkg/richtext"
)

// ErrInvalidUTF8 is returned for sources that are not valid UTF-8.
var ErrInvalidUTF8 = errors.New("markdown: source is not valid UTF-8")

var md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// Convert parses CommonMark source and returns the equivalent rich-text
// document. Raw HTML is dropped.
func Convert(source []byte) (*richtext.Node, error) {
	if !utf8.Valid(source) {
		return nil, ErrInvalidUTF8
	}
	doc := md.Parser().Parse(text.NewReader(source))
	c := converter{source: source}
	return richtext.NewBlock(richtext.TypeDoc, nil, c.blocks(doc)...), nil
}

type converter struct {
	source []byte
}

func (c *converter) blocks(parent ast.Node) []*richtext.Node {
	var out []*richtext.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := c.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c *converter) block(n ast.Node) *richtext.Node {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return richtext.NewBlock(richtext.TypeParagraph, nil, c.inlines(n)...)

	case *ast.Heading:
		return richtext.NewBlock(richtext.TypeHeading, richtext.Attrs{"level": n.Level}, c.inlines(n)...)

	case *ast.FencedCodeBlock:
		var attrs richtext.Attrs
		if lang := string(n.Language(c.source)); lang != "" {
			attrs = richtext.Attrs{"class": "language-" + lang}
		}
		return richtext.NewBlock(richtext.TypeCodeBlock, attrs, c.lines(n)...)

	case *ast.CodeBlock:
		return richtext.NewBlock(richtext.TypeCodeBlock, nil, c.lines(n)...)

	case *ast.List:
		if n.IsOrdered() {
			return richtext.NewBlock(richtext.TypeOrderedList, richtext.Attrs{"order": n.Start}, c.blocks(n)...)
		}
		return richtext.NewBlock(richtext.TypeBulletList, nil, c.blocks(n)...)

	case *ast.ListItem:
		return richtext.NewBlock(richtext.TypeListItem, nil, c.blocks(n)...)

	case *ast.Blockquote:
		return richtext.NewBlock(richtext.TypeQuote, nil, c.blocks(n)...)

	case *ast.ThematicBreak:
		return richtext.NewBlock(richtext.TypeHorizontalRule, nil)

	default:
		return nil
	}
}

// lines returns the literal content of a code block as a single text node.
func (c *converter) lines(n ast.Node) []*richtext.Node {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.source))
	}
	code := strings.TrimSuffix(b.String(), "\n")
	if code == "" {
		return nil
	}
	return []*richtext.Node{richtext.NewText(code)}
}

func (c *converter) inlines(parent ast.Node) []*richtext.Node {
	var out []*richtext.Node
	c.walkInline(parent, nil, &out)
	return coalesce(out)
}

func (c *converter) walkInline(parent ast.Node, marks []richtext.Mark, out *[]*richtext.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Text:
			c.emit(out, string(n.Segment.Value(c.source)), marks)
			switch {
			case n.HardLineBreak():
				*out = append(*out, richtext.NewBlock(richtext.TypeHardBreak, nil))
			case n.SoftLineBreak():
				c.emit(out, "\n", marks)
			}

		case *ast.String:
			c.emit(out, string(n.Value), marks)

		case *ast.Emphasis:
			mark := richtext.Mark{Type: richtext.MarkItalic}
			if n.Level >= 2 {
				mark.Type = richtext.MarkBold
			}
			c.walkInline(n, with(marks, mark), out)

		case *east.Strikethrough:
			c.walkInline(n, with(marks, richtext.Mark{Type: richtext.MarkStrike}), out)

		case *ast.CodeSpan:
			c.emit(out, c.plain(n), with(marks, richtext.Mark{Type: richtext.MarkCode}))

		case *ast.Link:
			attrs := richtext.Attrs{"href": string(n.Destination), "linktype": "url"}
			if len(n.Title) > 0 {
				attrs["custom"] = map[string]any{"title": string(n.Title)}
			}
			c.walkInline(n, with(marks, richtext.Mark{Type: richtext.MarkLink, Attrs: attrs}), out)

		case *ast.AutoLink:
			attrs := richtext.Attrs{"href": string(n.URL(c.source)), "linktype": "url"}
			if n.AutoLinkType == ast.AutoLinkEmail {
				attrs["linktype"] = "email"
			}
			c.emit(out, string(n.Label(c.source)), with(marks, richtext.Mark{Type: richtext.MarkLink, Attrs: attrs}))

		case *ast.Image:
			attrs := richtext.Attrs{"src": string(n.Destination)}
			if alt := c.plain(n); alt != "" {
				attrs["alt"] = alt
			}
			if len(n.Title) > 0 {
				attrs["title"] = string(n.Title)
			}
			*out = append(*out, richtext.NewBlock(richtext.TypeImage, attrs))

		case *ast.RawHTML:
			// dropped

		default:
			c.walkInline(n, marks, out)
		}
	}
}

// plain returns the concatenated text below n, ignoring formatting.
func (c *converter) plain(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(c.source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func (c *converter) emit(out *[]*richtext.Node, s string, marks []richtext.Mark) {
	if s == "" {
		return
	}
	*out = append(*out, richtext.NewText(s, marks...))
}

// with returns marks plus m without aliasing the parent's slice.
func with(marks []richtext.Mark, m richtext.Mark) []richtext.Mark {
	out := make([]richtext.Mark, len(marks), len(marks)+1)
	copy(out, marks)
	return append(out, m)
}

// coalesce merges adjacent text nodes carrying the same marks.
func coalesce(nodes []*richtext.Node) []*richtext.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if len(out) > 0 {
			last := out[len(out)-1]
			if richtext.IsText(last) && richtext.IsText(n) && sameMarks(last.Marks, n.Marks) {
				last.Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func sameMarks(a, b []richtext.Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || !sameAttrs(a[i].Attrs, b[i].Attrs) {
			return false
		}
	}
	return true
}

func sameAttrs(a, b richtext.Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok {
			return false
		}
		// custom is the only non-scalar attribute produced here.
		if mv, ok := v.(map[string]any); ok {
			mw, ok := w.(map[string]any)
			if !ok || len(mv) != len(mw) || mv["title"] != mw["title"] {
				return false
			}
			continue
		}
		if v != w {
			return false
		}
	}
	return true
}
