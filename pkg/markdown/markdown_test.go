package markdown

import (
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/richtext/pkg/richtext"
)

func convert(t *testing.T, src string) *richtext.Node {
	t.Helper()
	doc, err := Convert([]byte(src))
	if err != nil {
		t.Fatalf("Convert(%q) error = %v", src, err)
	}
	if doc.Type != richtext.TypeDoc {
		t.Fatalf("root type = %q, want doc", doc.Type)
	}
	return doc
}

func types(nodes []*richtext.Node) string {
	var parts []string
	for _, n := range nodes {
		parts = append(parts, string(n.Type))
	}
	return strings.Join(parts, ",")
}

func markTypes(n *richtext.Node) string {
	var parts []string
	for _, m := range n.Marks {
		parts = append(parts, string(m.Type))
	}
	return strings.Join(parts, ",")
}

func TestConvertBlocks(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "paragraphs", src: "one\n\ntwo", want: "paragraph,paragraph"},
		{name: "heading", src: "## Title", want: "heading"},
		{name: "fenced code", src: "```go\nx := 1\n```", want: "code_block"},
		{name: "indented code", src: "    x := 1", want: "code_block"},
		{name: "bullet list", src: "- a\n- b", want: "bullet_list"},
		{name: "ordered list", src: "1. a\n2. b", want: "ordered_list"},
		{name: "blockquote", src: "> quoted", want: "blockquote"},
		{name: "thematic break", src: "a\n\n---\n\nb", want: "paragraph,horizontal_rule,paragraph"},
		{name: "empty", src: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := convert(t, tt.src)
			if got := types(doc.Content); got != tt.want {
				t.Errorf("blocks = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertHeadingLevel(t *testing.T) {
	h := convert(t, "### Deep").Content[0]
	if h.Attrs.Int("level", 0) != 3 {
		t.Errorf("level = %v", h.Attrs["level"])
	}
	if len(h.Content) != 1 || h.Content[0].Text != "Deep" {
		t.Errorf("content = %+v", h.Content)
	}
}

func TestConvertCodeBlock(t *testing.T) {
	code := convert(t, "```go\nfmt.Println(\"hi\")\nreturn\n```").Content[0]
	if code.Attrs.String("class") != "language-go" {
		t.Errorf("class = %q", code.Attrs.String("class"))
	}
	if len(code.Content) != 1 || code.Content[0].Text != "fmt.Println(\"hi\")\nreturn" {
		t.Errorf("content = %+v", code.Content)
	}

	plain := convert(t, "```\nx\n```").Content[0]
	if _, ok := plain.Attrs["class"]; ok {
		t.Errorf("unexpected class on fence without info string: %v", plain.Attrs)
	}
}

func TestConvertLists(t *testing.T) {
	list := convert(t, "3. three\n4. four").Content[0]
	if list.Attrs.Int("order", 0) != 3 {
		t.Errorf("order = %v", list.Attrs["order"])
	}
	if got := types(list.Content); got != "list_item,list_item" {
		t.Fatalf("items = %q", got)
	}
	// Tight list items still hold paragraphs.
	if got := types(list.Content[0].Content); got != "paragraph" {
		t.Errorf("item content = %q", got)
	}

	nested := convert(t, "- a\n  - b").Content[0]
	item := nested.Content[0]
	if got := types(item.Content); got != "paragraph,bullet_list" {
		t.Errorf("nested item content = %q", got)
	}
}

func TestConvertInline(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantText  string
		wantMarks string
	}{
		{name: "italic", src: "*it*", wantText: "it", wantMarks: "italic"},
		{name: "bold", src: "**b**", wantText: "b", wantMarks: "bold"},
		{name: "strike", src: "~~gone~~", wantText: "gone", wantMarks: "strike"},
		{name: "code span", src: "`x := 1`", wantText: "x := 1", wantMarks: "code"},
		{name: "link", src: "[site](https://vango.dev)", wantText: "site", wantMarks: "link"},
		{name: "autolink", src: "<https://vango.dev>", wantText: "https://vango.dev", wantMarks: "link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := convert(t, tt.src).Content[0]
			if len(p.Content) != 1 {
				t.Fatalf("content = %+v", p.Content)
			}
			text := p.Content[0]
			if text.Text != tt.wantText || markTypes(text) != tt.wantMarks {
				t.Errorf("got %q [%s], want %q [%s]", text.Text, markTypes(text), tt.wantText, tt.wantMarks)
			}
		})
	}
}

func TestConvertNestedMarks(t *testing.T) {
	p := convert(t, "**bold _both_**").Content[0]
	if len(p.Content) != 2 {
		t.Fatalf("content = %+v", p.Content)
	}
	if p.Content[0].Text != "bold " || markTypes(p.Content[0]) != "bold" {
		t.Errorf("first = %q [%s]", p.Content[0].Text, markTypes(p.Content[0]))
	}
	if p.Content[1].Text != "both" || markTypes(p.Content[1]) != "bold,italic" {
		t.Errorf("second = %q [%s]", p.Content[1].Text, markTypes(p.Content[1]))
	}
}

func TestConvertLinkAttrs(t *testing.T) {
	text := convert(t, `[docs](https://vango.dev/docs "Read me")`).Content[0].Content[0]
	attrs := text.Marks[0].Attrs
	if attrs.String("href") != "https://vango.dev/docs" || attrs.String("linktype") != "url" {
		t.Errorf("attrs = %v", attrs)
	}
	custom, _ := attrs["custom"].(map[string]any)
	if custom["title"] != "Read me" {
		t.Errorf("custom = %v", attrs["custom"])
	}

	email := convert(t, "<team@vango.dev>").Content[0].Content[0]
	ea := email.Marks[0].Attrs
	if ea.String("linktype") != "email" || richtext.LinkHref(ea) != "mailto:team@vango.dev" {
		t.Errorf("email attrs = %v", ea)
	}
}

func TestConvertBreaks(t *testing.T) {
	hard := convert(t, "one\\\ntwo").Content[0]
	if got := types(hard.Content); got != "text,hard_break,text" {
		t.Errorf("hard break content = %q", got)
	}

	soft := convert(t, "one\ntwo").Content[0]
	if len(soft.Content) != 1 || soft.Content[0].Text != "one\ntwo" {
		t.Errorf("soft break content = %+v", soft.Content)
	}
}

func TestConvertImage(t *testing.T) {
	p := convert(t, `![a *cat*](/cat.png "Cat")`).Content[0]
	if len(p.Content) != 1 || p.Content[0].Type != richtext.TypeImage {
		t.Fatalf("content = %+v", p.Content)
	}
	attrs := p.Content[0].Attrs
	if attrs.String("src") != "/cat.png" || attrs.String("alt") != "a cat" || attrs.String("title") != "Cat" {
		t.Errorf("attrs = %v", attrs)
	}
}

func TestConvertDropsRawHTML(t *testing.T) {
	p := convert(t, "a <b>x</b>").Content[0]
	if len(p.Content) != 1 || p.Content[0].Text != "a x" {
		t.Errorf("content = %+v", p.Content)
	}
}

func TestConvertInvalidUTF8(t *testing.T) {
	if _, err := Convert([]byte{'a', 0xff}); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("error = %v, want ErrInvalidUTF8", err)
	}
}
