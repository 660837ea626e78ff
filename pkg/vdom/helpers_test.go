package vdom

import "testing"

func TestText(t *testing.T) {
	node := Textf("%d items", 3)
	if node.Kind != KindText || node.Text != "3 items" {
		t.Errorf("Textf() = %+v", node)
	}
}

func TestRaw(t *testing.T) {
	node := Raw("<b>bold</b>")
	if node.Kind != KindRaw || node.Text != "<b>bold</b>" {
		t.Errorf("Raw() = %+v", node)
	}
}

func TestFragment(t *testing.T) {
	node := Fragment(Text("a"), nil, []*VNode{Text("b"), nil}, "c", Func(func() *VNode { return Text("d") }))
	if node.Kind != KindFragment {
		t.Fatalf("Kind = %v", node.Kind)
	}
	if len(node.Children) != 4 {
		t.Fatalf("Children len = %d, want 4", len(node.Children))
	}
	if got := TextContent(node); got != "abcd" {
		t.Errorf("TextContent() = %q, want abcd", got)
	}
}

func TestWalk(t *testing.T) {
	tree := Div(P(Text("a"), Span(Text("b"))), Element("aside", Text("skipped")))

	var tags []string
	Walk(tree, func(n *VNode) bool {
		if n.Kind == KindElement {
			tags = append(tags, n.Tag)
		}
		return n.Tag != "aside"
	})

	want := []string{"div", "p", "span", "aside"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %s, want %s", i, tags[i], want[i])
		}
	}
}
