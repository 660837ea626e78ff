package vdom

import "testing"

func TestCreateElement(t *testing.T) {
	t.Run("basic element", func(t *testing.T) {
		node := Div()
		if node.Kind != KindElement {
			t.Errorf("Kind = %v, want KindElement", node.Kind)
		}
		if node.Tag != "div" {
			t.Errorf("Tag = %v, want div", node.Tag)
		}
	})

	t.Run("with multiple attributes", func(t *testing.T) {
		node := Div(Class("card"), ID("main"))
		if node.Props["class"] != "card" {
			t.Errorf("class = %v, want card", node.Props["class"])
		}
		if node.Props["id"] != "main" {
			t.Errorf("id = %v, want main", node.Props["id"])
		}
	})

	t.Run("classes accumulate", func(t *testing.T) {
		node := Div(Class("card"), Class("wide", "card"), Props{"class": "outline"})
		if node.Props["class"] != "card wide outline" {
			t.Errorf("class = %q", node.Props["class"])
		}
	})

	t.Run("props and attr slice", func(t *testing.T) {
		node := Element("img", Props{"src": "/a.png"}, []Attr{{Key: "alt", Value: "A"}, {}})
		if node.Props["src"] != "/a.png" || node.Props["alt"] != "A" {
			t.Errorf("props = %v", node.Props)
		}
		if len(node.Props) != 2 {
			t.Errorf("empty attr was stored: %v", node.Props)
		}
	})

	t.Run("key attribute", func(t *testing.T) {
		node := Div(Key("u1"))
		if node.Key != "u1" {
			t.Errorf("Key = %q, want u1", node.Key)
		}
		if _, ok := node.Props["key"]; ok {
			t.Error("key should not be stored as a prop")
		}
	})

	t.Run("children", func(t *testing.T) {
		var missing *VNode
		node := Div(P(Text("Hello")), []*VNode{Span(), nil}, "tail", missing, nil)
		if len(node.Children) != 3 {
			t.Fatalf("Children len = %v, want 3", len(node.Children))
		}
		if node.Children[2].Kind != KindText || node.Children[2].Text != "tail" {
			t.Errorf("string child = %+v", node.Children[2])
		}
	})

	t.Run("component child", func(t *testing.T) {
		node := Div(Func(func() *VNode { return Text("c") }))
		if len(node.Children) != 1 || node.Children[0].Kind != KindComponent {
			t.Fatalf("children = %+v", node.Children)
		}
	})
}

func TestVoidElements(t *testing.T) {
	for _, tag := range []string{"br", "hr", "img", "input", "meta"} {
		if !IsVoidElement(tag) {
			t.Errorf("%s should be void", tag)
		}
	}
	for _, tag := range []string{"div", "p", "span", "a"} {
		if IsVoidElement(tag) {
			t.Errorf("%s should not be void", tag)
		}
	}

	if node := Element("br", Text("dropped")); len(node.Children) != 0 {
		t.Errorf("void element kept %d children", len(node.Children))
	}
}

func TestJoinClasses(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a b", "", "b c"}, "a b c"},
		{[]string{"  spaced   out "}, "spaced out"},
	}
	for _, tt := range tests {
		if got := JoinClasses(tt.in...); got != tt.want {
			t.Errorf("JoinClasses(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
