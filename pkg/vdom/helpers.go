package vdom

import (
	"fmt"
	"strings"
)

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates an unescaped HTML node.
// Use with caution - can lead to XSS if content is user-provided.
func Raw(html string) *VNode {
	return &VNode{
		Kind: KindRaw,
		Text: html,
	}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	node := &VNode{
		Kind:     KindFragment,
		Children: make([]*VNode, 0),
	}

	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		case Component:
			node.Children = append(node.Children, &VNode{
				Kind: KindComponent,
				Comp: v,
			})
		}
	}

	return node
}

// Walk calls fn for v and its descendants in depth-first order. Components
// are not expanded. Returning false from fn skips the node's children.
func Walk(v *VNode, fn func(*VNode) bool) {
	if v == nil || !fn(v) {
		return
	}
	for _, child := range v.Children {
		Walk(child, fn)
	}
}

// TextContent returns the concatenated text of v and its descendants,
// expanding components.
func TextContent(v *VNode) string {
	var sb strings.Builder
	var visit func(*VNode)
	visit = func(n *VNode) {
		if n == nil {
			return
		}
		switch n.Kind {
		case KindText:
			sb.WriteString(n.Text)
		case KindComponent:
			if n.Comp != nil {
				visit(n.Comp.Render())
			}
		}
		for _, child := range n.Children {
			visit(child)
		}
	}
	visit(v)
	return sb.String()
}
