// Package tree is the richtext backend that builds a plain, serialisable
// node tree.
//
// The tree carries no behaviour. It is what the HTTP API returns for
// format=json and what the binary codec in this package encodes, so
// consumers in other languages can render documents without running Go
// components.
package tree

import (
	"encoding/json"
	"fmt"

	"github.com/vango-dev/richtext/pkg/richtext"
)

// Kind discriminates tree nodes.
type Kind string

const (
	KindText        Kind = "text"
	KindElement     Kind = "element"
	KindComponent   Kind = "component"
	KindPlaceholder Kind = "placeholder"
)

// Node is one output node.
//
// Elements and components use Tag for the element or component name.
// Placeholders use Tag for the placeholder kind and carry the unresolved
// type in Attrs["type"].
type Node struct {
	Kind     Kind              `json:"kind"`
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Blok     map[string]any    `json:"blok,omitempty"`
	Children []*Node           `json:"children,omitempty"`
	Text     string            `json:"text,omitempty"`
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.Kind == KindText {
		return n.Text
	}
	s := n.Text
	for _, c := range n.Children {
		s += c.TextContent()
	}
	return s
}

// Backend builds *Node output. Lookup accepts any non-empty name, so named
// resolvers become component nodes the consumer resolves itself.
type Backend struct{}

var _ richtext.Backend[*Node] = Backend{}

// Text implements richtext.Backend.
func (Backend) Text(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// Lookup implements richtext.Backend.
func (Backend) Lookup(name string) (richtext.Primitive, bool) {
	if name == "" {
		return nil, false
	}
	return componentName(name), true
}

// Bind implements richtext.Backend.
func (Backend) Bind(p richtext.Primitive, attrs richtext.Attrs, children []*Node) *Node {
	n := &Node{
		Kind:     KindElement,
		Tag:      p.PrimitiveName(),
		Attrs:    flatten(attrs),
		Children: compact(children),
	}
	if _, ok := p.(componentName); ok {
		n.Kind = KindComponent
		n.Blok, _ = attrs[richtext.BlokAttr].(map[string]any)
	}
	return n
}

// Placeholder implements richtext.Backend.
func (Backend) Placeholder(p richtext.Placeholder, children []*Node) *Node {
	n := &Node{
		Kind:     KindPlaceholder,
		Tag:      p.Kind.String(),
		Attrs:    map[string]string{"type": p.Type},
		Children: compact(children),
	}
	if len(n.Children) == 0 {
		n.Text = p.Label()
	}
	return n
}

type componentName string

func (c componentName) PrimitiveName() string { return string(c) }

// flatten keeps scalar attributes as strings and joins the configured
// classes into class.
func flatten(attrs richtext.Attrs) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		switch k {
		case "class", richtext.ClassesAttr, richtext.BlokAttr:
			continue
		}
		switch t := v.(type) {
		case string:
			out[k] = t
		case bool:
			if t {
				out[k] = ""
			}
		case int, int64, float64, json.Number:
			out[k] = fmt.Sprint(t)
		}
	}

	var classes []string
	for _, key := range []string{"class", richtext.ClassesAttr} {
		if s := attrs.String(key); s != "" {
			classes = append(classes, s)
		}
	}
	if len(classes) > 0 {
		out["class"] = joinClasses(classes)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func joinClasses(parts []string) string {
	s := parts[0]
	for _, p := range parts[1:] {
		if p != s {
			s += " " + p
		}
	}
	return s
}

func compact(children []*Node) []*Node {
	out := children[:0:0]
	for _, c := range children {
		if c != nil {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
