// Package vnode is the richtext backend that builds vdom trees.
//
// Element tags bind to vdom elements. Named resolvers look up components
// registered in a Registry; a name that is not registered but is a valid
// tag name binds as that element, so configuration files can remap node
// types to plain tags.
//
//	reg := vnode.NewRegistry()
//	reg.Register("teaser-card", func(props vdom.Props, children []*vdom.VNode) *vdom.VNode {
//	    blok := props["blok"].(map[string]any)
//	    return vdom.Div(vdom.Class("teaser"), vdom.Text(blok["headline"].(string)))
//	})
//	r := richtext.New[*vdom.VNode](vnode.NewBackend(reg), cfg)
package vnode

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/richtext/pkg/richtext"
	"github.com/vango-dev/richtext/pkg/vdom"
)

// FallbackClass marks placeholder elements.
const FallbackClass = "richtext-fallback"

// RenderFunc renders a component from its props and rendered children.
type RenderFunc func(props vdom.Props, children []*vdom.VNode) *vdom.VNode

// Component is a registered presentation component.
type Component struct {
	Name   string
	Render RenderFunc
}

// PrimitiveName implements richtext.Primitive.
func (c *Component) PrimitiveName() string { return c.Name }

// Registry maps names to components. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*Component
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]*Component)}
}

// Register adds or replaces a component and returns it.
func (r *Registry) Register(name string, render RenderFunc) *Component {
	c := &Component{Name: name, Render: render}
	r.mu.Lock()
	r.components[name] = c
	r.mu.Unlock()
	return c
}

// Get returns the component registered under name.
func (r *Registry) Get(name string) (*Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Backend builds *vdom.VNode output.
type Backend struct {
	registry *Registry
}

var _ richtext.Backend[*vdom.VNode] = (*Backend)(nil)

// NewBackend creates a backend resolving names against reg, which may be nil.
func NewBackend(reg *Registry) *Backend {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Backend{registry: reg}
}

// Registry returns the backend's component registry.
func (b *Backend) Registry() *Registry {
	return b.registry
}

// Text implements richtext.Backend.
func (b *Backend) Text(text string) *vdom.VNode {
	return vdom.Text(text)
}

// Lookup implements richtext.Backend.
func (b *Backend) Lookup(name string) (richtext.Primitive, bool) {
	if c, ok := b.registry.Get(name); ok {
		return c, true
	}
	if isTagName(name) {
		return richtext.Tag(name), true
	}
	return nil, false
}

// Bind implements richtext.Backend.
func (b *Backend) Bind(p richtext.Primitive, attrs richtext.Attrs, children []*vdom.VNode) *vdom.VNode {
	switch prim := p.(type) {
	case *Component:
		return bindComponent(prim, attrs, children)
	case richtext.Tag:
		return vdom.Element(string(prim), elementProps(attrs), children)
	default:
		return vdom.Element(p.PrimitiveName(), elementProps(attrs), children)
	}
}

// Placeholder implements richtext.Backend. Marks render as span, everything
// else as div. The label is shown when there is no content to keep.
func (b *Backend) Placeholder(p richtext.Placeholder, children []*vdom.VNode) *vdom.VNode {
	tag := "div"
	if p.Kind == richtext.PlaceholderMark {
		tag = "span"
	}

	args := []any{
		vdom.Class(FallbackClass),
		vdom.Data("richtext-fallback", p.Kind.String()),
		vdom.Data("richtext-type", p.Type),
	}
	if len(children) == 0 {
		args = append(args, vdom.Text(p.Label()))
	}
	args = append(args, children)
	return vdom.Element(tag, args...)
}

// bindComponent defers rendering to the component. Props keep every
// attribute, including the instance data under "blok".
func bindComponent(c *Component, attrs richtext.Attrs, children []*vdom.VNode) *vdom.VNode {
	props := make(vdom.Props, len(attrs))
	for k, v := range attrs {
		props[k] = v
	}

	node := &vdom.VNode{
		Kind:  vdom.KindComponent,
		Tag:   c.Name,
		Props: props,
	}
	if blok, ok := attrs[richtext.BlokAttr].(map[string]any); ok {
		node.Key, _ = blok["_uid"].(string)
	}

	render := c.Render
	node.Comp = vdom.Func(func() *vdom.VNode {
		if render == nil {
			return vdom.Fragment(children)
		}
		return render(props, children)
	})
	return node
}

// elementProps converts node attributes to element props. The configured
// class ("classes") joins the node's own class; composite values are
// dropped since they have no attribute form. Document attributes are
// untrusted, so event handlers, inline styles and script URLs never reach
// the element.
func elementProps(attrs richtext.Attrs) vdom.Props {
	props := make(vdom.Props, len(attrs))
	for k, v := range attrs {
		switch k {
		case "class", richtext.ClassesAttr:
			continue
		}
		if !allowedAttr(k) {
			continue
		}
		s, ok := scalar(v)
		if !ok {
			continue
		}
		if urlAttr(k) {
			u, _ := s.(string)
			if u = richtext.SafeURL(u); u == "" {
				continue
			}
			s = u
		}
		props[k] = s
	}
	if cls := vdom.JoinClasses(attrs.String("class"), attrs.String(richtext.ClassesAttr)); cls != "" {
		props["class"] = cls
	}
	return props
}

func allowedAttr(name string) bool {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "on"):
		return false
	case name == "style", name == "srcdoc":
		return false
	}
	return true
}

func urlAttr(name string) bool {
	switch strings.ToLower(name) {
	case "href", "src", "action", "formaction", "poster", "cite", "xlink:href":
		return true
	}
	return false
}

func scalar(v any) (any, bool) {
	switch t := v.(type) {
	case string, bool, int, int64, float64:
		return t, true
	case json.Number:
		return t.String(), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return nil, false
	}
}

func isTagName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case i > 0 && (c >= '0' && c <= '9' || c == '-'):
		default:
			return false
		}
	}
	return true
}
