package richtext

import (
	"fmt"

	"github.com/vango-dev/richtext/pkg/merge"
)

// Attribute keys set by the renderer.
const (
	// ClassesAttr carries the class configured for a node, mark or component.
	ClassesAttr = "classes"

	// BlokAttr carries the instance data bound to a component primitive.
	BlokAttr = "blok"
)

// Primitive is an opaque handle to something a Backend can bind attributes
// and children to: an element tag, a registered component, and so on.
type Primitive interface {
	PrimitiveName() string
}

// Tag is the built-in primitive: a plain element name such as "p".
type Tag string

// PrimitiveName implements Primitive.
func (t Tag) PrimitiveName() string { return string(t) }

// Backend builds output nodes of type O. It is the only place that knows
// what an output node is.
type Backend[O any] interface {
	// Text creates a literal text node.
	Text(text string) O

	// Bind constructs a node from a primitive, its attributes and children.
	Bind(p Primitive, attrs Attrs, children []O) O

	// Lookup resolves a symbolic resolver name to a primitive.
	Lookup(name string) (Primitive, bool)

	// Placeholder creates the clearly labelled node used when nothing
	// resolves. Children holds content that should survive, if any.
	Placeholder(p Placeholder, children []O) O
}

// PlaceholderKind says what failed to resolve.
type PlaceholderKind uint8

const (
	PlaceholderBlock     PlaceholderKind = iota // Unknown block type
	PlaceholderMark                             // Unknown mark type
	PlaceholderComponent                        // Unregistered component type
	PlaceholderName                             // Named resolver the backend cannot look up
	PlaceholderPanic                            // Callback resolver panicked
)

// String returns the string representation of the PlaceholderKind.
func (k PlaceholderKind) String() string {
	switch k {
	case PlaceholderBlock:
		return "block"
	case PlaceholderMark:
		return "mark"
	case PlaceholderComponent:
		return "component"
	case PlaceholderName:
		return "name"
	case PlaceholderPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Placeholder describes an unresolved node.
type Placeholder struct {
	Kind PlaceholderKind
	Type string
}

// Label returns a human readable description, e.g. `fallback block "table"`.
func (p Placeholder) Label() string {
	return fmt.Sprintf("fallback %s %q", p.Kind, p.Type)
}

// ResolverKind discriminates the Resolver variants.
type ResolverKind uint8

const (
	ResolverUnset     ResolverKind = iota // Zero value, nothing registered
	ResolverNamed                         // Symbolic name looked up by the backend
	ResolverPrimitive                     // Direct primitive reference
	ResolverCallback                      // Render function
)

// String returns the string representation of the ResolverKind.
func (k ResolverKind) String() string {
	switch k {
	case ResolverUnset:
		return "Unset"
	case ResolverNamed:
		return "Named"
	case ResolverPrimitive:
		return "Primitive"
	case ResolverCallback:
		return "Callback"
	default:
		return "Unknown"
	}
}

// Resolver is a render rule for one node, mark or component type.
type Resolver[O any] struct {
	kind ResolverKind
	name string
	prim Primitive
	fn   func(RenderContext[O]) O
}

// Named returns a resolver that refers to a primitive by name.
func Named[O any](name string) Resolver[O] {
	if name == "" {
		return Resolver[O]{}
	}
	return Resolver[O]{kind: ResolverNamed, name: name}
}

// Prim returns a resolver bound directly to a primitive.
func Prim[O any](p Primitive) Resolver[O] {
	if p == nil {
		return Resolver[O]{}
	}
	return Resolver[O]{kind: ResolverPrimitive, prim: p}
}

// Callback returns a resolver that renders with fn. The callback owns the
// shape of its result.
func Callback[O any](fn func(RenderContext[O]) O) Resolver[O] {
	if fn == nil {
		return Resolver[O]{}
	}
	return Resolver[O]{kind: ResolverCallback, fn: fn}
}

// Kind returns the resolver variant.
func (r Resolver[O]) Kind() ResolverKind { return r.kind }

// IsSet reports whether the resolver holds a rule.
func (r Resolver[O]) IsSet() bool { return r.kind != ResolverUnset }

// Name returns the symbolic name of a Named resolver.
func (r Resolver[O]) Name() string { return r.name }

// Resolvers maps node and mark types, and component types, to resolvers.
type Resolvers[O any] struct {
	// Nodes is keyed by node or mark type, including TypeBlok, the
	// fallback for unregistered components.
	Nodes map[string]Resolver[O]

	// Components is keyed by component type.
	Components map[string]Resolver[O]
}

// Merge returns a table where every set entry of override replaces the same
// entry of r. Neither input is modified.
func (r Resolvers[O]) Merge(override Resolvers[O]) Resolvers[O] {
	return Resolvers[O]{
		Nodes:      merge.Overlay(r.Nodes, onlySet(override.Nodes)),
		Components: merge.Overlay(r.Components, onlySet(override.Components)),
	}
}

func onlySet[O any](table map[string]Resolver[O]) map[string]Resolver[O] {
	out := make(map[string]Resolver[O], len(table))
	for k, res := range table {
		if res.IsSet() {
			out[k] = res
		}
	}
	return out
}

func (r Resolvers[O]) node(t string) Resolver[O] {
	return r.Nodes[t]
}

// RenderContext is what a Callback resolver receives. Which fields are set
// depends on the node shape:
//
//   - blocks with content: Children and Attrs
//   - blocks with attributes only: Attrs
//   - marks: Text (the output being wrapped, also the only element of
//     Children) and, for attributed marks, Attrs
//   - components: ID, Component, UID, Fields and Attrs
type RenderContext[O any] struct {
	// Type is the node, mark or component type being rendered.
	Type string

	Children []O
	Attrs    Attrs
	Text     O

	// Component instance data.
	ID        string
	Component string
	UID       string
	Fields    map[string]any

	pass *pass[O]
}

// Element binds an element tag through the backend.
func (c RenderContext[O]) Element(tag string, attrs Attrs, children ...O) O {
	return c.pass.r.backend.Bind(Tag(tag), attrs, children)
}

// Bind binds any primitive through the backend.
func (c RenderContext[O]) Bind(p Primitive, attrs Attrs, children ...O) O {
	return c.pass.r.backend.Bind(p, attrs, children)
}

// TextNode creates a literal text node through the backend.
func (c RenderContext[O]) TextNode(text string) O {
	return c.pass.r.backend.Text(text)
}

// Placeholder renders the labelled fallback for the current type, keeping
// the rendered children.
func (c RenderContext[O]) Placeholder(kind PlaceholderKind) O {
	return c.pass.placeholder(Placeholder{Kind: kind, Type: c.Type}, c.Children)
}
