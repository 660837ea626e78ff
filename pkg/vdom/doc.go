// Package vdom provides the virtual DOM rich-text documents render into.
//
// VNode is the fundamental building block representing elements, text,
// fragments, components, and raw HTML. Props holds attributes.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    Element("h1", Text("Title")),
//	    P(Text("Content")),
//	)
//
// Arguments may be attributes (Attr, []Attr, Props), children (*VNode,
// []*VNode, Component) or strings, which become text nodes. Class
// attributes accumulate instead of replacing each other.
//
// # Components
//
// A KindComponent node defers rendering to its Component until the tree is
// serialized. The HTML renderer in package render expands it in place.
package vdom
