// Package render serializes VNode trees to HTML.
//
// The render package converts the output of the richtext VNode backend into
// HTML strings or streams:
//
//   - HTML5 compliant element rendering
//   - Text and attribute escaping (XSS prevention)
//   - Void element handling (br, hr, img, etc.)
//   - Boolean attribute handling
//   - Component expansion at serialization time
//   - Full page rendering with DOCTYPE, head, body
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// A rendered document is usually several sibling trees:
//
//	html, err := renderer.RenderNodesToString(nodes)
//
// # Security
//
// All text content is escaped. Tag and attribute names that could break out
// of markup are rejected or skipped. Raw HTML can be inserted using KindRaw
// nodes, but should only be used with trusted content.
package render
