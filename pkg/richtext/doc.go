// Package richtext renders structured rich-text documents into output trees.
//
// A document is a JSON tree of typed nodes as delivered by a headless CMS:
// text nodes carrying marks, block nodes (paragraphs, lists, headings, ...)
// and component nodes embedding content instances. The renderer walks the
// tree and asks a resolver table how to render each type.
//
// # Output
//
// The renderer does not know what an output node is. It is generic over O
// and builds every node through a Backend[O]:
//
//	r := richtext.New[*vdom.VNode](vnode.NewBackend(nil), richtext.Config[*vdom.VNode]{})
//	nodes, err := r.RenderDocument(root, nil)
//
// # Resolvers
//
// A Resolver is one of three variants:
//
//   - Named: a symbolic name the backend looks up (a registered component)
//   - Prim: a primitive bound directly, such as Tag("p")
//   - Callback: a function that builds the output itself
//
// Named and primitive resolvers receive the node's attributes and rendered
// children. Callbacks receive a RenderContext and own the shape of their
// result.
//
// # Configuration
//
// The base Config given to New is merged with DefaultConfig once and then
// treated as an immutable snapshot. Each render call may pass an override;
// the effective configuration lives for that call only. Classes merge deeply
// (see package merge), resolver entries are replaced per key.
//
// # Failure
//
// Rendering never fails on a node. Unknown block and mark types, component
// types without a resolver, names the backend cannot look up and panicking
// callbacks all render Backend.Placeholder, are logged and are reported to
// the hook set with WithPlaceholderHook. Only a root that is neither a node
// nor a node sequence returns ErrInvalidRoot.
//
// Rendering recurses once per nesting level. There is no depth limit, so a
// pathologically deep document can exhaust the goroutine stack.
package richtext
