// Package engine renders documents in the output formats served by the
// HTTP API and the CLI.
//
// HTML goes through the vnode backend and the HTML serializer, JSON and
// binary through the tree backend. Every render is traced and, when an
// Engine has metrics, counted.
package engine
