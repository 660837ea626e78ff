// Package preview pushes re-rendered documents to open preview pages.
//
// A preview page subscribes over a websocket to one story. When the editor
// pushes a changed document, the server renders it and the Hub sends the
// HTML to every subscriber of that story:
//
//	hub := preview.NewHub(preview.WithLogger(logger))
//	r.Get("/preview/ws", hub.HandleWebSocket)
//	...
//	hub.NotifyInput("home", html)
//
// Pages include ClientScript and a #richtext-preview container carrying the
// story and websocket path as data attributes.
package preview
