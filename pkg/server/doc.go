// Package server is the richtext HTTP API.
//
// Routes:
//
//	POST /api/render?format=html|json|binary   render a document
//	POST /api/preview/{story}                  push a document to previews
//	GET  /preview/ws?story=ID                  live preview websocket
//	GET  /preview/{story}                      live preview page
//	GET  /editor                               visual editor shell
//	GET  /healthz
//	GET  /metrics
//
// The preview routes exist only when the bridge is enabled. Request bodies
// are {"document": ..., "options": ...}; options override the configured
// renderer options for one request. Requests carrying the _storyblok query
// parameter render with editable attributes.
//
// Errors are JSON objects with a code, a message and, for malformed
// documents, the line and column of the problem.
//
// The router is chi with request ids, panic recovery, Prometheus request
// metrics and, when tracing is enabled, OpenTelemetry server spans:
//
//	srv := server.New(cfg)
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	err := srv.Run(ctx)
package server
