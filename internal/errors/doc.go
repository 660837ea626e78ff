// Package errors provides coded, actionable errors for the richtext tools.
//
// Library packages return plain sentinel errors. The CLI and the HTTP
// server classify them into RichtextError values at the edge, which adds a
// stable code, an explanation and, for documents, the location of the
// problem in the input.
//
// # Error Codes
//
//   - E100-E119: document errors (invalid root, malformed JSON)
//   - E120-E139: configuration errors
//   - E140-E149: CLI errors
//   - E150-E169: output errors (format, sinks)
//   - E170-E179: input errors
//
// # Usage
//
//	root, err := richtext.ParseRoot(src)
//	if err != nil {
//	    errors.PrintError(errors.FromDocument(err, "post.json", src))
//	}
//	// Output:
//	// ERROR E101: Malformed document
//	//
//	//   post.json:3:14
//	//
//	//      1 │ {
//	//      2 │   "type": "doc",
//	//   →  3 │   "content": [}
//	//        │              ^
//	//
//	//   Learn more: https://vango.dev/docs/richtext/errors/E101
package errors
