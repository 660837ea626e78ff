// Package markdown imports CommonMark documents into the rich-text model.
//
// Paragraphs, headings, lists, blockquotes, code blocks, thematic breaks
// and images map to their block types. Emphasis, strong emphasis, code
// spans, links and GFM strikethrough map to marks:
//
//	doc, err := markdown.Convert([]byte("# Title\n\nSome *text*"))
//	html, err := e.HTML(richtext.Single(doc), nil)
package markdown
