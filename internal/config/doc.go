// Package config loads the richtext configuration file.
//
// The configuration lives in richtext.toml or richtext.json in the working
// directory. A missing file is not fatal for the server; callers fall back
// to New() and log a warning.
//
// # Configuration File Structure
//
//	[server]
//	addr = ":8080"
//	editor_path = "/editor"
//
//	[bridge]
//	enabled = true
//
//	[richtext]
//	omit_paragraph_in_list_items = true
//
//	[richtext.components]
//	teaser = "teaser-card"
//
//	[richtext.classes.heading]
//	"1" = "text-4xl"
//
//	[sink.s3]
//	bucket = "rendered"
//	prefix = "posts/"
//
// The JSON form uses the same sections with camelCase keys.
package config
