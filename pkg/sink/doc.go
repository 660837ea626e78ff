// Package sink stores rendered documents on disk or in S3.
//
//	out, _ := sink.NewDiskSink("out")
//	loc, err := out.Put(ctx, "posts/home.html", "text/html; charset=utf-8", html)
//
// An empty key stores under a generated UUID name.
package sink
