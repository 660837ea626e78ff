package sink

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Common sink errors.
var (
	// ErrInvalidKey is returned for keys that escape the sink root.
	ErrInvalidKey = errors.New("sink: invalid key")

	// ErrInvalidTarget is returned by ParseTarget for malformed targets.
	ErrInvalidTarget = errors.New("sink: invalid target")
)

// Sink stores rendered output.
type Sink interface {
	// Put stores body under key and returns where it was stored. An empty
	// key stores under a generated name.
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// Key returns key cleaned to a relative slash path. An empty key becomes a
// random UUID with the extension ext.
func Key(key, ext string) (string, error) {
	if key == "" {
		return uuid.NewString() + ext, nil
	}
	cleaned := path.Clean(strings.TrimPrefix(key, "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// Extension returns the file extension for a content type.
func Extension(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "text/html"):
		return ".html"
	case strings.HasPrefix(contentType, "application/json"):
		return ".json"
	default:
		return ".bin"
	}
}

// Target is a parsed output destination.
type Target struct {
	// Scheme is "s3" or "file".
	Scheme string
	Bucket string
	Key    string
}

// ParseTarget parses "s3://bucket/key" or a file path.
func ParseTarget(target string) (Target, error) {
	rest, ok := strings.CutPrefix(target, "s3://")
	if !ok {
		if target == "" {
			return Target{}, ErrInvalidTarget
		}
		return Target{Scheme: "file", Key: target}, nil
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Target{}, ErrInvalidTarget
	}
	return Target{Scheme: "s3", Bucket: bucket, Key: key}, nil
}

// Instrumented wraps s and reports every Put to record, for example
// (*middleware.Metrics).RecordSinkWrite.
func Instrumented(s Sink, name string, record func(sink string, err error)) Sink {
	return &instrumented{Sink: s, name: name, record: record}
}

type instrumented struct {
	Sink
	name   string
	record func(string, error)
}

func (i *instrumented) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	loc, err := i.Sink.Put(ctx, key, contentType, body)
	if i.record != nil {
		i.record(i.name, err)
	}
	return loc, err
}
