package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DiskSink stores output below a directory.
type DiskSink struct {
	dir string
}

// NewDiskSink creates a DiskSink, creating dir if needed.
func NewDiskSink(dir string) (*DiskSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("sink: create %s: %w", dir, err)
	}
	return &DiskSink{dir: dir}, nil
}

// Dir returns the sink root.
func (s *DiskSink) Dir() string {
	return s.dir
}

// Put writes body to dir/key, creating parent directories. The file is
// written to a temporary name first and renamed, so readers never see a
// partial document.
func (s *DiskSink) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := Key(key, Extension(contentType))
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("sink: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".richtext-*")
	if err != nil {
		return "", fmt.Errorf("sink: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("sink: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("sink: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("sink: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("sink: %w", err)
	}
	return path, nil
}
