package main

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/richtext/internal/config"
	"github.com/vango-dev/richtext/internal/errors"
	"github.com/vango-dev/richtext/pkg/markdown"
	"github.com/vango-dev/richtext/pkg/richtext"
	"github.com/vango-dev/richtext/pkg/sink"
)

// loadConfig loads the --config file, or richtext.toml / richtext.json from
// the working directory. Without an explicit path a missing file is not an
// error: defaults are used and a warning is logged.
func loadConfig(g *globals) (*config.Config, error) {
	if g.configPath != "" {
		return config.LoadFile(g.configPath)
	}
	cfg, err := config.Load(".")
	if err != nil {
		var re *errors.RichtextError
		if stderrors.As(err, &re) && re.Code == "E141" {
			slog.Warn("no richtext configuration found, using defaults",
				"hint", "run 'richtext init' to create one")
			return config.New(), nil
		}
		return nil, err
	}
	slog.Debug("loaded configuration", "path", cfg.Path())
	return cfg, nil
}

// readInput reads the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, args []string) (string, []byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, errors.New("E140").Wrap(err)
		}
		return "<stdin>", data, nil
	}

	name := args[0]
	data, err := os.ReadFile(name)
	if err != nil {
		return "", nil, errors.New("E140").
			WithDetail("Cannot read " + name).
			Wrap(err)
	}
	return name, data, nil
}

// inputFormat resolves --from, guessing from the file extension when empty.
func inputFormat(from, name string) (string, error) {
	switch strings.ToLower(from) {
	case "json", "markdown":
		return strings.ToLower(from), nil
	case "md":
		return "markdown", nil
	case "":
		switch strings.ToLower(filepath.Ext(name)) {
		case ".md", ".markdown":
			return "markdown", nil
		}
		return "json", nil
	default:
		return "", errors.New("E170").
			WithDetail("Unknown input format " + from).
			WithSuggestion("Use --from json or --from markdown")
	}
}

// parseDocument decodes data in the given input format.
func parseDocument(name string, data []byte, format string) (richtext.Root, error) {
	if format == "markdown" {
		doc, err := markdown.Convert(data)
		if err != nil {
			return richtext.Root{}, errors.New("E170").Wrap(err)
		}
		return richtext.Single(doc), nil
	}

	root, err := richtext.ParseRoot(data)
	if err != nil {
		return richtext.Root{}, errors.FromDocument(err, name, data)
	}
	return root, nil
}

// writeOutput writes body to stdout when target is empty, to S3 for
// s3://bucket/key targets and to disk otherwise. A target ending in a
// slash names a directory; the file gets a generated name.
func writeOutput(ctx context.Context, cmd *cobra.Command, cfg *config.Config, target, contentType string, body []byte) error {
	if target == "" {
		_, err := cmd.OutOrStdout().Write(body)
		return err
	}

	t, err := sink.ParseTarget(target)
	if err != nil {
		return errors.New("E160").Wrap(err).
			WithSuggestion("Use a file path or s3://bucket/key")
	}

	var s sink.Sink
	key := t.Key
	switch t.Scheme {
	case "s3":
		s3cfg := cfg.Sink.S3
		client := sink.NewS3Client(sink.S3Options{
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			PathStyle: s3cfg.PathStyle,
		})
		prefix := ""
		if t.Bucket == s3cfg.Bucket {
			prefix = s3cfg.Prefix
		}
		s = sink.NewS3Sink(client, t.Bucket, prefix)
	default:
		dir, file := filepath.Split(t.Key)
		if dir == "" {
			dir = "."
		}
		disk, err := sink.NewDiskSink(dir)
		if err != nil {
			return errors.New("E160").Wrap(err)
		}
		s, key = disk, file
	}

	loc, err := s.Put(ctx, key, contentType, body)
	if err != nil {
		return errors.New("E160").Wrap(err)
	}
	success(cmd, "Wrote %s (%d bytes)", loc, len(body))
	return nil
}

// configuredSink returns the sink of the configuration file: S3 when a
// bucket is set, the sink directory otherwise.
func configuredSink(cfg *config.Config) (sink.Sink, error) {
	var (
		s    sink.Sink
		name string
	)
	if s3cfg := cfg.Sink.S3; s3cfg.Bucket != "" {
		client := sink.NewS3Client(sink.S3Options{
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			PathStyle: s3cfg.PathStyle,
		})
		s, name = sink.NewS3Sink(client, s3cfg.Bucket, s3cfg.Prefix), "s3"
	} else {
		disk, err := sink.NewDiskSink(cfg.Sink.Dir)
		if err != nil {
			return nil, errors.New("E160").Wrap(err)
		}
		s, name = disk, "disk"
	}
	return sink.Instrumented(s, name, func(name string, err error) {
		slog.Debug("sink write", "sink", name, "ok", err == nil)
	}), nil
}

// storeOutput stores body in the configured sink under the input's base
// name with ext. Stdin input gets a generated name.
func storeOutput(ctx context.Context, cmd *cobra.Command, cfg *config.Config, input, contentType string, body []byte) error {
	s, err := configuredSink(cfg)
	if err != nil {
		return err
	}
	key := ""
	if input != "<stdin>" {
		base := filepath.Base(input)
		key = strings.TrimSuffix(base, filepath.Ext(base)) + sink.Extension(contentType)
	}
	loc, err := s.Put(ctx, key, contentType, body)
	if err != nil {
		return errors.New("E160").Wrap(err)
	}
	success(cmd, "Stored %s (%d bytes)", loc, len(body))
	return nil
}
