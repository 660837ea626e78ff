package main

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// setupLogging installs a charm logger writing to w as the default slog
// handler. Verbose enables debug messages.
func setupLogging(w io.Writer, verbose bool) *slog.Logger {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
