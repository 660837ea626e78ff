package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/richtext/internal/config"
	"github.com/vango-dev/richtext/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default configuration file",
		Long: `Write richtext.toml (or richtext.json with --format json) with the
default configuration.

Examples:
  richtext init
  richtext init site --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			name := config.TOMLFileName
			switch format {
			case "toml":
			case "json":
				name = config.JSONFileName
			default:
				return errors.New("E120").
					WithDetail("Unknown configuration format " + format).
					WithSuggestion("Use --format toml or --format json")
			}

			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New("E120").
					WithDetail(path + " already exists").
					WithSuggestion("Pass --force to overwrite it")
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.New("E120").Wrap(err)
			}
			if err := config.New().SaveTo(path); err != nil {
				return err
			}

			success(cmd, "Created %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "toml", "file format (toml, json)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
