package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/vango-dev/richtext/internal/errors"
	"github.com/vango-dev/richtext/pkg/markdown"
)

func importCmd(g *globals) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "import [file.md|-]",
		Short: "Convert Markdown to a rich-text document",
		Long: `Convert a Markdown file to the JSON rich-text document that render and
the HTTP API accept.

Examples:
  richtext import README.md > readme.json
  richtext import notes.md --out docs/notes.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			_, data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc, err := markdown.Convert(data)
			if err != nil {
				return errors.New("E170").Wrap(err)
			}

			body, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return errors.New("E151").Wrap(err)
			}
			body = append(body, '\n')
			return writeOutput(cmd.Context(), cmd, cfg, out, "application/json", body)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, directory/ or s3://bucket/key (default: stdout)")

	return cmd
}
