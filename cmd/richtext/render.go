package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/richtext/internal/errors"
	"github.com/vango-dev/richtext/pkg/engine"
	"github.com/vango-dev/richtext/pkg/richtext"
)

type renderOptions struct {
	format         string
	from           string
	omitParagraphs bool
	editable       bool
	pretty         bool
	out            string
	store          bool
}

func renderCmd(g *globals) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a document",
		Long: `Render a rich-text document to HTML, a JSON node tree or the binary
tree encoding.

The input is a JSON document (a node or an array of nodes) or Markdown.
Files ending in .md are read as Markdown unless --from says otherwise.
Without a file, or with "-", the document is read from stdin.

Examples:
  richtext render post.json
  richtext render post.md --format json --pretty
  cat post.json | richtext render - --out public/post.html
  richtext render post.json --out s3://rendered/posts/post.html
  richtext render post.json --store`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, g, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "html", "output format (html, json, binary)")
	cmd.Flags().StringVar(&opts.from, "from", "", "input format (json, markdown)")
	cmd.Flags().BoolVar(&opts.omitParagraphs, "omit-paragraphs", false, "render list item paragraphs inline")
	cmd.Flags().BoolVar(&opts.editable, "editable", false, "add visual editor attributes to components")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent HTML and JSON output")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file, directory/ or s3://bucket/key (default: stdout)")
	cmd.Flags().BoolVar(&opts.store, "store", false, "store output in the configured sink")
	cmd.MarkFlagsMutuallyExclusive("out", "store")

	return cmd
}

func runRender(cmd *cobra.Command, g *globals, opts *renderOptions, args []string) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	format, err := engine.ParseFormat(opts.format)
	if err != nil {
		return errors.New("E150").Wrap(err)
	}
	name, data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	from, err := inputFormat(opts.from, name)
	if err != nil {
		return err
	}
	root, err := parseDocument(name, data, from)
	if err != nil {
		return err
	}

	// Flags override the configuration only when given.
	var override richtext.Options
	if cmd.Flags().Changed("omit-paragraphs") {
		override.OmitParagraphInListItems = richtext.Bool(opts.omitParagraphs)
	}
	if cmd.Flags().Changed("editable") {
		override.Editable = richtext.Bool(opts.editable)
	}

	start := time.Now()
	e := engine.New(cfg.Richtext, engine.WithLogger(slog.Default()))
	res, err := e.Render(cmd.Context(), engine.Request{
		Root:    root,
		Options: &override,
		Format:  format,
		Pretty:  opts.pretty,
	})
	if err != nil {
		return errors.FromError(err, "E151")
	}
	slog.Debug("rendered document",
		"input", name,
		"from", from,
		"format", format,
		"nodes", res.Stats.Nodes,
		"placeholders", res.Stats.Placeholders,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	if res.Stats.Placeholders > 0 {
		slog.Warn("document has unresolved nodes", "placeholders", res.Stats.Placeholders)
	}

	if opts.store {
		return storeOutput(cmd.Context(), cmd, cfg, name, res.ContentType, res.Body)
	}
	return writeOutput(cmd.Context(), cmd, cfg, opts.out, res.ContentType, res.Body)
}
