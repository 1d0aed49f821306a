// Package cmd: convert command.
// This is the main command that orchestrates the pipeline:
// load → parse (validate, migrate) → serialize → render → write.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/blockpipe/core"
	"github.com/gaurav-prasanna/blockpipe/core/fetch"
	"github.com/gaurav-prasanna/blockpipe/core/output"
	"github.com/gaurav-prasanna/blockpipe/core/parser"
	"github.com/gaurav-prasanna/blockpipe/core/render"
)

// Flag variables.
var (
	flagHTML      bool
	flagPDF       bool
	flagMarkdown  bool
	flagJSON      bool
	flagOutputDir string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file|url>",
	Short: "Parse a block document and write it in the specified output format",
	Long: `Convert loads a block document from a file or URL, parses and validates
every block, and writes the result as re-serialized markup (HTML), the
parsed block tree (JSON), Markdown, or a PDF validation report.

Examples:
  blockpipe convert post.html --html
  blockpipe convert post.html --json --output_dir ./out
  blockpipe convert https://example.com/post.html --pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	// Output format flags (mutually exclusive).
	convertCmd.Flags().BoolVar(&flagHTML, "html", false, "Output re-serialized block markup")
	convertCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF validation report")
	convertCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown")
	convertCmd.Flags().BoolVar(&flagJSON, "json", false, "Output parsed block tree as JSON")

	convertCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	location := args[0]

	renderer, err := selectRenderer()
	if err != nil {
		return err
	}

	p, log, err := newParser()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	report, err := buildReport(cmd.Context(), location, fetch.New(), p)
	if err != nil {
		return err
	}

	data, err := renderer.Render(report)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	path, err := writer.Write(location, data, renderer.Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)
	return nil
}

// buildReport loads a document and runs it through the parser.
func buildReport(ctx context.Context, location string, loader core.Loader, p *parser.Parser) (*core.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	doc, err := loader.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	blocks := p.ParseDocument(doc.Content)
	return &core.Report{
		Source:      doc.Location,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Blocks:      blocks,
		Serialized:  p.SerializeDocument(blocks),
	}, nil
}

// selectRenderer creates the Renderer chosen by the format flags. Exactly
// one format must be selected.
func selectRenderer() (core.Renderer, error) {
	formatCount := 0
	for _, set := range []bool{flagHTML, flagPDF, flagMarkdown, flagJSON} {
		if set {
			formatCount++
		}
	}
	if formatCount == 0 {
		return nil, fmt.Errorf("exactly one output format is required: --html, --pdf, --markdown, or --json")
	}
	if formatCount > 1 {
		return nil, fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}

	switch {
	case flagHTML:
		return render.NewHTMLRenderer(), nil
	case flagMarkdown:
		return render.NewMarkdownRenderer(), nil
	case flagJSON:
		return render.NewJSONRenderer(), nil
	default:
		return render.NewPDFRenderer(), nil
	}
}
