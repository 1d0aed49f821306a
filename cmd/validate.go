package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/blockpipe/core"
	"github.com/gaurav-prasanna/blockpipe/core/fetch"
	"github.com/gaurav-prasanna/blockpipe/core/render"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|url>",
	Short: "Report blocks whose markup does not match their definition",
	Long: `Validate parses a block document and lists every block that stays invalid
after migration. It exits with a non-zero status when any block is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, log, err := newParser()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	report, err := buildReport(cmd.Context(), args[0], fetch.New(), p)
	if err != nil {
		return err
	}

	summary := render.Summarize(report.Blocks)
	render.Walk(report.Blocks, func(b *core.ParsedBlock, depth int) {
		if b.IsValid {
			return
		}
		fmt.Fprintf(os.Stdout, "✗ %*s%s\n", depth*2, "", b.Name)
		for _, issue := range b.ValidationIssues {
			fmt.Fprintf(os.Stdout, "    %s: "+issue.Template+"\n", append([]any{issue.Level}, issue.Args...)...)
		}
	})
	fmt.Fprintf(os.Stdout, "%d blocks, %d invalid\n", summary.Blocks, summary.Invalid)

	if summary.Invalid > 0 {
		return fmt.Errorf("%d invalid blocks in %s", summary.Invalid, report.Source)
	}
	return nil
}
