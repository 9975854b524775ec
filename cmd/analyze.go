package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/seoscore/analyzer"
	"github.com/seo-optimizer/seoscore/errs"
)

var (
	flagJSON     bool
	flagNoRender bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a single page and print its SEO report",
	Long: `Analyze fetches the page (falling back to a headless browser when the plain
fetch fails), scores it and prints the report.

Examples:
  seoscore analyze example.com
  seoscore analyze https://example.com/blog --json
  seoscore analyze https://example.com --no-render`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the full report as indented JSON")
	analyzeCmd.Flags().BoolVar(&flagNoRender, "no-render", false, "Disable the headless browser fallback")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if flagNoRender {
		cfg.Render.Enabled = false
	}

	report, err := newAnalyzer(cfg).Analyze(cmd.Context(), args[0])
	if err != nil {
		e := errs.From(err)
		errOut := cmd.ErrOrStderr()
		if e.Details != "" {
			fmt.Fprintln(errOut, e.Details)
		}
		for _, s := range e.Suggestions {
			fmt.Fprintf(errOut, "  - %s\n", s)
		}
		return e
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return analyzer.WriteSummary(out, report)
}
