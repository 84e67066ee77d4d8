package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"repo-reconciler/core/reconcile"
	"repo-reconciler/feature/analysis"

	"github.com/spf13/cobra"
)

var (
	compareEnrichFlag bool
	compareJSONFlag   bool
	compareDryRunFlag bool
)

// compareCmd groups the analyses
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Cross-check the GitHub and GitLab snapshots",
	Long: `Runs one analysis over the GitHub and GitLab snapshots and writes the discrepancy
report. Both snapshots must exist; harvest them first.`,
}

func newCompareCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			def, err := analysis.Lookup(name, a.paths())
			if err != nil {
				return err
			}
			runner, err := a.runner(compareEnrichFlag && def.Enrichable)
			if err != nil {
				return err
			}

			report, err := runner.Run(ctx, def, analysis.Options{
				Enrich: compareEnrichFlag,
				Write:  !compareDryRunFlag,
				Record: true,
			})
			if err != nil {
				return err
			}

			if compareJSONFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printSummary(report)
			return nil
		},
	}
}

func printSummary(report *analysis.Report) {
	c := report.Result.Counters
	fmt.Printf("\n--- %s ---\n", report.Analysis)
	fmt.Printf("Total:          %d\n", c.Total)
	fmt.Printf("Missing:        %d\n", c.Missing)
	fmt.Printf("Resolved:       %d\n", c.Resolved)
	fmt.Printf("Unresolved:     %d\n", c.Unresolved)
	if report.LeftDuplicates > 0 || report.RightDuplicates > 0 {
		fmt.Printf("Duplicates:     %d left, %d right\n", report.LeftDuplicates, report.RightDuplicates)
	}

	statuses := make([]string, 0, len(c.ByStatus))
	for s := range c.ByStatus {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	if len(statuses) > 0 {
		fmt.Println("\nBy status:")
		for _, s := range statuses {
			fmt.Printf("  %-24s %d\n", s, c.ByStatus[reconcile.Status(s)])
		}
	}
	if report.Enrichment != nil {
		fmt.Printf("\nEnriched:       %d filled, %d failed\n", report.Enrichment.Filled, report.Enrichment.Failed)
	}
	if report.Output != "" {
		fmt.Printf("\nReport:         %s\n", report.Output)
	}
	fmt.Println("-----------------------------")
}

func init() {
	compareCmd.PersistentFlags().BoolVar(&compareEnrichFlag, "enrich", false, "backfill GitLab repository timestamps first (staleness only)")
	compareCmd.PersistentFlags().BoolVar(&compareJSONFlag, "json", false, "print the full result as JSON")
	compareCmd.PersistentFlags().BoolVar(&compareDryRunFlag, "dry-run", false, "do not write the report snapshot")

	compareCmd.AddCommand(newCompareCmd("archive", "GitHub repositories whose GitLab mirror is not archived"))
	compareCmd.AddCommand(newCompareCmd("staleness", "Compare GitHub pushed_at with GitLab repository activity"))
	compareCmd.AddCommand(newCompareCmd("legacy", "GitLab projects that are still live or missing on GitHub"))
	RootCmd.AddCommand(compareCmd)
}
