package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// enrichCmd groups snapshot enrichment commands
var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Backfill missing snapshot fields from the upstream API",
}

// enrichGitLabCmd represents the enrich gitlab command
var enrichGitLabCmd = &cobra.Command{
	Use:   "gitlab",
	Short: "Backfill last_repository_updated_at in the GitLab snapshot",
	Long: `Fetches the latest commit date of every GitLab project that does not have one yet,
using a bounded worker pool, and writes the snapshot back. Re-running only fetches
what is still missing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		runner, err := a.runner(true)
		if err != nil {
			return err
		}
		stats, err := runner.EnrichGitLab(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Workers: %d  Filled: %d  Skipped: %d  Failed: %d\n",
			stats.Workers, stats.Filled, stats.Skipped, stats.Failed)
		return nil
	},
}

func init() {
	enrichCmd.AddCommand(enrichGitLabCmd)
	RootCmd.AddCommand(enrichCmd)
}
