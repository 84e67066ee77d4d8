package cmd

import (
	"fmt"

	"repo-reconciler/core/config"

	"github.com/spf13/cobra"
)

var runsLimitFlag int

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent comparison runs from history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()
		if !a.cfg.Database.Enabled {
			return fmt.Errorf("%w: DATABASE_ENABLED", config.ErrMissing)
		}

		runs, err := a.recorder.List(cmd.Context(), runsLimitFlag)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("%s  %-10s total=%-5d missing=%-5d resolved=%-5d unresolved=%-5d %s\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.Analysis,
				r.Total, r.Missing, r.Resolved, r.Unresolved, r.Output)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimitFlag, "limit", 20, "number of runs to show")
	RootCmd.AddCommand(runsCmd)
}
