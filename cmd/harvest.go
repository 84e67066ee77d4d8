package cmd

import (
	"context"
	"fmt"
	"time"

	"repo-reconciler/core/snapshot"
	"repo-reconciler/core/tabular"
	"repo-reconciler/feature/github"
	"repo-reconciler/feature/gitlab"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var harvestEnrichFlag bool

// harvestCmd groups the inventory producers
var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest a repository inventory into a CSV snapshot",
}

// harvestGitHubCmd represents the harvest github command
var harvestGitHubCmd = &cobra.Command{
	Use:   "github",
	Short: "Harvest all repositories of the configured GitHub organization",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()
		if err := a.cfg.ValidateGitHub(); err != nil {
			return err
		}

		client := github.NewClient(a.cfg.GitHub, nil)
		return harvest(cmd.Context(), a, "github", a.cfg.Reports.GitHub, client.Harvest)
	},
}

// harvestGitLabCmd represents the harvest gitlab command
var harvestGitLabCmd = &cobra.Command{
	Use:   "gitlab",
	Short: "Harvest all projects of the configured GitLab group and its subgroups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()
		if err := a.cfg.ValidateGitLab(); err != nil {
			return err
		}

		client := gitlab.NewClient(a.cfg.GitLab, nil)
		if err := harvest(ctx, a, "gitlab", a.cfg.Reports.GitLab, client.Harvest); err != nil {
			return err
		}
		if !harvestEnrichFlag {
			return nil
		}

		runner, err := a.runner(true)
		if err != nil {
			return err
		}
		_, err = runner.EnrichGitLab(ctx)
		return err
	},
}

func harvest(ctx context.Context, a *app, source, name string, fetch func(context.Context) (tabular.Table, error)) error {
	start := time.Now()
	a.logger.Info("Harvesting inventory...", zap.String("source", source))

	table, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("%s harvest failed: %w", source, err)
	}
	if err := snapshot.WriteTable(ctx, a.store, name, table.Header, table.Records); err != nil {
		return fmt.Errorf("failed to write %s snapshot: %w", source, err)
	}

	a.logger.Info("Inventory harvested",
		zap.String("source", source),
		zap.Int("rows", table.Len()),
		zap.String("location", a.store.Location(name)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func init() {
	harvestGitLabCmd.Flags().BoolVar(&harvestEnrichFlag, "enrich", false, "backfill last_repository_updated_at after harvesting")
	harvestCmd.AddCommand(harvestGitHubCmd)
	harvestCmd.AddCommand(harvestGitLabCmd)
	RootCmd.AddCommand(harvestCmd)
}
