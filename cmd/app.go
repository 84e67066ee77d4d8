package cmd

import (
	"context"
	"fmt"

	"repo-reconciler/core/config"
	"repo-reconciler/core/database"
	"repo-reconciler/core/enrich"
	"repo-reconciler/core/history"
	"repo-reconciler/core/logger"
	"repo-reconciler/core/snapshot"
	"repo-reconciler/core/storage"
	"repo-reconciler/feature/analysis"
	"repo-reconciler/feature/gitlab"

	"go.uber.org/zap"
)

// app bundles the dependencies shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    snapshot.Store
	recorder history.Recorder
}

// bootstrap loads configuration, builds the logger and opens the snapshot store.
// History is connected only when database.enabled is set; a failed connection is
// then fatal.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	var client storage.Client
	if cfg.Snapshot.Backend == snapshot.BackendS3 {
		if client, err = storage.NewClient(cfg.Storage); err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
	}
	store, err := snapshot.New(cfg.Snapshot, client, cfg.Storage.Bucket)
	if err != nil {
		return nil, err
	}

	var recorder history.Recorder = history.Noop{}
	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, err
		}
		hs := history.NewStore(db)
		if err := hs.Migrate(ctx); err != nil {
			return nil, err
		}
		recorder = hs
		logg.Debug("Run history enabled", zap.String("database", cfg.Database.Name))
	}

	return &app{cfg: cfg, logger: logg, store: store, recorder: recorder}, nil
}

// paths maps configured report names onto analysis paths.
func (a *app) paths() analysis.Paths {
	return analysis.Paths{
		GitHub:    a.cfg.Reports.GitHub,
		GitLab:    a.cfg.Reports.GitLab,
		Archive:   a.cfg.Reports.Archive,
		Staleness: a.cfg.Reports.Staleness,
		Legacy:    a.cfg.Reports.Legacy,
	}
}

// runner builds an analysis runner. With enrichment, the GitLab settings must be
// present since the pool calls the GitLab API.
func (a *app) runner(withEnrichment bool) (*analysis.Runner, error) {
	if err := a.cfg.ValidateReports(); err != nil {
		return nil, err
	}
	r := analysis.NewRunner(a.store, a.recorder, a.paths(), a.logger)
	if !withEnrichment {
		return r, nil
	}
	if err := a.cfg.ValidateGitLab(); err != nil {
		return nil, err
	}
	pool := enrich.NewPool(a.logger, a.cfg.Enrich.Concurrency)
	pool.MaxConcurrency = a.cfg.Enrich.MaxConcurrency
	client := gitlab.NewClient(a.cfg.GitLab, nil)
	return r.WithEnrichment(pool, client.LastRepositoryUpdate), nil
}
