package report

import (
	"context"
	"time"

	"repo-reconciler/core/history"
	"repo-reconciler/core/reconcile"
	"repo-reconciler/feature/analysis"

	"go.uber.org/zap"
)

const (
	// DefaultRunsLimit is used when no limit is requested.
	DefaultRunsLimit = 20
	// MaxRunsLimit caps the runs page size.
	MaxRunsLimit = 200
)

// Service serves comparisons and run history.
type Service struct {
	runner   *analysis.Runner
	recorder history.Recorder
	cache    *reconcile.Cache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewService creates a new report service. A nil recorder serves an empty history.
func NewService(runner *analysis.Runner, recorder history.Recorder, ttl time.Duration, logger *zap.Logger) *Service {
	if recorder == nil {
		recorder = history.Noop{}
	}
	return &Service{
		runner:   runner,
		recorder: recorder,
		cache:    reconcile.NewCache(),
		ttl:      ttl,
		logger:   logger,
	}
}

// Runs returns the most recent runs. Limits outside [1, MaxRunsLimit] are clamped.
func (s *Service) Runs(ctx context.Context, limit int) ([]history.Run, error) {
	if limit <= 0 {
		limit = DefaultRunsLimit
	}
	if limit > MaxRunsLimit {
		limit = MaxRunsLimit
	}
	return s.recorder.List(ctx, limit)
}

// Compare returns the cached comparison for name, building it when absent or stale.
func (s *Service) Compare(ctx context.Context, name string, refresh bool) (*reconcile.CachedResult, error) {
	a, err := analysis.Lookup(name, s.runner.Paths())
	if err != nil {
		return nil, err
	}
	if refresh {
		s.cache.Invalidate(a.Name)
	}
	return s.cache.GetOrBuild(ctx, a.Name, s.ttl, func(ctx context.Context) (reconcile.Result, error) {
		report, err := s.runner.Run(ctx, a, analysis.Options{Record: true})
		if err != nil {
			return reconcile.Result{}, err
		}
		return report.Result, nil
	})
}
