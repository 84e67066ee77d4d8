package analysis

import (
	"context"
	"fmt"
	"time"

	"repo-reconciler/core/enrich"
	"repo-reconciler/core/history"
	"repo-reconciler/core/reconcile"
	"repo-reconciler/core/snapshot"
	"repo-reconciler/core/tabular"
	"repo-reconciler/feature/gitlab"

	"go.uber.org/zap"
)

// Options controls a single Run.
type Options struct {
	// Enrich backfills the GitLab repository timestamp before comparing.
	// Ignored by analyses that do not read it.
	Enrich bool
	// Write stores the report snapshot.
	Write bool
	// Record persists the run in history.
	Record bool
}

// Report is the outcome of a Run.
type Report struct {
	Analysis        string           `json:"analysis"`
	Result          reconcile.Result `json:"result"`
	Output          string           `json:"output,omitempty"`
	LeftDuplicates  int              `json:"left_duplicates"`
	RightDuplicates int              `json:"right_duplicates"`
	Enrichment      *enrich.Stats    `json:"enrichment,omitempty"`
}

// Runner drives analyses end to end: load, index, enrich, compare, write, record.
type Runner struct {
	store    snapshot.Store
	recorder history.Recorder
	pool     *enrich.Pool
	fetch    enrich.FetchFunc
	paths    Paths
	logger   *zap.Logger
}

// NewRunner creates a runner. A nil recorder disables history.
func NewRunner(store snapshot.Store, recorder history.Recorder, paths Paths, logger *zap.Logger) *Runner {
	if recorder == nil {
		recorder = history.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		store:    store,
		recorder: recorder,
		paths:    paths,
		logger:   logger,
	}
}

// WithEnrichment configures the pool and fetcher used to backfill GitLab timestamps.
func (r *Runner) WithEnrichment(pool *enrich.Pool, fetch enrich.FetchFunc) *Runner {
	r.pool = pool
	r.fetch = fetch
	return r
}

// Paths returns the configured snapshot and report names.
func (r *Runner) Paths() Paths {
	return r.paths
}

// RunByName looks up an analysis and runs it.
func (r *Runner) RunByName(ctx context.Context, name string, opts Options) (*Report, error) {
	a, err := Lookup(name, r.paths)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, a, opts)
}

// Run executes one analysis. A missing input snapshot is fatal.
func (r *Runner) Run(ctx context.Context, a Analysis, opts Options) (*Report, error) {
	leftName, rightName := r.paths.Snapshot(a.Left), r.paths.Snapshot(a.Right)

	left, leftDups, err := r.load(ctx, a.Left, leftName)
	if err != nil {
		return nil, err
	}
	right, rightDups, err := r.load(ctx, a.Right, rightName)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Analysis:        a.Name,
		LeftDuplicates:  leftDups,
		RightDuplicates: rightDups,
	}

	if opts.Enrich && a.Enrichable {
		gl := left
		if a.Right == SourceGitLab {
			gl = right
		}
		stats, err := r.fill(ctx, gl.Records())
		if err != nil {
			return nil, err
		}
		report.Enrichment = &stats
	}

	report.Result = reconcile.Compare(left, right, a.Policy)
	r.logger.Info("Comparison finished",
		zap.String("analysis", a.Name),
		zap.Int("total", report.Result.Counters.Total),
		zap.Int("missing", report.Result.Counters.Missing),
		zap.Int("resolved", report.Result.Counters.Resolved),
		zap.Int("unresolved", report.Result.Counters.Unresolved),
		zap.Any("by_status", report.Result.Counters.ByStatus),
		zap.Duration("duration", report.Result.Duration),
	)

	if opts.Write && a.Output != "" {
		if err := snapshot.WriteTable(ctx, r.store, a.Output, report.Result.Header, report.Result.Records()); err != nil {
			return nil, fmt.Errorf("failed to write %s report: %w", a.Name, err)
		}
		report.Output = r.store.Location(a.Output)
		r.logger.Info("Report written",
			zap.String("analysis", a.Name),
			zap.String("location", report.Output),
			zap.Int("rows", len(report.Result.Outcomes)),
		)
	}

	if opts.Record {
		run := history.NewRun(a.Name, r.store.Location(leftName), r.store.Location(rightName),
			report.Output, report.Result, leftDups, rightDups)
		if err := r.recorder.Record(ctx, run); err != nil {
			r.logger.Warn("Failed to record run", zap.String("analysis", a.Name), zap.Error(err))
		}
	}

	return report, nil
}

// EnrichGitLab backfills the repository timestamp of every canonical GitLab record
// and writes the snapshot back. Already-filled records are skipped, so repeated calls
// only fetch what is still missing.
func (r *Runner) EnrichGitLab(ctx context.Context) (enrich.Stats, error) {
	name := r.paths.GitLab
	table, err := r.read(ctx, name)
	if err != nil {
		return enrich.Stats{}, err
	}
	coll, _ := reconcile.Build(table.Records)
	r.warnDuplicates(SourceGitLab, coll)

	stats, err := r.fill(ctx, coll.Records())
	if err != nil {
		return stats, err
	}

	if err := snapshot.WriteTable(ctx, r.store, name, withField(table.Header, gitlab.FieldRepositoryUpdated), table.Records); err != nil {
		return stats, fmt.Errorf("failed to write enriched snapshot: %w", err)
	}
	r.logger.Info("Enriched snapshot written",
		zap.String("location", r.store.Location(name)),
		zap.Int("filled", stats.Filled),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

func (r *Runner) fill(ctx context.Context, items []tabular.Record) (enrich.Stats, error) {
	if r.pool == nil || r.fetch == nil {
		return enrich.Stats{}, fmt.Errorf("enrichment is not configured")
	}
	start := time.Now()
	stats := r.pool.Fill(ctx, items, enrich.Job{
		Field: gitlab.FieldRepositoryUpdated,
		Needs: gitlab.NeedsRepositoryUpdate,
		Fetch: r.fetch,
		Describe: func(rec tabular.Record) string {
			if p := rec.Get(gitlab.FieldPath); p != "" {
				return p
			}
			return rec.Name()
		},
	})
	r.logger.Info("Enrichment finished",
		zap.Int("workers", stats.Workers),
		zap.Int("filled", stats.Filled),
		zap.Int("failed", stats.Failed),
		zap.Duration("duration", time.Since(start)),
	)
	return stats, ctx.Err()
}

func (r *Runner) read(ctx context.Context, name string) (tabular.Table, error) {
	table, err := snapshot.ReadTable(ctx, r.store, name)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return table, nil
}

func (r *Runner) load(ctx context.Context, src Source, name string) (*reconcile.Collection, int, error) {
	table, err := r.read(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	coll, _ := reconcile.Build(table.Records)
	rejected := r.warnDuplicates(src, coll)
	r.logger.Debug("Snapshot loaded",
		zap.String("source", string(src)),
		zap.String("location", r.store.Location(name)),
		zap.Int("rows", table.Len()),
		zap.Int("keys", coll.Len()),
	)
	return coll, rejected, nil
}

// warnDuplicates logs one warning listing every key that had later occurrences
// dropped, and returns the number of dropped records.
func (r *Runner) warnDuplicates(src Source, coll *reconcile.Collection) int {
	var keys []string
	rejected := 0
	for _, key := range coll.Keys() {
		entry, _ := coll.Lookup(key)
		if entry.Kind != reconcile.DuplicateOf {
			continue
		}
		keys = append(keys, key)
		rejected += len(entry.Rejected)
	}
	if len(keys) == 0 {
		return 0
	}
	r.logger.Warn("Duplicate names in snapshot, keeping first occurrence",
		zap.String("source", string(src)),
		zap.Int("keys", len(keys)),
		zap.Int("rejected", rejected),
		zap.Strings("names", keys),
	)
	return rejected
}

func withField(header []string, field string) []string {
	for _, h := range header {
		if h == field {
			return header
		}
	}
	out := make([]string, len(header), len(header)+1)
	copy(out, header)
	return append(out, field)
}
