package enrich

import (
	"context"
	"sync"
	"sync/atomic"

	"repo-reconciler/core/tabular"

	"go.uber.org/zap"
)

const (
	// DefaultConcurrency is used when a non-positive concurrency is requested.
	DefaultConcurrency = 8
	// MaxConcurrency is the hard cap on workers regardless of the requested value.
	MaxConcurrency = 16
	// DefaultProgressEvery is the completion cadence of progress reports.
	DefaultProgressEvery = 25
)

// FetchFunc fetches the value of a missing field for one record.
type FetchFunc func(ctx context.Context, rec tabular.Record) (string, error)

// Job describes one enrichment pass.
type Job struct {
	// Field is the record field to fill.
	Field string

	// Needs reports whether a record still needs enrichment.
	// Defaults to "Field is blank".
	Needs func(rec tabular.Record) bool

	// Fetch retrieves the value for a record.
	Fetch FetchFunc

	// Describe names a record in log output. Defaults to the name field.
	Describe func(rec tabular.Record) string
}

// Progress is reported every ProgressEvery completions and at the final item.
type Progress struct {
	Done  int
	Total int
}

// Stats summarizes a Fill call.
type Stats struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Filled    int `json:"filled"`
	Failed    int `json:"failed"`
	Workers   int `json:"workers"`
}

// Pool runs enrichment jobs with a fixed number of workers.
type Pool struct {
	// Concurrency is the requested number of workers.
	Concurrency int

	// MaxConcurrency caps Concurrency. Defaults to MaxConcurrency.
	MaxConcurrency int

	// ProgressEvery is the completion cadence of progress reports.
	ProgressEvery int

	// OnProgress, if set, receives progress reports. It may be called from any worker.
	OnProgress func(Progress)

	logger *zap.Logger
}

// NewPool creates a pool with the given requested concurrency.
func NewPool(logger *zap.Logger, concurrency int) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		Concurrency:    concurrency,
		MaxConcurrency: MaxConcurrency,
		ProgressEvery:  DefaultProgressEvery,
		logger:         logger,
	}
}

// Workers returns the number of workers Fill would start for n items.
func (p *Pool) Workers(n int) int {
	if n <= 0 {
		return 0
	}
	limit := p.MaxConcurrency
	if limit <= 0 || limit > MaxConcurrency {
		limit = MaxConcurrency
	}
	workers := p.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}
	if workers > limit {
		workers = limit
	}
	if workers > n {
		workers = n
	}
	return workers
}

// Fill enriches items in place. Items are never reordered; each index is claimed by
// exactly one worker.
func (p *Pool) Fill(ctx context.Context, items []tabular.Record, job Job) Stats {
	total := len(items)
	workers := p.Workers(total)
	stats := Stats{Workers: workers}
	if workers == 0 {
		return stats
	}

	needs := job.Needs
	if needs == nil {
		needs = func(rec tabular.Record) bool { return !rec.Has(job.Field) }
	}
	describe := job.Describe
	if describe == nil {
		describe = func(rec tabular.Record) string { return rec.Name() }
	}
	every := p.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	var (
		cursor  atomic.Int64
		done    atomic.Int64
		skipped atomic.Int64
		filled  atomic.Int64
		failed  atomic.Int64
		wg      sync.WaitGroup
	)

	report := func() {
		n := int(done.Add(1))
		if n%every != 0 && n != total {
			return
		}
		p.logger.Info("Enrichment progress",
			zap.String("field", job.Field),
			zap.Int("done", n),
			zap.Int("total", total),
		)
		if p.OnProgress != nil {
			p.OnProgress(Progress{Done: n, Total: total})
		}
	}

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(cursor.Add(1) - 1)
				if i >= total {
					return
				}
				rec := items[i]

				if rec == nil || !needs(rec) {
					skipped.Add(1)
					report()
					continue
				}

				value, err := job.Fetch(ctx, rec)
				if err != nil {
					failed.Add(1)
					p.logger.Warn("Enrichment failed",
						zap.String("field", job.Field),
						zap.String("item", describe(rec)),
						zap.Int("index", i),
						zap.Error(err),
					)
				} else {
					rec.Set(job.Field, value)
					filled.Add(1)
				}
				report()
			}
		}()
	}
	wg.Wait()

	stats.Processed = int(done.Load())
	stats.Skipped = int(skipped.Load())
	stats.Filled = int(filled.Load())
	stats.Failed = int(failed.Load())
	return stats
}
