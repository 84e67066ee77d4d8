package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"repo-reconciler/core/reconcile"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Run is a persisted comparison run.
type Run struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Analysis        string    `gorm:"size:64;index" json:"analysis"`
	LeftSnapshot    string    `gorm:"size:512" json:"left_snapshot"`
	RightSnapshot   string    `gorm:"size:512" json:"right_snapshot"`
	Output          string    `gorm:"size:512" json:"output"`
	Total           int       `json:"total"`
	Missing         int       `json:"missing"`
	Resolved        int       `json:"resolved"`
	Unresolved      int       `json:"unresolved"`
	LeftDuplicates  int       `json:"left_duplicates"`
	RightDuplicates int       `json:"right_duplicates"`
	StatusCounts    string    `gorm:"type:text" json:"status_counts"`
	DurationMS      int64     `json:"duration_ms"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

// TableName pins the table name.
func (Run) TableName() string {
	return "reconcile_runs"
}

// Recorder persists runs. The nil-safe Noop implementation is used when history is disabled.
type Recorder interface {
	Record(ctx context.Context, run *Run) error
	List(ctx context.Context, limit int) ([]Run, error)
}

// NewRun builds a Run from a comparison result.
func NewRun(analysis, left, right, output string, result reconcile.Result, leftDups, rightDups int) *Run {
	counts := make(map[string]int, len(result.Counters.ByStatus))
	for status, n := range result.Counters.ByStatus {
		counts[string(status)] = n
	}
	// A map of ints cannot fail to marshal.
	encoded, _ := json.Marshal(counts)

	return &Run{
		Analysis:        analysis,
		LeftSnapshot:    left,
		RightSnapshot:   right,
		Output:          output,
		Total:           result.Counters.Total,
		Missing:         result.Counters.Missing,
		Resolved:        result.Counters.Resolved,
		Unresolved:      result.Counters.Unresolved,
		LeftDuplicates:  leftDups,
		RightDuplicates: rightDups,
		StatusCounts:    string(encoded),
		DurationMS:      result.Duration.Milliseconds(),
	}
}

// Store is the GORM-backed Recorder.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the reconcile_runs table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Run{}); err != nil {
		return fmt.Errorf("failed to migrate reconcile_runs: %w", err)
	}
	return nil
}

// Record inserts run, assigning an ID and timestamp if unset.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// List returns the newest runs first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Noop discards runs.
type Noop struct{}

// Record implements Recorder.
func (Noop) Record(context.Context, *Run) error { return nil }

// List implements Recorder.
func (Noop) List(context.Context, int) ([]Run, error) { return []Run{}, nil }
