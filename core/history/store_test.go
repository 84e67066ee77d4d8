package history

import (
	"context"
	"regexp"
	"testing"
	"time"

	"repo-reconciler/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestNewRun(t *testing.T) {
	result := reconcile.Result{
		Counters: reconcile.Counters{
			Total: 5, Missing: 1, Resolved: 2, Unresolved: 2,
			ByStatus: map[reconcile.Status]int{"not_archived_on_gitlab": 2},
		},
		Duration: 1500 * time.Millisecond,
	}

	run := NewRun("archive", "github.csv", "gitlab.csv", "out.csv", result, 3, 0)

	assert.Equal(t, "archive", run.Analysis)
	assert.Equal(t, 5, run.Total)
	assert.Equal(t, 2, run.Unresolved)
	assert.Equal(t, 3, run.LeftDuplicates)
	assert.Equal(t, int64(1500), run.DurationMS)
	assert.JSONEq(t, `{"not_archived_on_gitlab":2}`, run.StatusCounts)
}

func TestStore_Record(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `reconcile_runs`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	run := &Run{Analysis: "archive", Total: 2}
	err := store.Record(context.Background(), run)
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `reconcile_runs`")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.Record(context.Background(), &Run{Analysis: "archive"})
	assert.ErrorContains(t, err, "failed to record run")
}

func TestStore_List(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "analysis", "total", "unresolved", "created_at"}).
		AddRow("b", "staleness", 10, 4, now).
		AddRow("a", "archive", 5, 1, now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `reconcile_runs` ORDER BY created_at DESC LIMIT")).
		WillReturnRows(rows)

	runs, err := store.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "staleness", runs[0].Analysis)
	assert.Equal(t, 4, runs[0].Unresolved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	assert.NoError(t, r.Record(context.Background(), &Run{}))
	runs, err := r.List(context.Background(), 5)
	assert.NoError(t, err)
	assert.Empty(t, runs)
}
