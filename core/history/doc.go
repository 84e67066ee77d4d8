// Package history records one row per comparison run.
//
// Runs are stored through GORM in the reconcile_runs table: the analysis name, the
// snapshots that were compared, the counters, the duplicate counts and the output
// location. The table backs the /api/runs endpoint and the runs command.
package history
