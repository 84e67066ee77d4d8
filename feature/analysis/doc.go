// Package analysis holds the concrete reconciliation policies and the Runner that
// drives a full comparison.
//
// # Analyses
//
//   - archive: GitHub repositories whose GitLab mirror is not archived yet.
//   - staleness: five-way comparison of GitHub pushed_at against GitLab
//     last_repository_updated_at (backfilled by the enrichment pool).
//   - legacy: GitLab projects still active although a GitHub counterpart exists,
//     plus projects that never made it to GitHub.
//
// A Runner loads both snapshots, indexes them, optionally enriches the GitLab side,
// compares, writes the report snapshot and records the run in history.
package analysis
