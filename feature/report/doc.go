// Package report exposes reconciliation results over HTTP.
//
// # Routes
//
//   - GET /api/analyses: registered analysis names.
//   - GET /api/runs?limit=N: most recent recorded runs, newest first.
//   - GET /api/compare/:analysis: on-demand comparison from the current snapshots.
//     Results are cached per analysis for the configured TTL; ?refresh=true forces
//     a rebuild.
package report
