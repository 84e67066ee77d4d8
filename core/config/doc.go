// Package config provides configuration management for repo-reconciler.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of every section.
//
// # Configuration Structure
//
//   - Log: logging level and format
//   - GitHub / GitLab: API base URLs, tokens, organization/group, paging and rate limits
//   - Reports: snapshot and report names
//   - Enrich: enrichment pool concurrency (default 8, hard cap 16)
//   - Snapshot / Storage: local directory or S3/MinIO bucket for snapshots
//   - Database: optional MySQL run history
//   - Server: report API port, key and cache TTL
//
// Nested keys map to environment variables by replacing dots with underscores, so
// gitlab.token is read from GITLAB_TOKEN.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.ValidateGitLab(); err != nil {
//	    return err
//	}
package config
