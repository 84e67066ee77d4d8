// Package logger provides a structured logging facility based on Zap.
//
// Commands build one logger from the log section of the configuration and pass it
// down explicitly. Warnings (duplicate keys, failed enrichment fetches) and run
// summaries are emitted as structured fields rather than formatted strings.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (machine readable) or console (CLI default)
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Comparison finished", zap.Int("unresolved", n))
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
