// Package database opens the optional MySQL connection used for run history.
//
// It uses GORM with the MySQL driver. Timeouts are applied both in the DSN and to
// the initial ping, so an unreachable server fails fast.
package database
