// Package utils provides common utility functions for repo-reconciler.
// It holds the permissive value coercion used when upstream JSON values are
// flattened into snapshot strings and when snapshot flags are read back.
package utils
