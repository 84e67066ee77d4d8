package tabular

import (
	"strings"

	"repo-reconciler/core/utils"
)

// Well-known field names shared by the GitHub and GitLab snapshots.
const (
	FieldName     = "name"
	FieldArchived = "archived"
)

// Fields is the read-only view of a record consumed by the reconcile engine.
type Fields interface {
	// Get returns the value of field, or "" if the field is absent.
	Get(field string) string
}

// Record is one row of a snapshot: field name to string value.
// Fields not listed in a table header are carried but ignored on encode.
type Record map[string]string

// Get returns the value of field, or "" if the field is absent.
func (r Record) Get(field string) string {
	return r[field]
}

// Set stores value under field.
func (r Record) Set(field, value string) {
	r[field] = value
}

// Has reports whether field is present and non-blank.
func (r Record) Has(field string) bool {
	return strings.TrimSpace(r[field]) != ""
}

// Name returns the raw name field.
func (r Record) Name() string {
	return r[FieldName]
}

// Archived reports whether the archived field holds a truthy token ("true" or "1").
func (r Record) Archived() bool {
	return utils.ToBool(r[FieldArchived])
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered list of records sharing one header.
type Table struct {
	// Header defines the column order used by Encode.
	Header []string
	// Records holds the data rows in file order.
	Records []Record
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Records)
}
