package tabular

import "repo-reconciler/core/utils"

// Column maps an upstream JSON attribute onto a snapshot field.
type Column struct {
	// Field is the snapshot column name.
	Field string
	// Source is the upstream attribute name. Defaults to Field.
	Source string
}

// Header returns the field names of columns, in order.
func Header(columns []Column) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Field
	}
	return out
}

// Project flattens an upstream JSON object into a Record. Values are stringified
// permissively (booleans become "true"/"false", null becomes "").
func Project(raw map[string]any, columns []Column) Record {
	rec := make(Record, len(columns))
	for _, c := range columns {
		src := c.Source
		if src == "" {
			src = c.Field
		}
		rec[c.Field] = utils.ToString(raw[src])
	}
	return rec
}
