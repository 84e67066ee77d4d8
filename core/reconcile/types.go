package reconcile

import (
	"time"

	"repo-reconciler/core/tabular"
)

// Status tags a reconciliation outcome (e.g. "not_archived_on_gitlab").
type Status string

// Verdict is a policy's classification of one joined pair.
type Verdict struct {
	// Status is the outcome tag, also used as the ByStatus counter key.
	Status Status

	// Resolved marks pairs that already satisfy the policy. Resolved pairs are
	// counted but never emitted.
	Resolved bool
}

// Policy decides how joined pairs are classified and projected into output rows.
// It is the only thing that varies between analyses; the join, dedup and ordering
// logic is shared.
type Policy interface {
	// Name returns the unique name of this policy (e.g., "archive", "staleness").
	Name() string

	// Header returns the output columns, in order.
	Header() []string

	// Classify evaluates a pair whose key exists on both sides.
	Classify(left, right tabular.Fields) Verdict

	// Project builds the output row for an emitted pair. For left keys absent on the
	// right, right is an empty record.
	Project(left, right tabular.Fields, status Status) tabular.Record

	// Missing returns the status used for a left record whose key is absent on the
	// right and whether that record is emitted as a row. Absent keys are always
	// counted as Missing, emitted or not.
	Missing(left tabular.Fields) (Status, bool)
}

// Outcome is one emitted row of a comparison. It is never mutated after creation.
type Outcome struct {
	// Key is the normalized identity key of the pair.
	Key string `json:"key"`

	// Status is the classification tag.
	Status Status `json:"status"`

	// Record is the projected output row.
	Record tabular.Record `json:"record"`
}

// Counters are the aggregate tallies of a single comparison pass.
// Missing + Resolved + Unresolved always equals Total.
type Counters struct {
	// Total is the number of distinct left keys.
	Total int `json:"total"`

	// Missing counts left keys with no right counterpart.
	Missing int `json:"missing"`

	// Resolved counts matched pairs excluded by policy.
	Resolved int `json:"resolved"`

	// Unresolved counts matched pairs that produced a row.
	Unresolved int `json:"unresolved"`

	// ByStatus counts matched pairs per verdict status, plus emitted missing rows.
	ByStatus map[Status]int `json:"by_status"`
}

// Result is the output of Compare.
type Result struct {
	// Policy is the name of the policy that produced the result.
	Policy string `json:"policy"`

	// Header is the output column order.
	Header []string `json:"header"`

	// Outcomes holds the emitted rows sorted by key.
	Outcomes []Outcome `json:"outcomes"`

	// Counters holds the aggregate tallies.
	Counters Counters `json:"counters"`

	// Duration is how long the comparison took.
	Duration time.Duration `json:"duration"`
}

// Records returns the projected rows in output order.
func (r Result) Records() []tabular.Record {
	out := make([]tabular.Record, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Record
	}
	return out
}
