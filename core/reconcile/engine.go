package reconcile

import (
	"time"

	"repo-reconciler/core/tabular"
)

// Compare joins left against right by identity key and classifies each pair with
// policy. Left keys are visited in lexicographic order so the output is independent
// of input file order. Counters are fresh on every call.
func Compare(left, right *Collection, policy Policy) Result {
	start := time.Now()

	counters := Counters{ByStatus: make(map[Status]int)}
	outcomes := make([]Outcome, 0)

	for _, key := range left.Keys() {
		counters.Total++
		l, _ := left.Get(key)

		r, ok := right.Get(key)
		if !ok {
			counters.Missing++
			if missingStatus, emit := policy.Missing(l); emit {
				counters.ByStatus[missingStatus]++
				outcomes = append(outcomes, newOutcome(key, missingStatus, policy.Project(l, tabular.Record{}, missingStatus)))
			}
			continue
		}

		verdict := policy.Classify(l, r)
		counters.ByStatus[verdict.Status]++
		if verdict.Resolved {
			counters.Resolved++
			continue
		}

		counters.Unresolved++
		outcomes = append(outcomes, newOutcome(key, verdict.Status, policy.Project(l, r, verdict.Status)))
	}

	return Result{
		Policy:   policy.Name(),
		Header:   policy.Header(),
		Outcomes: outcomes,
		Counters: counters,
		Duration: time.Since(start),
	}
}

func newOutcome(key string, status Status, rec tabular.Record) Outcome {
	if rec == nil {
		rec = tabular.Record{}
	}
	return Outcome{Key: key, Status: status, Record: rec}
}
