package reconcile

import (
	"math/rand"
	"testing"

	"repo-reconciler/core/tabular"
	"repo-reconciler/core/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// archivedPolicy resolves pairs whose right side is archived.
type archivedPolicy struct {
	emitMissing bool
}

func (p archivedPolicy) Name() string { return "test-archived" }

func (p archivedPolicy) Header() []string { return []string{"name", "right_archived", "status"} }

func (p archivedPolicy) Classify(left, right tabular.Fields) Verdict {
	if utils.ToBool(right.Get("archived")) {
		return Verdict{Status: "archived", Resolved: true}
	}
	return Verdict{Status: "active"}
}

func (p archivedPolicy) Project(left, right tabular.Fields, status Status) tabular.Record {
	return tabular.Record{
		"name":           left.Get("name"),
		"right_archived": right.Get("archived"),
		"status":         string(status),
	}
}

func (p archivedPolicy) Missing(tabular.Fields) (Status, bool) {
	return "missing", p.emitMissing
}

func build(t *testing.T, recs ...tabular.Record) *Collection {
	t.Helper()
	c, _ := Build(recs)
	return c
}

func TestCompare_ScenarioA(t *testing.T) {
	left := build(t, tabular.Record{"name": "Foo"}, tabular.Record{"name": "bar"})
	right := build(t,
		tabular.Record{"name": "foo", "archived": "true"},
		tabular.Record{"name": "BAR", "archived": "false"},
	)

	result := Compare(left, right, archivedPolicy{})

	assert.Equal(t, 2, result.Counters.Total)
	assert.Equal(t, 0, result.Counters.Missing)
	assert.Equal(t, 1, result.Counters.Resolved)
	assert.Equal(t, 1, result.Counters.Unresolved)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, "bar", result.Outcomes[0].Key)
	assert.Equal(t, Status("active"), result.Outcomes[0].Status)
	assert.Equal(t, "bar", result.Outcomes[0].Record.Get("name"))
	assert.Equal(t, "test-archived", result.Policy)
}

func TestCompare_MissingCountedNotEmitted(t *testing.T) {
	left := build(t, tabular.Record{"name": "only-left"}, tabular.Record{"name": "both"})
	right := build(t, tabular.Record{"name": "both", "archived": "0"})

	result := Compare(left, right, archivedPolicy{})

	assert.Equal(t, 1, result.Counters.Missing)
	assert.Equal(t, 1, result.Counters.Unresolved)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, "both", result.Outcomes[0].Key)
	assert.Zero(t, result.Counters.ByStatus["missing"])
}

func TestCompare_MissingEmittedWhenPolicyAsks(t *testing.T) {
	left := build(t, tabular.Record{"name": "only-left"})
	right := build(t)

	result := Compare(left, right, archivedPolicy{emitMissing: true})

	assert.Equal(t, 1, result.Counters.Missing)
	assert.Equal(t, 0, result.Counters.Unresolved)
	assert.Equal(t, 1, result.Counters.ByStatus["missing"])
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, Status("missing"), result.Outcomes[0].Status)
	assert.Equal(t, "", result.Outcomes[0].Record.Get("right_archived"))
}

// flaggedMissingPolicy emits only missing left records carrying report=yes.
type flaggedMissingPolicy struct {
	archivedPolicy
}

func (flaggedMissingPolicy) Missing(left tabular.Fields) (Status, bool) {
	return "missing", left.Get("report") == "yes"
}

func TestCompare_MissingDecidedPerRecord(t *testing.T) {
	left := build(t,
		tabular.Record{"name": "quiet"},
		tabular.Record{"name": "loud", "report": "yes"},
		tabular.Record{"name": "both"},
	)
	right := build(t, tabular.Record{"name": "both", "archived": "true"})

	result := Compare(left, right, flaggedMissingPolicy{})

	assert.Equal(t, 2, result.Counters.Missing)
	assert.Equal(t, 1, result.Counters.Resolved)
	assert.Equal(t, result.Counters.Total, result.Counters.Missing+result.Counters.Resolved+result.Counters.Unresolved)
	assert.Equal(t, 1, result.Counters.ByStatus["missing"])
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, "loud", result.Outcomes[0].Key)
}

func TestCompare_PartitionInvariant(t *testing.T) {
	var leftRecs, rightRecs []tabular.Record
	for i := 0; i < 50; i++ {
		name := string(rune('a'+i%26)) + string(rune('a'+i/26))
		leftRecs = append(leftRecs, tabular.Record{"name": name})
		switch i % 3 {
		case 0:
			rightRecs = append(rightRecs, tabular.Record{"name": name, "archived": "TRUE"})
		case 1:
			rightRecs = append(rightRecs, tabular.Record{"name": name, "archived": "false"})
		}
	}

	result := Compare(build(t, leftRecs...), build(t, rightRecs...), archivedPolicy{})
	c := result.Counters
	assert.Equal(t, 50, c.Total)
	assert.Equal(t, c.Total, c.Missing+c.Resolved+c.Unresolved)
	assert.Equal(t, c.Unresolved, len(result.Outcomes))
}

func TestCompare_DeterministicOrdering(t *testing.T) {
	leftRecs := []tabular.Record{
		{"name": "delta"}, {"name": "Alpha"}, {"name": "charlie"}, {"name": "bravo"}, {"name": "echo"},
	}
	rightRecs := []tabular.Record{
		{"name": "alpha"}, {"name": "bravo"}, {"name": "charlie", "archived": "1"}, {"name": "delta"}, {"name": "echo"},
	}

	baseline := Compare(build(t, leftRecs...), build(t, rightRecs...), archivedPolicy{})

	keys := make([]string, len(baseline.Outcomes))
	for i, o := range baseline.Outcomes {
		keys[i] = o.Key
	}
	assert.Equal(t, []string{"alpha", "bravo", "delta", "echo"}, keys)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5; i++ {
		l := append([]tabular.Record(nil), leftRecs...)
		r := append([]tabular.Record(nil), rightRecs...)
		rng.Shuffle(len(l), func(a, b int) { l[a], l[b] = l[b], l[a] })
		rng.Shuffle(len(r), func(a, b int) { r[a], r[b] = r[b], r[a] })

		shuffled := Compare(build(t, l...), build(t, r...), archivedPolicy{})
		assert.Equal(t, baseline.Outcomes, shuffled.Outcomes)
		assert.Equal(t, baseline.Counters, shuffled.Counters)
	}
}

func TestCompare_CountersResetPerCall(t *testing.T) {
	left := build(t, tabular.Record{"name": "x"})
	right := build(t, tabular.Record{"name": "x"})

	first := Compare(left, right, archivedPolicy{})
	second := Compare(left, right, archivedPolicy{})

	assert.Equal(t, first.Counters, second.Counters)
	assert.Equal(t, 1, second.Counters.Total)
}

func TestResult_Records(t *testing.T) {
	result := Result{Outcomes: []Outcome{
		{Key: "a", Record: tabular.Record{"name": "a"}},
		{Key: "b", Record: tabular.Record{"name": "b"}},
	}}

	recs := result.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[1].Name())
}
