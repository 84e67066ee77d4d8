package analysis

import (
	"errors"
	"fmt"
	"sort"

	"repo-reconciler/core/reconcile"
)

// ErrUnknownAnalysis is returned when an analysis name is not registered.
var ErrUnknownAnalysis = errors.New("unknown analysis")

// Source identifies an inventory snapshot.
type Source string

const (
	SourceGitHub Source = "github"
	SourceGitLab Source = "gitlab"
)

// Paths names the snapshot and report objects an analysis reads and writes.
type Paths struct {
	GitHub    string
	GitLab    string
	Archive   string
	Staleness string
	Legacy    string
}

// Snapshot returns the snapshot name for a source.
func (p Paths) Snapshot(src Source) string {
	if src == SourceGitLab {
		return p.GitLab
	}
	return p.GitHub
}

// Analysis binds a policy to its inputs and output.
type Analysis struct {
	// Name is the registry key, equal to the policy name.
	Name string
	// Policy classifies and projects pairs.
	Policy reconcile.Policy
	// Left is the source whose keys drive the comparison.
	Left Source
	// Right is the source looked up for each left key.
	Right Source
	// Output is the report object name.
	Output string
	// Enrichable marks analyses that read the enriched GitLab timestamp.
	Enrichable bool
}

// All returns every registered analysis for paths, sorted by name.
func All(paths Paths) []Analysis {
	list := []Analysis{
		{Name: "archive", Policy: ArchivePolicy{}, Left: SourceGitHub, Right: SourceGitLab, Output: paths.Archive},
		{Name: "legacy", Policy: LegacyPolicy{}, Left: SourceGitLab, Right: SourceGitHub, Output: paths.Legacy},
		{Name: "staleness", Policy: StalenessPolicy{}, Left: SourceGitHub, Right: SourceGitLab, Output: paths.Staleness, Enrichable: true},
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Names returns the registered analysis names.
func Names() []string {
	list := All(Paths{})
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Name
	}
	return out
}

// Lookup finds an analysis by name.
func Lookup(name string, paths Paths) (Analysis, error) {
	for _, a := range All(paths) {
		if a.Name == name {
			return a, nil
		}
	}
	return Analysis{}, fmt.Errorf("%w: %q", ErrUnknownAnalysis, name)
}
