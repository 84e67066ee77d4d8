package analysis

import (
	"strings"
	"time"

	"repo-reconciler/core/reconcile"
	"repo-reconciler/core/tabular"
	"repo-reconciler/core/utils"
	"repo-reconciler/feature/gitlab"
)

// Archive cross-check statuses.
const (
	StatusArchivedOnGitLab    reconcile.Status = "archived_on_gitlab"
	StatusNotArchivedOnGitLab reconcile.Status = "not_archived_on_gitlab"
	StatusMissingOnGitLab     reconcile.Status = "missing_on_gitlab"
)

// Staleness statuses. Exactly one applies to every matched pair.
const (
	StatusBothUnknown        reconcile.Status = "both_unknown"
	StatusGitLabOnlyKnown    reconcile.Status = "gitlab_only_known"
	StatusGitHubOnlyKnown    reconcile.Status = "github_only_known"
	StatusGitLabNewer        reconcile.Status = "gitlab_newer"
	StatusGitHubNewerOrEqual reconcile.Status = "github_newer_or_equal"
)

// Legacy audit statuses.
const (
	StatusLegacyArchived reconcile.Status = "archived_on_gitlab"
	StatusActiveOnGitLab reconcile.Status = "active_on_gitlab"
	StatusEmptyOnGitLab  reconcile.Status = "empty_on_gitlab"
	StatusNotOnGitHub    reconcile.Status = "not_on_github"
)

// ArchivePolicy flags GitHub repositories whose GitLab counterpart is still active.
// Left is GitHub, right is GitLab.
type ArchivePolicy struct{}

// Name implements reconcile.Policy.
func (ArchivePolicy) Name() string { return "archive" }

// Header implements reconcile.Policy.
func (ArchivePolicy) Header() []string {
	return []string{
		"github_name",
		"github_name_with_owner",
		"github_archived",
		"github_visibility",
		"gitlab_path_with_namespace",
		"gitlab_archived",
		"status",
	}
}

// Classify implements reconcile.Policy. A truthy GitLab archived flag resolves the pair.
func (ArchivePolicy) Classify(_, right tabular.Fields) reconcile.Verdict {
	if utils.ToBool(right.Get(tabular.FieldArchived)) {
		return reconcile.Verdict{Status: StatusArchivedOnGitLab, Resolved: true}
	}
	return reconcile.Verdict{Status: StatusNotArchivedOnGitLab}
}

// Project implements reconcile.Policy.
func (ArchivePolicy) Project(left, right tabular.Fields, status reconcile.Status) tabular.Record {
	return tabular.Record{
		"github_name":                left.Get("name"),
		"github_name_with_owner":     left.Get("name_with_owner"),
		"github_archived":            left.Get(tabular.FieldArchived),
		"github_visibility":          left.Get("visibility"),
		"gitlab_path_with_namespace": right.Get(gitlab.FieldPath),
		"gitlab_archived":            right.Get(tabular.FieldArchived),
		"status":                     string(status),
	}
}

// Missing implements reconcile.Policy. Repositories without a mirror are only counted.
func (ArchivePolicy) Missing(tabular.Fields) (reconcile.Status, bool) {
	return StatusMissingOnGitLab, false
}

// StalenessPolicy compares the last push on GitHub with the last repository update
// on GitLab. Left is GitHub, right is GitLab.
type StalenessPolicy struct{}

// Name implements reconcile.Policy.
func (StalenessPolicy) Name() string { return "staleness" }

// Header implements reconcile.Policy.
func (StalenessPolicy) Header() []string {
	return []string{
		"github_name",
		"github_name_with_owner",
		"github_pushed_at",
		"gitlab_path_with_namespace",
		"gitlab_last_updated_at",
		"status",
	}
}

// Classify implements reconcile.Policy. Every matched pair is emitted.
func (StalenessPolicy) Classify(left, right tabular.Fields) reconcile.Verdict {
	return reconcile.Verdict{Status: ClassifyTimestamps(
		ParseTimestamp(left.Get("pushed_at")),
		ParseTimestamp(gitLabUpdatedAt(right)),
	)}
}

// Project implements reconcile.Policy.
func (StalenessPolicy) Project(left, right tabular.Fields, status reconcile.Status) tabular.Record {
	return tabular.Record{
		"github_name":                left.Get("name"),
		"github_name_with_owner":     left.Get("name_with_owner"),
		"github_pushed_at":           left.Get("pushed_at"),
		"gitlab_path_with_namespace": right.Get(gitlab.FieldPath),
		"gitlab_last_updated_at":     gitLabUpdatedAt(right),
		"status":                     string(status),
	}
}

// Missing implements reconcile.Policy.
func (StalenessPolicy) Missing(tabular.Fields) (reconcile.Status, bool) {
	return StatusMissingOnGitLab, false
}

// gitLabUpdatedAt prefers the enriched repository timestamp and falls back to the
// project's last activity.
func gitLabUpdatedAt(rec tabular.Fields) string {
	if v := strings.TrimSpace(rec.Get(gitlab.FieldRepositoryUpdated)); v != "" {
		return v
	}
	return strings.TrimSpace(rec.Get(gitlab.FieldLastActivity))
}

// ParseTimestamp parses an RFC3339 timestamp. Blank or unparsable input is unknown (nil).
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

// ClassifyTimestamps places a (github, gitlab) timestamp pair into one of the five
// staleness outcomes.
func ClassifyTimestamps(github, gitlab *time.Time) reconcile.Status {
	switch {
	case github == nil && gitlab == nil:
		return StatusBothUnknown
	case github == nil:
		return StatusGitLabOnlyKnown
	case gitlab == nil:
		return StatusGitHubOnlyKnown
	case gitlab.After(*github):
		return StatusGitLabNewer
	default:
		return StatusGitHubNewerOrEqual
	}
}

// LegacyPolicy audits GitLab projects that are still live. Left is GitLab, right is
// GitHub. Archived projects are resolved; live projects without a GitHub counterpart
// are emitted as not_on_github.
type LegacyPolicy struct{}

// Name implements reconcile.Policy.
func (LegacyPolicy) Name() string { return "legacy" }

// Header implements reconcile.Policy.
func (LegacyPolicy) Header() []string {
	return []string{
		"gitlab_name",
		"gitlab_path_with_namespace",
		"gitlab_archived",
		"gitlab_empty_repo",
		"gitlab_last_activity_at",
		"gitlab_web_url",
		"github_name_with_owner",
		"status",
	}
}

// Classify implements reconcile.Policy.
func (LegacyPolicy) Classify(left, _ tabular.Fields) reconcile.Verdict {
	switch {
	case utils.ToBool(left.Get(tabular.FieldArchived)):
		return reconcile.Verdict{Status: StatusLegacyArchived, Resolved: true}
	case utils.ToBool(left.Get(gitlab.FieldEmptyRepo)):
		return reconcile.Verdict{Status: StatusEmptyOnGitLab}
	default:
		return reconcile.Verdict{Status: StatusActiveOnGitLab}
	}
}

// Project implements reconcile.Policy.
func (LegacyPolicy) Project(left, right tabular.Fields, status reconcile.Status) tabular.Record {
	return tabular.Record{
		"gitlab_name":                left.Get("name"),
		"gitlab_path_with_namespace": left.Get(gitlab.FieldPath),
		"gitlab_archived":            left.Get(tabular.FieldArchived),
		"gitlab_empty_repo":          left.Get(gitlab.FieldEmptyRepo),
		"gitlab_last_activity_at":    left.Get(gitlab.FieldLastActivity),
		"gitlab_web_url":             left.Get("web_url"),
		"github_name_with_owner":     right.Get("name_with_owner"),
		"status":                     string(status),
	}
}

// Missing implements reconcile.Policy. Projects without a GitHub counterpart are
// emitted unless they are already archived; archived orphans are only counted.
func (LegacyPolicy) Missing(left tabular.Fields) (reconcile.Status, bool) {
	if utils.ToBool(left.Get(tabular.FieldArchived)) {
		return StatusLegacyArchived, false
	}
	return StatusNotOnGitHub, true
}
