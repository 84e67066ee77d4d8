// Package gitlab harvests a group's project inventory (including subgroups) from the
// GitLab REST API and provides the per-project lookup used to backfill
// last_repository_updated_at.
//
// The group path is resolved to its numeric ID first; projects are then listed page
// by page, following the X-Next-Page header until it is empty.
//
// # Snapshot columns
//
//	name, id, path_with_namespace, archived, last_activity_at, web_url,
//	empty_repo, visibility, last_repository_updated_at
package gitlab
