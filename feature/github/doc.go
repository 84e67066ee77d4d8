// Package github harvests an organization's repository inventory from the GitHub
// REST API and flattens it into snapshot records.
//
// Pagination follows the Link header's rel="next" URL. Calls are throttled with a
// token-bucket limiter so large organizations do not trip secondary rate limits.
//
// # Snapshot columns
//
//	name, name_with_owner, archived, visibility, url, pushed_at
package github
