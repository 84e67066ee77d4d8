// Package reconcile joins two repository inventories and classifies every pairing.
//
// The package is split in three parts:
//
// 1. Collection: Build indexes a decoded snapshot by identity key (the trimmed,
//    lower-cased name). The first record for a key is canonical; later records are
//    reported as duplicates and never replace it.
//
// 2. Engine: Compare walks the left collection in key order, looks each key up on
//    the right and asks a Policy for a Verdict. Resolved pairs are only counted,
//    unresolved pairs become output rows. Keys missing on the right are counted and,
//    if the policy asks for it, emitted too.
//
// 3. Cache: a TTL cache with stampede protection, used when comparisons are served
//    on demand over HTTP.
//
// # Counters
//
// Every left key lands in exactly one of Missing, Resolved or Unresolved, so
//
//	Missing + Resolved + Unresolved == Total
//
// holds for every pass. ByStatus breaks matched pairs down per verdict status.
//
// # Usage Example
//
//	left, dups := reconcile.Build(githubTable.Records)
//	right, _ := reconcile.Build(gitlabTable.Records)
//	result := reconcile.Compare(left, right, analysis.ArchivePolicy{})
//	out := tabular.Encode(result.Header, result.Records())
//
// # Creating Policies
//
// To support a new analysis, implement the Policy interface: a verdict per matched
// pair, a projection into the output columns, and the treatment of missing keys.
// See feature/analysis for the archive, staleness and legacy policies.
package reconcile
