package reconcile

import (
	"sort"
	"strings"

	"repo-reconciler/core/tabular"
)

// Key returns the identity key for a name: trimmed and case-folded.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// EntryKind tags a collection entry as unique or duplicated.
type EntryKind int

const (
	// Unique marks a key seen exactly once.
	Unique EntryKind = iota
	// DuplicateOf marks a key seen more than once; the first occurrence is canonical.
	DuplicateOf
)

// Entry is the tagged lookup result for one key.
type Entry struct {
	Kind      EntryKind
	Canonical tabular.Record
	// Rejected holds later occurrences, in file order. Empty for Unique entries.
	Rejected []tabular.Record
}

// Duplicate reports a key that occurred more than once in a dataset.
type Duplicate struct {
	Key       string
	Canonical tabular.Record
	Rejected  []tabular.Record
}

// Collection maps identity keys to the first-seen record of a dataset.
type Collection struct {
	canonical  map[string]tabular.Record
	duplicates map[string][]tabular.Record
	order      []string
}

// Build indexes records by identity key. Records with a blank name are skipped.
// The first record for a key wins; later ones are reported as duplicates and
// never overwrite it.
func Build(records []tabular.Record) (*Collection, []Duplicate) {
	c := &Collection{
		canonical:  make(map[string]tabular.Record, len(records)),
		duplicates: make(map[string][]tabular.Record),
	}

	for _, rec := range records {
		key := Key(rec.Name())
		if key == "" {
			continue
		}
		if _, exists := c.canonical[key]; exists {
			c.duplicates[key] = append(c.duplicates[key], rec)
			continue
		}
		c.canonical[key] = rec
		c.order = append(c.order, key)
	}

	return c, c.Duplicates()
}

// Len returns the number of distinct keys.
func (c *Collection) Len() int {
	return len(c.canonical)
}

// Get returns the canonical record for key.
func (c *Collection) Get(key string) (tabular.Record, bool) {
	rec, ok := c.canonical[key]
	return rec, ok
}

// Lookup returns the tagged entry for key.
func (c *Collection) Lookup(key string) (Entry, bool) {
	rec, ok := c.canonical[key]
	if !ok {
		return Entry{}, false
	}
	rejected := c.duplicates[key]
	if len(rejected) == 0 {
		return Entry{Kind: Unique, Canonical: rec}, true
	}
	return Entry{Kind: DuplicateOf, Canonical: rec, Rejected: rejected}, true
}

// Keys returns all keys in lexicographic order.
func (c *Collection) Keys() []string {
	keys := make([]string, 0, len(c.canonical))
	for k := range c.canonical {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Records returns the canonical records in first-seen order. The records are shared
// with the collection, so mutating them (e.g. during enrichment) updates it in place.
func (c *Collection) Records() []tabular.Record {
	out := make([]tabular.Record, len(c.order))
	for i, k := range c.order {
		out[i] = c.canonical[k]
	}
	return out
}

// Duplicates returns the duplicate report sorted by key.
func (c *Collection) Duplicates() []Duplicate {
	if len(c.duplicates) == 0 {
		return nil
	}
	out := make([]Duplicate, 0, len(c.duplicates))
	for key, rejected := range c.duplicates {
		out = append(out, Duplicate{
			Key:       key,
			Canonical: c.canonical[key],
			Rejected:  rejected,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}
