// Package drift compares the Fact Store's recorded package inventory
// against a fresh probe of installed packages, surfacing what changed
// without touching change execution. Adapted from the original
// inventory-drift concern (SUPPLEMENTED FEATURE): pure evidence-diffing
// over two string sets.
package drift

import "sort"

// Result is the set difference between a recorded inventory and a fresh
// one: names present in fresh but not recorded, and vice versa.
type Result struct {
	Added   []string // installed now, not previously recorded
	Removed []string // previously recorded, no longer installed
}

// Compare diffs recorded against fresh, both treated as sets of package
// names. Output slices are sorted for deterministic, diffable results.
func Compare(recorded, fresh []string) Result {
	recordedSet := toSet(recorded)
	freshSet := toSet(fresh)

	var res Result
	for name := range freshSet {
		if !recordedSet[name] {
			res.Added = append(res.Added, name)
		}
	}
	for name := range recordedSet {
		if !freshSet[name] {
			res.Removed = append(res.Removed, name)
		}
	}
	sort.Strings(res.Added)
	sort.Strings(res.Removed)
	return res
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
