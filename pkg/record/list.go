package record

import (
	"sort"
	"strings"
)

// Predicate selects records.
type Predicate func(Record) bool

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(r Record) bool { return !p(r) }
}

// Filter returns the records matching p, in order. The records themselves
// are shared, not copied.
func Filter(list []Record, p Predicate) []Record {
	out := make([]Record, 0, len(list))
	for _, r := range list {
		if p(r) {
			out = append(out, r)
		}
	}
	return out
}

// Split partitions list into the records matching p and the rest.
func Split(list []Record, p Predicate) (matched, rest []Record) {
	matched = make([]Record, 0, len(list))
	rest = make([]Record, 0, len(list))
	for _, r := range list {
		if p(r) {
			matched = append(matched, r)
		} else {
			rest = append(rest, r)
		}
	}
	return matched, rest
}

// Transform mutates one record in place and returns it.
type Transform func(Record) (Record, error)

// Apply runs fn over every record, stopping at the first error.
func Apply(list []Record, fn Transform) ([]Record, error) {
	out := make([]Record, 0, len(list))
	for _, r := range list {
		t, err := fn(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// RemoveIndexes returns list without the elements at the given positions.
func RemoveIndexes(list []Record, idxs []int) []Record {
	drop := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		drop[i] = true
	}
	out := make([]Record, 0, len(list))
	for i, r := range list {
		if !drop[i] {
			out = append(out, r)
		}
	}
	return out
}

// SortKey joins the named field values with "-".
func SortKey(r Record, fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = r.Str(f)
	}
	return strings.Join(parts, "-")
}

// SortAndLimit returns a stably sorted copy of list ordered by the joined
// values of fields (no sorting when fields is empty), truncated to limit
// records. A negative limit keeps everything; zero yields an empty list.
func SortAndLimit(list []Record, fields []string, limit int) []Record {
	out := make([]Record, len(list))
	copy(out, list)
	if len(fields) > 0 {
		keys := make(map[int]string, len(out))
		idx := make([]int, len(out))
		for i := range out {
			idx[i] = i
			keys[i] = SortKey(out[i], fields)
		}
		sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
		sorted := make([]Record, len(out))
		for i, j := range idx {
			sorted[i] = list[j]
		}
		out = sorted
	}
	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
