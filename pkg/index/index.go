// Package index provides Collection, a list of records searchable by a
// composite key of field values.
package index

import (
	"iter"
	"strings"

	"github.com/dkoosis/cdashreport/pkg/record"
)

// EqualityFunc decides whether two records with the same key are the same
// record. When they differ, msg names the first differing field using nameA
// and nameB.
type EqualityFunc func(a record.Record, nameA string, b record.Record, nameB string) (same bool, msg string)

// Collection owns a list of records and a map from key tuple to position in
// that list. Records are shared with the caller, so mutating a record found
// by Lookup is visible through Records and At.
type Collection struct {
	keys      []string
	keyMap    []string
	records   []record.Record
	positions map[string]int
}

type options struct {
	collapse bool
	keyMap   []string
	equal    EqualityFunc
}

// Option configures New.
type Option func(*options)

// WithCollapseExactDuplicates drops a record whose key was already seen when
// it equals the earlier record.
func WithCollapseExactDuplicates() Option {
	return func(o *options) { o.collapse = true }
}

// WithKeyMap names the fields LookupRecord reads from query records, one per
// key field. Builds keyed by (site, buildname) can then be found from tests
// carrying (site, buildName).
func WithKeyMap(names []string) Option {
	return func(o *options) { o.keyMap = names }
}

// WithEquality replaces the structural equality used to classify duplicates.
func WithEquality(fn EqualityFunc) Option {
	return func(o *options) { o.equal = fn }
}

// New indexes records by keys. Duplicates fail with *DuplicateKeyError
// unless collapse is enabled and the duplicate is equal to the record already
// indexed.
func New(records []record.Record, keys []string, opts ...Option) (*Collection, error) {
	o := options{equal: record.Diff}
	for _, opt := range opts {
		opt(&o)
	}
	if o.keyMap != nil && len(o.keyMap) != len(keys) {
		return nil, &ValueMismatchError{Keys: keys, Values: o.keyMap}
	}

	c := &Collection{
		keys:      append([]string(nil), keys...),
		keyMap:    o.keyMap,
		records:   make([]record.Record, 0, len(records)),
		positions: make(map[string]int, len(records)),
	}
	// origin[i] is the input position of c.records[i], for error messages.
	origin := make([]int, 0, len(records))

	for i, r := range records {
		k := tupleFromRecord(r, keys)
		if pos, dup := c.positions[k]; dup {
			prev := c.records[pos]
			nameNew := listElemName(i)
			namePrev := listElemName(origin[pos])
			same, msg := o.equal(r, nameNew, prev, namePrev)
			if same && o.collapse {
				continue
			}
			return nil, &DuplicateKeyError{
				Keys:       c.keys,
				Index:      i,
				Record:     r,
				PrevIndex:  origin[pos],
				PrevRecord: prev,
				Difference: msg,
			}
		}
		c.positions[k] = len(c.records)
		c.records = append(c.records, r)
		origin = append(origin, i)
	}
	return c, nil
}

// Lookup returns the record whose key fields equal values, with its position.
// A missing record yields (nil, -1, nil).
func (c *Collection) Lookup(values ...string) (record.Record, int, error) {
	if len(values) != len(c.keys) {
		return nil, -1, &ValueMismatchError{Keys: c.keys, Values: values}
	}
	pos, ok := c.positions[strings.Join(values, keySep)]
	if !ok {
		return nil, -1, nil
	}
	return c.records[pos], pos, nil
}

// LookupRecord reads the key values out of q, using the key map names when
// one was configured, and looks them up.
func (c *Collection) LookupRecord(q record.Record) (record.Record, int) {
	names := c.keys
	if c.keyMap != nil {
		names = c.keyMap
	}
	pos, ok := c.positions[tupleFromRecord(q, names)]
	if !ok {
		return nil, -1
	}
	return c.records[pos], pos
}

// Contains reports whether a record structurally equal to r is indexed.
func (c *Collection) Contains(r record.Record) bool {
	found, _ := c.LookupRecord(c.asQuery(r))
	return found != nil && record.Equal(found, r)
}

// asQuery re-labels r's key fields with the key map names.
func (c *Collection) asQuery(r record.Record) record.Record {
	if c.keyMap == nil {
		return r
	}
	q := make(record.Record, len(c.keys))
	for i, k := range c.keys {
		q[c.keyMap[i]] = r[k]
	}
	return q
}

// All iterates over the records in order.
func (c *Collection) All() iter.Seq2[int, record.Record] {
	return func(yield func(int, record.Record) bool) {
		for i, r := range c.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Records returns the backing list.
func (c *Collection) Records() []record.Record { return c.records }

// Len returns the number of indexed records.
func (c *Collection) Len() int { return len(c.records) }

// At returns the record at position i.
func (c *Collection) At(i int) record.Record { return c.records[i] }

// Keys returns the key field names.
func (c *Collection) Keys() []string { return c.keys }

// KeyMap returns the query field names, or nil.
func (c *Collection) KeyMap() []string { return c.keyMap }

const keySep = "\x00"

func tupleFromRecord(r record.Record, fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = r.Str(f)
	}
	return strings.Join(parts, keySep)
}
