// Package record defines the field-map record used for every CDash build,
// test and history point, plus the helpers that compare, print, sort and
// filter lists of records.
//
// A Record is a map, so a record looked up from an index and then mutated is
// seen mutated everywhere it is shared. Callers that need isolation use Clone.
package record

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record maps field names to values. Values are string, float64, int, bool,
// Record, []Record, []any or nil. Field presence is not guaranteed.
type Record map[string]any

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Str returns the value for key formatted as a string, or "" when absent.
func (r Record) Str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return ValueString(v)
}

// Float returns the numeric value for key. ok is false when the field is
// absent or not a number.
func (r Record) Float(key string) (float64, bool) {
	return toFloat(r[key])
}

// Sub returns the nested record stored under key, or nil.
func (r Record) Sub(key string) Record {
	switch v := r[key].(type) {
	case Record:
		return v
	case map[string]any:
		return Record(v)
	}
	return nil
}

// List returns the nested list of records stored under key.
func (r Record) List(key string) []Record {
	switch v := r[key].(type) {
	case []Record:
		return v
	case []any:
		out := make([]Record, 0, len(v))
		for _, e := range v {
			switch m := e.(type) {
			case Record:
				out = append(out, m)
			case map[string]any:
				out = append(out, Record(m))
			}
		}
		return out
	}
	return nil
}

// Keys returns the field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Record:
		return t.Clone()
	case map[string]any:
		return Record(t).Clone()
	case []Record:
		out := make([]Record, len(t))
		for i, e := range t {
			out[i] = e.Clone()
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

// Pick returns a new record holding only the named fields that are present.
func (r Record) Pick(keys ...string) Record {
	out := make(Record, len(keys))
	for _, k := range keys {
		if v, ok := r[k]; ok {
			out[k] = v
		}
	}
	return out
}

// String renders r with sorted keys, e.g.
// {'buildname': 'build1', 'data': 'val1'}.
func (r Record) String() string {
	return Repr(r)
}

// Repr renders any record value in the diagnostic form used by error
// messages and log lines.
func Repr(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return "'" + t + "'"
	case bool:
		if t {
			return "True"
		}
		return "False"
	case Record:
		return reprMap(t)
	case map[string]any:
		return reprMap(Record(t))
	case []Record:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = reprMap(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Repr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = "'" + e + "'"
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ValueString(v)
}

func reprMap(r Record) string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range r.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("'" + k + "': " + Repr(r[k]))
	}
	sb.WriteString("}")
	return sb.String()
}

// ValueString formats a scalar without quotes. Whole floats print without a
// fractional part so JSON-decoded integers read as integers.
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "True"
		}
		return "False"
	case Record, map[string]any, []Record, []any, []string:
		return Repr(t)
	}
	return fmt.Sprint(v)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	}
	return 0, false
}
