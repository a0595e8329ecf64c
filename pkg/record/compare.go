package record

import "fmt"

// Equal reports whether a and b are structurally equal. Numbers compare by
// value regardless of their Go type; maps compare field by field.
func Equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch ta := a.(type) {
	case nil:
		return b == nil
	case string:
		tb, ok := b.(string)
		return ok && ta == tb
	case bool:
		tb, ok := b.(bool)
		return ok && ta == tb
	case Record, map[string]any:
		ma, mb := asMap(ta), asMap(b)
		if mb == nil || len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, ok := mb[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	case []Record, []any:
		la, lb := asList(ta), asList(b)
		if lb == nil || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !Equal(la[i], lb[i]) {
				return false
			}
		}
		return true
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func asMap(v any) map[string]any {
	switch t := v.(type) {
	case Record:
		if t == nil {
			return map[string]any{}
		}
		return t
	case map[string]any:
		if t == nil {
			return map[string]any{}
		}
		return t
	}
	return nil
}

func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		if t == nil {
			return []any{}
		}
		return t
	case []Record:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	}
	return nil
}

// Diff compares two records and describes the first difference found,
// walking the fields of a in sorted order. nameA and nameB are used in the
// message, e.g. "dict_1['data'] = 'val1' != dict_2['data'] = 'val2'".
func Diff(a Record, nameA string, b Record, nameB string) (bool, string) {
	if len(a) != len(b) {
		return false, fmt.Sprintf("len(%s.keys())=%d != len(%s.keys())=%d",
			nameA, len(a), nameB, len(b))
	}
	for _, k := range a.Keys() {
		vb, ok := b[k]
		if !ok {
			return false, fmt.Sprintf("%s['%s'] does not exist in %s", nameA, k, nameB)
		}
		if !Equal(a[k], vb) {
			return false, MismatchMessage(nameA, k, a[k], nameB, vb)
		}
	}
	return true, ""
}

// MismatchMessage formats one differing key/value pair.
func MismatchMessage(nameA, key string, va any, nameB string, vb any) string {
	return fmt.Sprintf("%s['%s'] = '%s' != %s['%s'] = '%s'",
		nameA, key, ValueString(va), nameB, key, ValueString(vb))
}

// Contains reports whether list holds a record structurally equal to r.
func Contains(list []Record, r Record) bool {
	for _, e := range list {
		if Equal(e, r) {
			return true
		}
	}
	return false
}
