package record

// FromJSON converts a value produced by encoding/json into record types:
// objects become Record and arrays of objects become []Record. Other arrays
// stay []any with their elements converted.
func FromJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(Record, len(t))
		for k, e := range t {
			out[k] = FromJSON(e)
		}
		return out
	case Record:
		for k, e := range t {
			t[k] = FromJSON(e)
		}
		return t
	case []any:
		allMaps := len(t) > 0
		for _, e := range t {
			if _, ok := e.(map[string]any); !ok {
				allMaps = false
				break
			}
		}
		if allMaps {
			out := make([]Record, len(t))
			for i, e := range t {
				out[i] = FromJSON(e).(Record)
			}
			return out
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = FromJSON(e)
		}
		return out
	}
	return v
}

// ListFromJSON converts a decoded JSON array into a list of records.
func ListFromJSON(v any) []Record {
	return Record{"v": FromJSON(v)}.List("v")
}
