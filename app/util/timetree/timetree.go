// Package timetree converts time.Time values to and from RFC 3339 text
// anywhere inside an open map/slice tree. Activity payloads are
// per-kind maps that may nest dates at any depth, so the conversion has
// to walk the whole tree instead of handling known fields.
package timetree

import "time"

// Flatten returns a copy of v with every time.Time leaf replaced by its
// RFC 3339 representation. Maps and slices are walked recursively,
// all other values pass through unchanged.
func Flatten(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Flatten(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Flatten(item)
		}
		return out
	default:
		return v
	}
}

// Restore is the inverse of Flatten: every string leaf that looks like
// a timestamp and parses as RFC 3339 becomes a time.Time again.
// Strings that merely look date-like but fail to parse are left alone.
func Restore(v any) any {
	switch val := v.(type) {
	case string:
		if !looksLikeTimestamp(val) {
			return val
		}
		t, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return val
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Restore(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Restore(item)
		}
		return out
	default:
		return v
	}
}

// looksLikeTimestamp is a cheap pre-filter before the full parse:
// ISO-like strings contain 'T', have a dash or colon and are at least
// as long as "2006-01-02T15:04:05".
func looksLikeTimestamp(s string) bool {
	if len(s) < 19 {
		return false
	}

	hasT := false
	hasSep := false
	for _, r := range s {
		switch r {
		case 'T':
			hasT = true
		case '-', ':':
			hasSep = true
		}
	}

	return hasT && hasSep
}
