package listing

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Filters maps a filter key to its value. Supported values are string,
// []string, bool, the integer and float kinds, and nil.
type Filters map[string]any

// Clone returns a copy of f. Slice values are copied too.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		if s, ok := v.([]string); ok {
			v = slices.Clone(s)
		}
		out[k] = v
	}
	return out
}

// Merge returns f with every key of other laid over it
func (f Filters) Merge(other Filters) Filters {
	out := f.Clone()
	maps.Copy(out, other.Clone())
	return out
}

// Int returns the value of key as a positive int, or 0
func (f Filters) Int(key string) int {
	switch v := f[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case int64:
		if v > 0 {
			return int(v)
		}
	case string:
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// Encode serializes filters to query values. Nil values and empty strings
// are left out; string slices are joined with commas.
func (f Filters) Encode() url.Values {
	values := url.Values{}
	for k, v := range f {
		s, ok := encodeValue(v)
		if !ok {
			continue
		}
		values.Set(k, s)
	}
	return values
}

func encodeValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case []string:
		if len(val) == 0 {
			return "", false
		}
		return strings.Join(val, ","), true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case fmt.Stringer:
		return encodeValue(val.String())
	default:
		return fmt.Sprint(val), true
	}
}
