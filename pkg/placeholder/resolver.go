// Package placeholder substitutes ${name.path} references inside arbitrary
// value trees against a results map. Resolution is pure: no I/O, no clocks,
// and a reference that cannot be satisfied falls through to its literal text.
package placeholder

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/flowmesh/flowmesh/engine/core"
)

var refPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+(?:\.[A-Za-z0-9_]+)*)\}`)

// HasPlaceholder reports whether s contains at least one ${...} reference.
func HasPlaceholder(s string) bool {
	return refPattern.MatchString(s)
}

// Resolve walks a value tree and replaces every placeholder with the
// corresponding value from results. Containers are rebuilt preserving kind
// and order; non-string scalars pass through untouched.
func Resolve(value any, results map[string]any) any {
	switch v := value.(type) {
	case string:
		return resolveString(v, results)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = Resolve(val, results)
		}
		return out
	case core.Input:
		out := make(core.Input, len(v))
		for k, val := range v {
			out[k] = Resolve(val, results)
		}
		return out
	case core.Output:
		out := make(core.Output, len(v))
		for k, val := range v {
			out[k] = Resolve(val, results)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = Resolve(val, results)
		}
		return out
	default:
		return v
	}
}

// resolveString handles the two string cases from the resolution rules: a
// string that is exactly one reference keeps the native type of the referenced
// value; anything else renders each reference into its text form.
func resolveString(s string, results map[string]any) any {
	m := refPattern.FindStringSubmatch(s)
	if m != nil && m[0] == s {
		if v, ok := lookup(m[1], results); ok {
			return v
		}
		return s
	}
	return refPattern.ReplaceAllStringFunc(s, func(tok string) string {
		path := tok[2 : len(tok)-1]
		v, ok := lookup(path, results)
		if !ok {
			return tok
		}
		return Stringify(v)
	})
}

// lookup splits path into dot segments and traverses the results map. The
// first segment addresses a task record; a single-segment reference resolves
// to the record's "output" field by convention, and a field segment that is
// not a record field descends into the output value, so ${a.output.x} and
// the shorthand ${a.x} reach the same place.
func lookup(path string, results map[string]any) (any, bool) {
	segs := strings.Split(path, ".")
	current, ok := results[segs[0]]
	if !ok {
		return nil, false
	}
	if len(segs) == 1 {
		if rec, isMap := asMap(current); isMap {
			if out, has := rec["output"]; has {
				return out, true
			}
		}
		return current, true
	}
	rest := segs[1:]
	if rec, isMap := asMap(current); isMap {
		if v, has := rec[rest[0]]; has {
			current = v
			rest = rest[1:]
		} else if out, has := rec["output"]; has {
			if m, outIsMap := asMap(out); outIsMap {
				v, found := m[rest[0]]
				if !found {
					return nil, false
				}
				current = v
				rest = rest[1:]
			}
		}
	}
	for _, seg := range rest {
		if m, isMap := asMap(current); isMap {
			next, has := m[seg]
			if !has {
				return nil, false
			}
			current = next
			continue
		}
		if list, isList := current.([]any); isList {
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(list) {
				return nil, false
			}
			current = list[idx]
			continue
		}
		// Scalar reached before the path drained: no further traversal.
		return nil, false
	}
	return current, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case *map[string]any:
		if m != nil {
			return *m, true
		}
	case core.Input:
		return m, true
	case core.Output:
		return m, true
	case *core.Input:
		if m != nil {
			return *m, true
		}
	case *core.Output:
		if m != nil {
			return *m, true
		}
	}
	return nil, false
}

// Stringify renders a resolved value into its canonical textual form for
// embedding inside a larger string: scalars via %v, containers as compact
// JSON, nil as "null".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprintf("%v", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
