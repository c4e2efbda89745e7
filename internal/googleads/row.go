package googleads

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Row is one result row of a GAQL query, keyed by resource then field, e.g.
// {"metrics": {"costMicros": "1200000"}}. The REST API uses camelCase field
// names and encodes int64 values as strings; lookups accept either the GAQL
// snake_case path or the camelCase one.
type Row map[string]any

// Lookup returns the raw value at a dotted GAQL path such as
// "metrics.cost_micros".
func (r Row) Lookup(path string) (any, bool) {
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			v, ok = m[camelCase(part)]
		}
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// String returns the value at path rendered as a string.
func (r Row) String(path string) (string, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Float returns the numeric value at path. Numeric strings are parsed.
func (r Row) Float(path string) (float64, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int returns the integer value at path.
func (r Row) Int(path string) (int64, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		f, err := t.Float64()
		return int64(f), err == nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	default:
		return 0, false
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Row:
		return map[string]any(t), true
	default:
		return nil, false
	}
}

// camelCase turns "cost_micros" into "costMicros".
func camelCase(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
