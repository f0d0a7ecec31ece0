// Package query parses and stringifies raw query strings without touching
// their escaping or their key order.
package query

import "strings"

// Value is one occurrence of a key. Bare marks a key written without '='.
type Value struct {
	Raw  string
	Bare bool
}

// Query is an ordered multi-map of raw query parameters. Duplicate keys are
// grouped at the position of their first occurrence.
type Query struct {
	keys   []string
	values map[string][]Value
}

func New() *Query {
	return &Query{values: make(map[string][]Value)}
}

// Parse splits s on '&' and then on the first '='. Empty segments are
// dropped; nothing is unescaped.
func Parse(s string) *Query {
	q := New()
	for _, item := range strings.Split(s, "&") {
		if item == "" {
			continue
		}
		key, raw, found := strings.Cut(item, "=")
		q.add(key, Value{Raw: raw, Bare: !found})
	}
	return q
}

func (q *Query) add(key string, v Value) {
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = append(q.values[key], v)
}

// Len reports the number of distinct keys.
func (q *Query) Len() int {
	if q == nil {
		return 0
	}
	return len(q.keys)
}

func (q *Query) Keys() []string {
	if q == nil {
		return nil
	}
	out := make([]string, len(q.keys))
	copy(out, q.keys)
	return out
}

func (q *Query) Has(key string) bool {
	if q == nil {
		return false
	}
	_, ok := q.values[key]
	return ok
}

// Get returns the raw value of key when it occurs exactly once with '='.
func (q *Query) Get(key string) (string, bool) {
	if q == nil {
		return "", false
	}
	vals := q.values[key]
	if len(vals) != 1 || vals[0].Bare {
		return "", false
	}
	return vals[0].Raw, true
}

func (q *Query) Values(key string) []Value {
	if q == nil {
		return nil
	}
	vals := q.values[key]
	out := make([]Value, len(vals))
	copy(out, vals)
	return out
}

// Set replaces every occurrence of key with a single raw value. A new key is
// appended after the existing ones.
func (q *Query) Set(key, raw string) {
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = []Value{{Raw: raw}}
}

// Del removes key and reports whether it was present.
func (q *Query) Del(key string) bool {
	if q == nil {
		return false
	}
	if _, ok := q.values[key]; !ok {
		return false
	}
	delete(q.values, key)
	for i, k := range q.keys {
		if k == key {
			q.keys = append(q.keys[:i], q.keys[i+1:]...)
			break
		}
	}
	return true
}

func (q *Query) Clone() *Query {
	out := New()
	if q == nil {
		return out
	}
	for _, k := range q.keys {
		for _, v := range q.values[k] {
			out.add(k, v)
		}
	}
	return out
}

// Encode is the inverse of Parse for already-escaped values.
func (q *Query) Encode() string {
	if q == nil {
		return ""
	}
	var b strings.Builder
	for _, k := range q.keys {
		for _, v := range q.values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			if !v.Bare {
				b.WriteByte('=')
				b.WriteString(v.Raw)
			}
		}
	}
	return b.String()
}
