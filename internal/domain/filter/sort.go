package filter

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// Direction orders a sort key.
type Direction string

// Sort directions. An empty direction defaults to ascending.
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortKey is one entry of the sort DSL: `{"name": "<field>", "direction": "asc"|"desc"}`.
type SortKey struct {
	Name      string `json:"name"`
	Direction string `json:"direction,omitempty"`
}

// CompileSort builds a multi-key comparator applying keys in listed order,
// primary first. Unknown fields or directions fail with a *SortError. Use
// the result with slices.SortStableFunc so equal elements keep their input
// order.
func CompileSort[E any](keys []SortKey, schema Schema[E]) (func(a, b E) int, error) {
	if len(keys) == 0 {
		return nil, &SortError{Index: 0, Reason: "at least one sort key is required"}
	}

	type compiledKey struct {
		get  func(E) (any, bool)
		kind Kind
		desc bool
	}

	compiled := make([]compiledKey, len(keys))
	for i, key := range keys {
		field, ok := schema[key.Name]
		if !ok {
			return nil, &SortError{Index: i, Field: key.Name, Reason: "unknown field"}
		}

		var desc bool
		switch strings.ToLower(key.Direction) {
		case "", string(Ascending):
			desc = false
		case string(Descending):
			desc = true
		default:
			return nil, &SortError{Index: i, Field: key.Name, Reason: fmt.Sprintf("unknown direction %q", key.Direction)}
		}

		compiled[i] = compiledKey{get: field.Get, kind: field.Kind, desc: desc}
	}

	return func(a, b E) int {
		for _, key := range compiled {
			av, aok := key.get(a)
			bv, bok := key.get(b)

			// Nulls sort before non-nulls in ascending order.
			var c int
			switch {
			case !aok && !bok:
				c = 0
			case !aok:
				c = -1
			case !bok:
				c = 1
			default:
				c = compareValues(key.kind, av, bv)
			}

			if key.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	}, nil
}

// compareValues orders two canonical values of the same kind. Booleans
// order false before true.
func compareValues(kind Kind, a, b any) int {
	switch kind {
	case Number:
		return cmp.Compare(a.(float64), b.(float64))
	case DateTime:
		return a.(time.Time).Compare(b.(time.Time))
	case Bool:
		av, bv := a.(bool), b.(bool)
		switch {
		case av == bv:
			return 0
		case bv:
			return -1
		default:
			return 1
		}
	default:
		return strings.Compare(a.(string), b.(string))
	}
}
