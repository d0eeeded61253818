package filter

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Predicate is a compiled filter, evaluable per entity instance.
type Predicate[E any] func(E) bool

// Compile turns a filter tree into an executable predicate over the given
// schema. All validation and value coercion happens here, once per tree;
// the returned predicate only runs getters and comparisons.
func Compile[E any](node Node, schema Schema[E]) (Predicate[E], error) {
	return compileNode(node, schema, "$")
}

func compileNode[E any](n Node, schema Schema[E], path string) (Predicate[E], error) {
	isGroup := n.Logic != ""
	isLeaf := n.Name != "" || n.Operator != ""

	switch {
	case isGroup && isLeaf:
		return nil, &Error{Path: path, Reason: "node mixes group and leaf fields"}
	case isGroup:
		return compileGroup(n, schema, path)
	case isLeaf:
		return compileLeaf(n, schema, path)
	default:
		return nil, &Error{Path: path, Reason: "node is neither group nor leaf"}
	}
}

func compileGroup[E any](n Node, schema Schema[E], path string) (Predicate[E], error) {
	logic, ok := ParseLogic(n.Logic)
	if !ok {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("unknown logic %q", n.Logic)}
	}

	if len(n.Filters) == 0 {
		return nil, &Error{Path: path, Reason: "group requires at least one child"}
	}
	if logic == LogicNot && len(n.Filters) != 1 {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("not requires exactly one child, got %d", len(n.Filters))}
	}

	children := make([]Predicate[E], len(n.Filters))
	for i, child := range n.Filters {
		p, err := compileNode(child, schema, fmt.Sprintf("%s.filters[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children[i] = p
	}

	switch logic {
	case LogicAnd:
		// Children evaluate in input order with short-circuiting.
		return func(e E) bool {
			for _, p := range children {
				if !p(e) {
					return false
				}
			}
			return true
		}, nil
	case LogicOr:
		return func(e E) bool {
			for _, p := range children {
				if p(e) {
					return true
				}
			}
			return false
		}, nil
	default: // LogicNot
		child := children[0]
		return func(e E) bool { return !child(e) }, nil
	}
}

func compileLeaf[E any](n Node, schema Schema[E], path string) (Predicate[E], error) {
	if n.Name == "" {
		return nil, &Error{Path: path, Reason: "leaf requires a field name"}
	}

	field, ok := schema[n.Name]
	if !ok {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("unknown field %q", n.Name)}
	}

	op, ok := ParseOperator(string(n.Operator))
	if !ok {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("unknown operator %q", n.Operator)}
	}
	if !operatorAllowed(field.Kind, op) {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("operator %s is not valid for %s field %q", op, field.Kind, n.Name)}
	}

	get := field.Get
	kind := field.Kind

	switch op {
	case OpIsNull:
		return func(e E) bool { _, present := get(e); return !present }, nil

	case OpIsNotNull:
		return func(e E) bool { _, present := get(e); return present }, nil

	case OpIn:
		want, err := coerceList(n.Value, kind, path)
		if err != nil {
			return nil, err
		}
		return func(e E) bool {
			v, present := get(e)
			if !present {
				return false
			}
			for _, w := range want {
				if valuesEqual(kind, v, w) {
					return true
				}
			}
			return false
		}, nil

	case OpBetween:
		bounds, err := coerceList(n.Value, kind, path)
		if err != nil {
			return nil, err
		}
		if len(bounds) != 2 {
			return nil, &Error{Path: path, Reason: fmt.Sprintf("between requires exactly two values, got %d", len(bounds))}
		}
		lo, hi := bounds[0], bounds[1]
		return func(e E) bool {
			v, present := get(e)
			if !present {
				return false
			}
			return compareOrdinal(kind, v, lo) >= 0 && compareOrdinal(kind, v, hi) <= 0
		}, nil

	case OpContains, OpStartsWith, OpEndsWith:
		want, err := coerceValue(n.Value, kind)
		if err != nil {
			return nil, &Error{Path: path, Reason: err.Error()}
		}
		sub := want.(string)
		match := map[Operator]func(string, string) bool{
			OpContains:   strings.Contains,
			OpStartsWith: strings.HasPrefix,
			OpEndsWith:   strings.HasSuffix,
		}[op]
		return func(e E) bool {
			v, present := get(e)
			if !present {
				return false
			}
			return match(v.(string), sub)
		}, nil

	case OpEqual, OpNotEqual:
		want, err := coerceValue(n.Value, kind)
		if err != nil {
			return nil, &Error{Path: path, Reason: err.Error()}
		}
		negate := op == OpNotEqual
		return func(e E) bool {
			v, present := get(e)
			if !present {
				return false
			}
			return valuesEqual(kind, v, want) != negate
		}, nil

	default: // ordering operators
		want, err := coerceValue(n.Value, kind)
		if err != nil {
			return nil, &Error{Path: path, Reason: err.Error()}
		}
		return func(e E) bool {
			v, present := get(e)
			if !present {
				return false
			}
			c := compareOrdinal(kind, v, want)
			switch op {
			case OpGreaterThan:
				return c > 0
			case OpGreaterThanOrEqual:
				return c >= 0
			case OpLessThan:
				return c < 0
			default: // OpLessThanOrEqual
				return c <= 0
			}
		}, nil
	}
}

// coerceValue converts the supplied JSON/textual value into the canonical
// representation for the field's kind: string, float64, bool, or time.Time.
// Coercion failure is a compile error, never a silent non-match.
func coerceValue(v any, kind Kind) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("null value requires the IsNull or IsNotNull operator")
	}

	switch kind {
	case String, Identifier, Enum:
		switch t := v.(type) {
		case string:
			return t, nil
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64), nil
		case bool:
			return strconv.FormatBool(t), nil
		}

	case Number:
		switch t := v.(type) {
		case float64:
			return t, nil
		case int:
			return float64(t), nil
		case int64:
			return float64(t), nil
		case string:
			f, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot coerce %q to number", t)
			}
			return f, nil
		}

	case Bool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			b, err := strconv.ParseBool(t)
			if err != nil {
				return nil, fmt.Errorf("cannot coerce %q to boolean", t)
			}
			return b, nil
		}

	case DateTime:
		switch t := v.(type) {
		case time.Time:
			return t, nil
		case string:
			ts, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return nil, fmt.Errorf("cannot coerce %q to date-time (want RFC 3339)", t)
			}
			return ts, nil
		}
	}

	return nil, fmt.Errorf("cannot coerce %T value to %s", v, kind)
}

// coerceList coerces every element of a JSON array value.
func coerceList(v any, kind Kind, path string) ([]any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("operator requires an array value, got %T", v)}
	}
	if len(items) == 0 {
		return nil, &Error{Path: path, Reason: "operator requires a non-empty array value"}
	}

	out := make([]any, len(items))
	for i, item := range items {
		c, err := coerceValue(item, kind)
		if err != nil {
			return nil, &Error{Path: path, Reason: fmt.Sprintf("value[%d]: %s", i, err.Error())}
		}
		out[i] = c
	}
	return out, nil
}

// valuesEqual compares two canonical values of the same kind.
func valuesEqual(kind Kind, a, b any) bool {
	switch kind {
	case Number:
		return a.(float64) == b.(float64)
	case Bool:
		return a.(bool) == b.(bool)
	case DateTime:
		return a.(time.Time).Equal(b.(time.Time))
	default:
		return a.(string) == b.(string)
	}
}

// compareOrdinal compares two canonical ordinal values. Only Number and
// DateTime kinds admit ordering operators, which compileLeaf enforces.
func compareOrdinal(kind Kind, a, b any) int {
	if kind == DateTime {
		return a.(time.Time).Compare(b.(time.Time))
	}
	return cmp.Compare(a.(float64), b.(float64))
}
