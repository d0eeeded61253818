// Package filter compiles a serializable boolean-expression tree and sort
// specification into executable predicates and comparators over a target
// entity shape.
//
// The wire DSL is a tree of nodes. A group node combines children with a
// logic connective; a leaf node tests a single field:
//
//	{"logic": "and", "filters": [
//	    {"name": "IsActive", "operator": "Equal", "value": true},
//	    {"name": "DisplayOrder", "operator": "LessThan", "value": 3}
//	]}
//
// Field access goes through an explicit per-entity Schema of registered
// getters, so no reflection runs when a compiled predicate evaluates.
// Operator and logic names match case-insensitively. A malformed tree, an
// unknown field, an operator illegal for the field's semantic type, or a
// value that cannot be coerced fails compilation with an *Error naming the
// offending node path; a bad filter never silently degrades to "no match".
package filter

import (
	"fmt"
	"strings"
)

// Logic is a group-node connective.
type Logic string

// Group connectives. Not negates exactly one child.
const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
	LogicNot Logic = "not"
)

// Operator is a leaf-node comparison. The set is closed; which operators are
// legal depends on the field's semantic Kind.
type Operator string

// Leaf operators.
const (
	OpEqual              Operator = "Equal"
	OpNotEqual           Operator = "NotEqual"
	OpContains           Operator = "Contains"
	OpStartsWith         Operator = "StartsWith"
	OpEndsWith           Operator = "EndsWith"
	OpGreaterThan        Operator = "GreaterThan"
	OpGreaterThanOrEqual Operator = "GreaterThanOrEqual"
	OpLessThan           Operator = "LessThan"
	OpLessThanOrEqual    Operator = "LessThanOrEqual"
	OpBetween            Operator = "Between"
	OpIsNull             Operator = "IsNull"
	OpIsNotNull          Operator = "IsNotNull"
	OpIn                 Operator = "In"
)

// operatorNames maps lowercased wire spellings to canonical operators.
var operatorNames = map[string]Operator{
	"equal":              OpEqual,
	"notequal":           OpNotEqual,
	"contains":           OpContains,
	"startswith":         OpStartsWith,
	"endswith":           OpEndsWith,
	"greaterthan":        OpGreaterThan,
	"greaterthanorequal": OpGreaterThanOrEqual,
	"lessthan":           OpLessThan,
	"lessthanorequal":    OpLessThanOrEqual,
	"between":            OpBetween,
	"isnull":             OpIsNull,
	"isnotnull":          OpIsNotNull,
	"in":                 OpIn,
}

// ParseOperator resolves a wire operator name case-insensitively.
func ParseOperator(s string) (Operator, bool) {
	op, ok := operatorNames[strings.ToLower(s)]
	return op, ok
}

// ParseLogic resolves a wire logic name case-insensitively.
func ParseLogic(s string) (Logic, bool) {
	switch strings.ToLower(s) {
	case "and":
		return LogicAnd, true
	case "or":
		return LogicOr, true
	case "not":
		return LogicNot, true
	default:
		return "", false
	}
}

// Node is one node of the filter tree, group or leaf. A group node has Logic
// set (and Filters populated); a leaf node has Name and Operator set. The
// two shapes share a struct so the wire form round-trips structurally
// unchanged; Compile rejects nodes that mix both shapes.
type Node struct {
	// Group fields.
	Logic   string `json:"logic,omitempty"`
	Filters []Node `json:"filters,omitempty"`

	// Leaf fields.
	Name     string   `json:"name,omitempty"`
	Operator Operator `json:"operator,omitempty"`
	Value    any      `json:"value,omitempty"`
}

// IsGroup reports whether the node is a group node.
func (n Node) IsGroup() bool { return n.Logic != "" }

// Group builds a group node. Convenience constructor for programmatic callers.
func Group(logic Logic, children ...Node) Node {
	return Node{Logic: string(logic), Filters: children}
}

// Leaf builds a leaf node. Convenience constructor for programmatic callers.
func Leaf(name string, op Operator, value any) Node {
	return Node{Name: name, Operator: op, Value: value}
}

// Error reports a malformed or type-mismatched filter node. Path locates the
// offending node within the tree, e.g. "$.filters[1]".
type Error struct {
	Path   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("filter error at %s: %s", e.Path, e.Reason)
}

// SortError reports an invalid sort specification entry.
type SortError struct {
	Index  int
	Field  string
	Reason string
}

func (e *SortError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("sort error at key %d (%s): %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("sort error at key %d: %s", e.Index, e.Reason)
}
