package filter_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jsamuelsen11/go-mediate/internal/domain/filter"
)

type task struct {
	Name     string
	Order    float64
	Active   bool
	Category string
	Due      *time.Time
}

func taskSchema() filter.Schema[task] {
	return filter.Schema[task]{
		"Name":     {Kind: filter.String, Get: func(t task) (any, bool) { return t.Name, true }},
		"Order":    {Kind: filter.Number, Get: func(t task) (any, bool) { return t.Order, true }},
		"Active":   {Kind: filter.Bool, Get: func(t task) (any, bool) { return t.Active, true }},
		"Category": {Kind: filter.Enum, Get: func(t task) (any, bool) { return t.Category, true }},
		"Due": {Kind: filter.DateTime, Get: func(t task) (any, bool) {
			if t.Due == nil {
				return nil, false
			}
			return *t.Due, true
		}},
	}
}

func due(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

var tasks = []task{
	{Name: "write report", Order: 1, Active: true, Category: "work", Due: due("2026-03-01T09:00:00Z")},
	{Name: "buy milk", Order: 2, Active: false, Category: "home"},
	{Name: "review draft", Order: 3, Active: true, Category: "work", Due: due("2026-03-20T09:00:00Z")},
}

func matchNames(t *testing.T, p filter.Predicate[task]) []string {
	t.Helper()

	var names []string
	for _, item := range tasks {
		if p(item) {
			names = append(names, item.Name)
		}
	}
	return names
}

func TestCompile_Leaves(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node filter.Node
		want []string
	}{
		{
			name: "StringEqual",
			node: filter.Leaf("Name", filter.OpEqual, "buy milk"),
			want: []string{"buy milk"},
		},
		{
			name: "StringContains",
			node: filter.Leaf("Name", filter.OpContains, "re"),
			want: []string{"write report", "review draft"},
		},
		{
			name: "StringStartsWith",
			node: filter.Leaf("Name", filter.OpStartsWith, "re"),
			want: []string{"review draft"},
		},
		{
			name: "NumberLessThan",
			node: filter.Leaf("Order", filter.OpLessThan, float64(3)),
			want: []string{"write report", "buy milk"},
		},
		{
			name: "NumberBetween",
			node: filter.Leaf("Order", filter.OpBetween, []any{float64(2), float64(3)}),
			want: []string{"buy milk", "review draft"},
		},
		{
			name: "NumberCoercedFromString",
			node: filter.Leaf("Order", filter.OpGreaterThanOrEqual, "3"),
			want: []string{"review draft"},
		},
		{
			name: "BoolEqual",
			node: filter.Leaf("Active", filter.OpEqual, true),
			want: []string{"write report", "review draft"},
		},
		{
			name: "EnumIn",
			node: filter.Leaf("Category", filter.OpIn, []any{"home", "errand"}),
			want: []string{"buy milk"},
		},
		{
			name: "DateTimeAfter",
			node: filter.Leaf("Due", filter.OpGreaterThan, "2026-03-10T00:00:00Z"),
			want: []string{"review draft"},
		},
		{
			name: "IsNull",
			node: filter.Leaf("Due", filter.OpIsNull, nil),
			want: []string{"buy milk"},
		},
		{
			name: "IsNotNull",
			node: filter.Leaf("Due", filter.OpIsNotNull, nil),
			want: []string{"write report", "review draft"},
		},
		{
			name: "NullFieldNeverMatchesComparison",
			node: filter.Leaf("Due", filter.OpLessThan, "2027-01-01T00:00:00Z"),
			want: []string{"write report", "review draft"},
		},
		{
			name: "OperatorCaseInsensitive",
			node: filter.Leaf("Order", "lessthan", float64(2)),
			want: []string{"write report"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := filter.Compile(tt.node, taskSchema())
			if err != nil {
				t.Fatalf("Compile error = %v", err)
			}
			got := matchNames(t, p)
			if len(got) != len(tt.want) {
				t.Fatalf("matches = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("matches = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestCompile_Groups(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node filter.Node
		want []string
	}{
		{
			name: "And",
			node: filter.Group(filter.LogicAnd,
				filter.Leaf("Active", filter.OpEqual, true),
				filter.Leaf("Order", filter.OpGreaterThan, float64(1)),
			),
			want: []string{"review draft"},
		},
		{
			name: "Or",
			node: filter.Group(filter.LogicOr,
				filter.Leaf("Category", filter.OpEqual, "home"),
				filter.Leaf("Order", filter.OpEqual, float64(3)),
			),
			want: []string{"buy milk", "review draft"},
		},
		{
			name: "Not",
			node: filter.Group(filter.LogicNot,
				filter.Leaf("Active", filter.OpEqual, true),
			),
			want: []string{"buy milk"},
		},
		{
			name: "Nested",
			node: filter.Group(filter.LogicAnd,
				filter.Leaf("Active", filter.OpEqual, true),
				filter.Group(filter.LogicOr,
					filter.Leaf("Order", filter.OpEqual, float64(1)),
					filter.Leaf("Order", filter.OpEqual, float64(3)),
				),
			),
			want: []string{"write report", "review draft"},
		},
		{
			name: "LogicCaseInsensitive",
			node: filter.Node{Logic: "AND", Filters: []filter.Node{
				filter.Leaf("Active", filter.OpEqual, true),
			}},
			want: []string{"write report", "review draft"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := filter.Compile(tt.node, taskSchema())
			if err != nil {
				t.Fatalf("Compile error = %v", err)
			}
			got := matchNames(t, p)
			if len(got) != len(tt.want) {
				t.Fatalf("matches = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("matches = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		node     filter.Node
		wantPath string
	}{
		{
			name:     "EmptyNode",
			node:     filter.Node{},
			wantPath: "$",
		},
		{
			name: "MixedShape",
			node: filter.Node{
				Logic:    "and",
				Filters:  []filter.Node{filter.Leaf("Name", filter.OpEqual, "x")},
				Name:     "Name",
				Operator: filter.OpEqual,
			},
			wantPath: "$",
		},
		{
			name:     "EmptyGroup",
			node:     filter.Node{Logic: "and"},
			wantPath: "$",
		},
		{
			name: "NotWithTwoChildren",
			node: filter.Group(filter.LogicNot,
				filter.Leaf("Name", filter.OpEqual, "x"),
				filter.Leaf("Name", filter.OpEqual, "y"),
			),
			wantPath: "$",
		},
		{
			name:     "UnknownLogic",
			node:     filter.Node{Logic: "xor", Filters: []filter.Node{filter.Leaf("Name", filter.OpEqual, "x")}},
			wantPath: "$",
		},
		{
			name:     "UnknownField",
			node:     filter.Leaf("Nope", filter.OpEqual, "x"),
			wantPath: "$",
		},
		{
			name:     "UnknownOperator",
			node:     filter.Leaf("Name", "Like", "x"),
			wantPath: "$",
		},
		{
			name:     "OperatorIllegalForKind",
			node:     filter.Leaf("Name", filter.OpGreaterThan, "x"),
			wantPath: "$",
		},
		{
			name:     "ContainsOnBool",
			node:     filter.Leaf("Active", filter.OpContains, "tr"),
			wantPath: "$",
		},
		{
			name:     "NumberCoercionFailure",
			node:     filter.Leaf("Order", filter.OpEqual, "not-a-number"),
			wantPath: "$",
		},
		{
			name:     "DateTimeCoercionFailure",
			node:     filter.Leaf("Due", filter.OpGreaterThan, "yesterday"),
			wantPath: "$",
		},
		{
			name:     "NullValueWithoutNullOperator",
			node:     filter.Leaf("Name", filter.OpEqual, nil),
			wantPath: "$",
		},
		{
			name:     "BetweenWrongArity",
			node:     filter.Leaf("Order", filter.OpBetween, []any{float64(1)}),
			wantPath: "$",
		},
		{
			name:     "InRequiresArray",
			node:     filter.Leaf("Category", filter.OpIn, "home"),
			wantPath: "$",
		},
		{
			name:     "InEmptyArray",
			node:     filter.Leaf("Category", filter.OpIn, []any{}),
			wantPath: "$",
		},
		{
			name: "NestedErrorPath",
			node: filter.Group(filter.LogicAnd,
				filter.Leaf("Name", filter.OpEqual, "x"),
				filter.Leaf("Nope", filter.OpEqual, "y"),
			),
			wantPath: "$.filters[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := filter.Compile(tt.node, taskSchema())
			var fErr *filter.Error
			if !errors.As(err, &fErr) {
				t.Fatalf("Compile error = %v, want *filter.Error", err)
			}
			if fErr.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", fErr.Path, tt.wantPath)
			}
		})
	}
}

// evalNode is a naive interpreter over the node tree, evaluated per call
// with no compilation step. It gives an independent answer to check the
// compiled predicates against.
func evalNode(t *testing.T, n filter.Node, item task) bool {
	t.Helper()

	if n.IsGroup() {
		logic, ok := filter.ParseLogic(n.Logic)
		if !ok {
			t.Fatalf("evalNode: unknown logic %q", n.Logic)
		}
		switch logic {
		case filter.LogicAnd:
			for _, child := range n.Filters {
				if !evalNode(t, child, item) {
					return false
				}
			}
			return true
		case filter.LogicOr:
			for _, child := range n.Filters {
				if evalNode(t, child, item) {
					return true
				}
			}
			return false
		default:
			return !evalNode(t, n.Filters[0], item)
		}
	}

	field := taskSchema()[n.Name]
	v, present := field.Get(item)

	op, ok := filter.ParseOperator(string(n.Operator))
	if !ok {
		t.Fatalf("evalNode: unknown operator %q", n.Operator)
	}
	switch op {
	case filter.OpIsNull:
		return !present
	case filter.OpIsNotNull:
		return present
	}
	if !present {
		return false
	}

	switch field.Kind {
	case filter.Number:
		got := v.(float64)
		switch op {
		case filter.OpEqual:
			return got == n.Value.(float64)
		case filter.OpNotEqual:
			return got != n.Value.(float64)
		case filter.OpLessThan:
			return got < n.Value.(float64)
		case filter.OpGreaterThan:
			return got > n.Value.(float64)
		case filter.OpBetween:
			bounds := n.Value.([]any)
			return got >= bounds[0].(float64) && got <= bounds[1].(float64)
		}
	case filter.Bool:
		switch op {
		case filter.OpEqual:
			return v.(bool) == n.Value.(bool)
		case filter.OpNotEqual:
			return v.(bool) != n.Value.(bool)
		}
	case filter.DateTime:
		got := v.(time.Time)
		want, err := time.Parse(time.RFC3339, n.Value.(string))
		if err != nil {
			t.Fatalf("evalNode: bad date-time %q", n.Value)
		}
		switch op {
		case filter.OpLessThan:
			return got.Before(want)
		case filter.OpGreaterThan:
			return got.After(want)
		}
	default: // string-like kinds
		got := v.(string)
		switch op {
		case filter.OpEqual:
			return got == n.Value.(string)
		case filter.OpNotEqual:
			return got != n.Value.(string)
		case filter.OpContains:
			return strings.Contains(got, n.Value.(string))
		case filter.OpIn:
			for _, w := range n.Value.([]any) {
				if got == w.(string) {
					return true
				}
			}
			return false
		}
	}

	t.Fatalf("evalNode: unhandled operator %s for kind %s", op, field.Kind)
	return false
}

// TestCompile_AgreesWithDirectEvaluation checks the compiled predicates
// against the naive interpreter over every fixture, so compilation cannot
// change what a tree means.
func TestCompile_AgreesWithDirectEvaluation(t *testing.T) {
	t.Parallel()

	trees := []filter.Node{
		filter.Leaf("Name", filter.OpContains, "re"),
		filter.Leaf("Order", filter.OpBetween, []any{float64(1), float64(2)}),
		filter.Leaf("Category", filter.OpIn, []any{"home", "work"}),
		filter.Leaf("Due", filter.OpIsNull, nil),
		filter.Leaf("Due", filter.OpGreaterThan, "2026-03-10T00:00:00Z"),
		filter.Group(filter.LogicAnd,
			filter.Leaf("Active", filter.OpEqual, true),
			filter.Leaf("Order", filter.OpLessThan, float64(3)),
		),
		filter.Group(filter.LogicOr,
			filter.Leaf("Category", filter.OpNotEqual, "work"),
			filter.Leaf("Name", filter.OpEqual, "review draft"),
		),
		filter.Group(filter.LogicNot,
			filter.Group(filter.LogicAnd,
				filter.Leaf("Active", filter.OpEqual, false),
				filter.Leaf("Due", filter.OpIsNotNull, nil),
			),
		),
		filter.Group(filter.LogicAnd,
			filter.Leaf("Order", filter.OpGreaterThan, float64(0)),
			filter.Group(filter.LogicOr,
				filter.Leaf("Name", filter.OpContains, "milk"),
				filter.Group(filter.LogicNot,
					filter.Leaf("Category", filter.OpIn, []any{"home"}),
				),
			),
		),
	}

	for i, tree := range trees {
		p, err := filter.Compile(tree, taskSchema())
		if err != nil {
			t.Fatalf("tree %d: Compile error = %v", i, err)
		}
		for _, item := range tasks {
			got := p(item)
			want := evalNode(t, tree, item)
			if got != want {
				t.Errorf("tree %d, task %q: compiled = %v, direct evaluation = %v",
					i, item.Name, got, want)
			}
		}
	}
}

// TestNode_EncodeDecodeRoundTrip checks that a tree survives wire encoding
// structurally unchanged.
func TestNode_EncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	original := filter.Group(filter.LogicAnd,
		filter.Leaf("Active", filter.OpEqual, true),
		filter.Group(filter.LogicOr,
			filter.Leaf("Order", filter.OpBetween, []any{float64(1), float64(3)}),
			filter.Leaf("Category", filter.OpIn, []any{"home", "work"}),
		),
		filter.Group(filter.LogicNot,
			filter.Leaf("Name", filter.OpStartsWith, "re"),
		),
	)

	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("encoding node: %v", err)
	}

	var decoded filter.Node
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decoding node: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip changed the tree:\n  sent %+v\n  got  %+v", original, decoded)
	}

	// Both sides of the round trip compile to the same matches.
	before, err := filter.Compile(original, taskSchema())
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}
	after, err := filter.Compile(decoded, taskSchema())
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}
	for _, item := range tasks {
		if before(item) != after(item) {
			t.Errorf("task %q: original matches %v, decoded matches %v",
				item.Name, before(item), after(item))
		}
	}
}

func TestCompile_WireRoundTrip(t *testing.T) {
	t.Parallel()

	// The node tree decodes straight from its wire form.
	raw := `{"logic":"and","filters":[
		{"name":"Active","operator":"equal","value":true},
		{"name":"Order","operator":"LessThan","value":3}
	]}`

	var node filter.Node
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		t.Fatalf("decoding node: %v", err)
	}

	p, err := filter.Compile(node, taskSchema())
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}

	got := matchNames(t, p)
	if len(got) != 1 || got[0] != "write report" {
		t.Errorf("matches = %v, want [write report]", got)
	}
}
