package filter

// Kind is the semantic type of an entity field. It determines which
// operators are legal and how supplied values are coerced.
type Kind int

// Semantic field kinds.
const (
	String Kind = iota + 1
	Number
	Bool
	DateTime
	Identifier
	Enum
)

// String returns the kind name for error messages.
func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "boolean"
	case DateTime:
		return "date-time"
	case Identifier:
		return "identifier"
	case Enum:
		return "enum"
	default:
		return "unknown"
	}
}

// Field describes one filterable/sortable entity field: its semantic kind
// and a registered getter. The getter returns ok=false when the field is
// null for the given instance. The returned value must match the kind:
// string for String/Identifier/Enum, float64 for Number, bool for Bool, and
// time.Time for DateTime.
type Field[E any] struct {
	Kind Kind
	Get  func(E) (any, bool)
}

// Schema maps field names to their descriptors for one entity shape. Field
// name matching is exact; operator matching is case-insensitive.
type Schema[E any] map[string]Field[E]

// opsByKind lists the legal operators per semantic kind. String fields get
// the text operators; ordinal kinds (number, date-time) additionally get the
// ordering operators; identifier, enum, and boolean fields get equality,
// membership, and null tests only.
var opsByKind = map[Kind]map[Operator]bool{
	String: {
		OpEqual: true, OpNotEqual: true, OpContains: true, OpStartsWith: true,
		OpEndsWith: true, OpIsNull: true, OpIsNotNull: true, OpIn: true,
	},
	Identifier: {
		OpEqual: true, OpNotEqual: true, OpIsNull: true, OpIsNotNull: true, OpIn: true,
	},
	Enum: {
		OpEqual: true, OpNotEqual: true, OpIsNull: true, OpIsNotNull: true, OpIn: true,
	},
	Bool: {
		OpEqual: true, OpNotEqual: true, OpIsNull: true, OpIsNotNull: true, OpIn: true,
	},
	Number: {
		OpEqual: true, OpNotEqual: true, OpGreaterThan: true, OpGreaterThanOrEqual: true,
		OpLessThan: true, OpLessThanOrEqual: true, OpBetween: true,
		OpIsNull: true, OpIsNotNull: true, OpIn: true,
	},
	DateTime: {
		OpEqual: true, OpNotEqual: true, OpGreaterThan: true, OpGreaterThanOrEqual: true,
		OpLessThan: true, OpLessThanOrEqual: true, OpBetween: true,
		OpIsNull: true, OpIsNotNull: true, OpIn: true,
	},
}

// operatorAllowed reports whether op is legal for fields of the given kind.
func operatorAllowed(kind Kind, op Operator) bool {
	return opsByKind[kind][op]
}
