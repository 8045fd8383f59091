// Package observation declares the inbound observation shapes and the
// declarative schema that drives the validation chain. Both endpoint
// variants (flat legacy payloads and payloads nested under "observation")
// are described by the same Schema type; only the field tables differ.
package observation

// Kind identifies the primitive type expected for a field value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindFloat
	KindInt

	// KindAny accepts every JSON value. The legacy identifier column was
	// typed as a pandas object dtype, which any value satisfies; clients
	// send both quoted and bare numeric ids.
	KindAny
)

// String returns the kind name used in validation error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "str"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindAny:
		return "object"
	default:
		return "unknown"
	}
}

// Range bounds a numeric field inclusively. When ZeroIsMissing is set, a
// value of exactly zero is treated the same as an absent field. That
// rejects a legitimate coordinate of 0.0, but it is the documented
// behavior clients of the legacy endpoint rely on.
type Range struct {
	Min           float64
	Max           float64
	ZeroIsMissing bool
}

// Field describes one observation field: its name, primitive kind, an
// optional closed enumeration and an optional numeric range.
type Field struct {
	Name  string
	Kind  Kind
	Enum  []any
	Range *Range
}

// Schema describes one accepted observation shape. Fields are listed in
// declaration order; validators iterate them in that order so error
// messages are deterministic.
type Schema struct {
	// Name labels the variant in logs and metrics ("flat", "nested").
	Name string

	// IDField holds the observation identifier key, always at the top
	// level of the request body.
	IDField string

	// NestedKey, when non-empty, names the top-level key the raw fields
	// are nested under. Empty means the fields sit beside the id.
	NestedKey string

	// DateField names the raw ISO-8601 timestamp field to derive
	// hour/day/month from. Empty when the caller supplies the calendar
	// fields directly.
	DateField string

	Fields []Field
}

// FieldNames returns the declared field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the declaration for a named field.
func (s *Schema) Lookup(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
