// Package validate implements the observation validation chain: schema,
// primitive types, closed enumerations and numeric ranges, checked in
// that fixed order with a short-circuit on the first failure.
package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Validation stage labels, used for metrics and logs.
const (
	StageSchema  = "schema"
	StageTypes   = "types"
	StageDomains = "domains"
	StageRanges  = "ranges"
	StageDate    = "date"
)

// Failure is a recoverable validation error. Its Error text is the exact
// human-readable message returned to the caller.
type Failure interface {
	error
	Stage() string
}

// SchemaError reports a field-set mismatch: either missing required
// fields or unrecognized extras. Field names are sorted so the message is
// deterministic.
type SchemaError struct {
	Missing []string
	Extra   []string
}

func (e *SchemaError) Stage() string { return StageSchema }

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return "Missing columns: " + quoteList(e.Missing)
	}
	return "Unrecognized columns provided: " + quoteList(e.Extra)
}

// TypeError reports a primitive type mismatch for a single field.
type TypeError struct {
	Field    string
	Actual   string
	Expected string
}

func (e *TypeError) Stage() string { return StageTypes }

func (e *TypeError) Error() string {
	return fmt.Sprintf("Field %s is %s, while it should be %s", e.Field, e.Actual, e.Expected)
}

// DomainError reports a value outside a closed enumeration.
type DomainError struct {
	Field   string
	Value   any
	Allowed []any
}

func (e *DomainError) Stage() string { return StageDomains }

func (e *DomainError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, v := range e.Allowed {
		allowed[i] = "'" + formatValue(v) + "'"
	}
	return fmt.Sprintf("Invalid value provided for %s: %s. Allowed values are: %s",
		e.Field, formatValue(e.Value), strings.Join(allowed, ","))
}

// Range failure reasons.
const (
	ReasonMissing     = "missing"
	ReasonOutOfBounds = "out_of_bounds"
)

// RangeError reports a numeric field that is absent (or spuriously zero)
// or outside its inclusive bounds.
type RangeError struct {
	Field    string
	Reason   string
	Min, Max float64
}

func (e *RangeError) Stage() string { return StageRanges }

func (e *RangeError) Error() string {
	if e.Reason == ReasonMissing {
		return fmt.Sprintf("Field `%s` missing", e.Field)
	}
	return fmt.Sprintf("Field `%s` is not between %s and %s",
		e.Field, formatBound(e.Min), formatBound(e.Max))
}

func quoteList(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	for i, n := range sorted {
		sorted[i] = "'" + n + "'"
	}
	return "[" + strings.Join(sorted, ", ") + "]"
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		// The legacy service rendered booleans with Python's casing.
		if t {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
