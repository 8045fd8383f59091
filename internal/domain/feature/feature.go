// Package feature assembles validated observations into the exact feature
// vector shape the prediction executor was trained against.
package feature

import (
	"errors"
	"fmt"

	"github.com/okian/frisk/internal/domain/observation"
	"github.com/okian/frisk/internal/domain/temporal"
)

// Sentinel kinds for assembly errors. Assembly failures indicate a
// mismatch between the declared schema and the trained column list; they
// must surface loudly rather than silently coerce.
var (
	ErrColumnMissing = errors.New("feature column missing from observation")
	ErrColumnType    = errors.New("feature column has wrong type")
)

// Column describes one position of the trained feature space.
type Column struct {
	Name string
	Kind observation.Kind
}

// Vector is an ordered, typed feature row. Values are stored in column
// order: strings for categoricals, bool for policy flags, float64 for
// coordinates and int for calendar fields.
type Vector struct {
	columns []Column
	values  []any
}

// Columns returns the column list in vector order.
func (v Vector) Columns() []Column { return v.columns }

// Len returns the number of columns.
func (v Vector) Len() int { return len(v.values) }

// At returns the value at position i.
func (v Vector) At(i int) any { return v.values[i] }

// Value returns the value for a named column.
func (v Vector) Value(name string) (any, bool) {
	for i, c := range v.columns {
		if c.Name == name {
			return v.values[i], true
		}
	}
	return nil, false
}

// Assembler merges validated raw fields with derived temporal fields and
// emits vectors in the fixed column order of the trained model. Transport
// fields (the identifier, the raw timestamp) are never part of the column
// list, so dropping them falls out of the selection.
type Assembler struct {
	columns []Column
}

// NewAssembler builds an assembler for the given trained column list.
func NewAssembler(columns []Column) *Assembler {
	return &Assembler{columns: columns}
}

// Assemble produces the feature vector for a payload that has already
// passed the validation chain. The derived components, when present,
// overlay the payload under the hour/day/month keys.
func (a *Assembler) Assemble(payload map[string]any, derived *temporal.Components) (Vector, error) {
	merged := make(map[string]any, len(payload)+3)
	for k, v := range payload {
		merged[k] = v
	}
	if derived != nil {
		merged["hour"] = float64(derived.Hour)
		merged["day"] = float64(derived.Day)
		merged["month"] = float64(derived.Month)
	}

	values := make([]any, len(a.columns))
	for i, col := range a.columns {
		raw, ok := merged[col.Name]
		if !ok {
			return Vector{}, fmt.Errorf("%w: %s", ErrColumnMissing, col.Name)
		}
		v, err := coerce(col, raw)
		if err != nil {
			return Vector{}, err
		}
		values[i] = v
	}
	return Vector{columns: a.columns, values: values}, nil
}

func coerce(col Column, raw any) (any, error) {
	switch col.Kind {
	case observation.KindString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case observation.KindBool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case observation.KindFloat:
		if f, ok := raw.(float64); ok {
			return f, nil
		}
	case observation.KindInt:
		if f, ok := raw.(float64); ok && f == float64(int64(f)) {
			return int(f), nil
		}
	}
	return nil, fmt.Errorf("%w: %s (%T)", ErrColumnType, col.Name, raw)
}
