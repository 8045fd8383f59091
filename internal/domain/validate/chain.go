package validate

import (
	"github.com/okian/frisk/internal/domain/observation"
)

// Chain runs the validation steps for one observation schema. A Chain is
// immutable after construction and safe for concurrent use.
type Chain struct {
	schema *observation.Schema
}

// NewChain builds a validation chain for the given schema.
func NewChain(s *observation.Schema) *Chain {
	return &Chain{schema: s}
}

// Validate runs schema, type, domain and range checks in that fixed
// order, returning the first failure. A nil return means the payload
// passed every check and is safe to assemble into a feature vector.
func (c *Chain) Validate(payload map[string]any) Failure {
	if err := c.CheckSchema(payload); err != nil {
		return err
	}
	if err := c.CheckTypes(payload); err != nil {
		return err
	}
	if err := c.CheckDomains(payload); err != nil {
		return err
	}
	return c.CheckRanges(payload)
}

// CheckSchema confirms the payload carries exactly the declared field
// set: no required field absent, no unrecognized extras.
func (c *Chain) CheckSchema(payload map[string]any) Failure {
	declared := make(map[string]struct{}, len(c.schema.Fields))
	for _, f := range c.schema.Fields {
		declared[f.Name] = struct{}{}
	}

	var missing []string
	for name := range declared {
		if _, ok := payload[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}

	var extra []string
	for name := range payload {
		if _, ok := declared[name]; !ok {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		return &SchemaError{Extra: extra}
	}
	return nil
}

// CheckTypes confirms each field value matches its declared primitive
// kind, iterating fields in declaration order so the first reported
// mismatch is deterministic.
func (c *Chain) CheckTypes(payload map[string]any) Failure {
	for _, f := range c.schema.Fields {
		v := payload[f.Name]
		if !kindMatches(f.Kind, v) {
			return &TypeError{
				Field:    f.Name,
				Actual:   jsonKindName(v),
				Expected: f.Kind.String(),
			}
		}
	}
	return nil
}

// CheckDomains confirms every enumerated field holds one of its closed
// set of legal values.
func (c *Chain) CheckDomains(payload map[string]any) Failure {
	for _, f := range c.schema.Fields {
		if len(f.Enum) == 0 {
			continue
		}
		v := payload[f.Name]
		if !enumContains(f.Enum, v) {
			return &DomainError{Field: f.Name, Value: v, Allowed: f.Enum}
		}
	}
	return nil
}

// CheckRanges bounds-checks every field that declares a numeric range.
// Declaration order puts Latitude before Longitude, matching the order
// failures have always been reported in.
func (c *Chain) CheckRanges(payload map[string]any) Failure {
	for _, f := range c.schema.Fields {
		if f.Range == nil {
			continue
		}
		v, ok := payload[f.Name].(float64)
		if !ok || (f.Range.ZeroIsMissing && v == 0) {
			return &RangeError{Field: f.Name, Reason: ReasonMissing, Min: f.Range.Min, Max: f.Range.Max}
		}
		if v < f.Range.Min || v > f.Range.Max {
			return &RangeError{Field: f.Name, Reason: ReasonOutOfBounds, Min: f.Range.Min, Max: f.Range.Max}
		}
	}
	return nil
}

// kindMatches reports whether a decoded JSON value satisfies the declared
// kind. JSON numbers always decode to float64; integer kinds additionally
// require an integral value.
func kindMatches(k observation.Kind, v any) bool {
	switch k {
	case observation.KindString:
		_, ok := v.(string)
		return ok
	case observation.KindBool:
		_, ok := v.(bool)
		return ok
	case observation.KindFloat:
		_, ok := v.(float64)
		return ok
	case observation.KindInt:
		f, ok := v.(float64)
		return ok && f == float64(int64(f))
	case observation.KindAny:
		return true
	default:
		return false
	}
}

func enumContains(enum []any, v any) bool {
	for _, allowed := range enum {
		if v == allowed {
			return true
		}
	}
	return false
}

// jsonKindName names the actual type of a decoded JSON value for error
// messages.
func jsonKindName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "str"
	case bool:
		return "bool"
	case float64:
		return "float"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
