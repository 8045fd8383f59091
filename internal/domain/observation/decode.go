package observation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Decode errors surfaced to the API layer as structured messages.
var (
	ErrMalformedBody = errors.New("could not parse request body as JSON object")
)

// Decoded is the canonical form of an inbound observation: the identifier,
// the raw field payload the validation chain operates on, and the original
// request bytes kept verbatim for the ledger.
type Decoded struct {
	ID      string
	Payload map[string]any
	Raw     []byte
}

// Decode parses a request body against the configured schema shape. It is
// deliberately lenient about missing keys: absence is reported by the
// schema validator with the exact field names, not here. Only a body that
// is not a JSON object (or a nested key that is not an object) fails.
func Decode(raw []byte, s *Schema) (Decoded, error) {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	d := Decoded{Raw: raw}
	if v, ok := body[s.IDField]; ok {
		d.ID = stringifyID(v)
	}

	if s.NestedKey == "" {
		d.Payload = body
		return d, nil
	}

	nested, ok := body[s.NestedKey]
	if !ok {
		// Leave the payload empty; the schema validator will name every
		// missing field.
		d.Payload = map[string]any{}
		return d, nil
	}
	payload, ok := nested.(map[string]any)
	if !ok {
		return Decoded{}, fmt.Errorf("%w: %q is not an object", ErrMalformedBody, s.NestedKey)
	}
	d.Payload = payload
	return d, nil
}

// stringifyID normalizes the externally supplied identifier. Clients send
// both quoted and bare numeric ids; the ledger keys records by the string
// form.
func stringifyID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		if id == float64(int64(id)) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}
