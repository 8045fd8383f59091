// Package temporal parses the raw ISO-8601 timestamp of an observation
// into the calendar components the model consumes as derived features.
package temporal

import (
	"fmt"
	"regexp"
	"time"

	"github.com/okian/frisk/internal/domain/validate"
)

// iso8601 is a strict pattern: date and time are mandatory, fractional
// seconds and a Z/offset designator are optional. Anything else (slashed
// dates, date-only strings, out-of-range components) fails before parsing.
var iso8601 = regexp.MustCompile(
	`^(-?(?:[1-9][0-9]*)?[0-9]{4})-(1[0-2]|0[1-9])-(3[01]|0[1-9]|[12][0-9])` +
		`T(2[0-3]|[01][0-9]):([0-5][0-9]):([0-5][0-9])(\.[0-9]+)?` +
		`(Z|[+-](?:2[0-3]|[01][0-9]):[0-5][0-9])?$`)

// Parse layouts tried in order once the pattern matched.
var layouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
}

// Components are the calendar features derived from a timestamp.
type Components struct {
	Hour  int
	Day   int
	Month int
}

// DateFormatError reports a timestamp that is not valid ISO-8601. It
// satisfies validate.Failure so the chain surfaces it like any other
// validation error.
type DateFormatError struct {
	Raw string
}

func (e *DateFormatError) Stage() string { return validate.StageDate }

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("ERROR: Date '%s' is not in correct ISO8601String format", e.Raw)
}

// Parse decomposes a strict ISO-8601 timestamp into hour, day-of-month
// and month-of-year.
func Parse(raw string) (Components, validate.Failure) {
	if !iso8601.MatchString(raw) {
		return Components{}, &DateFormatError{Raw: raw}
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		return Components{Hour: t.Hour(), Day: t.Day(), Month: int(t.Month())}, nil
	}
	// Pattern matched but no layout parsed it; calendar-impossible dates
	// like February 30th land here.
	return Components{}, &DateFormatError{Raw: raw}
}
