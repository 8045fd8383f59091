package predict

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/okian/frisk/internal/domain/feature"
	"github.com/okian/frisk/internal/domain/observation"
)

// Artifact is the on-disk JSON form of a trained model: the ordered
// column list with per-column kinds, the intercept, and weight tables for
// numeric, boolean and categorical features. It is loaded once per
// process at startup and never reloaded mid-request.
type Artifact struct {
	Columns     []ArtifactColumn              `json:"columns"`
	Intercept   float64                       `json:"intercept"`
	Numeric     map[string]float64            `json:"numeric"`
	Flags       map[string]float64            `json:"flags"`
	Categorical map[string]map[string]float64 `json:"categorical"`

	// Threshold is the probability cutoff for a positive classification.
	// Zero, the JSON default for an absent key, selects 0.5.
	Threshold float64 `json:"threshold"`
}

// ArtifactColumn pairs a column name with its serialized kind.
type ArtifactColumn struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// LoadArtifact reads and validates a model artifact, returning the
// executor built from it.
func LoadArtifact(path string) (*LogisticExecutor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a.executor(), nil
}

func (a *Artifact) validate() error {
	if len(a.Columns) == 0 {
		return fmt.Errorf("model artifact declares no columns")
	}
	for _, c := range a.Columns {
		if _, err := parseKind(c.Kind); err != nil {
			return fmt.Errorf("model artifact column %q: %w", c.Name, err)
		}
	}
	if a.Threshold < 0 || a.Threshold >= 1 {
		return fmt.Errorf("model artifact threshold %v out of [0,1)", a.Threshold)
	}
	return nil
}

func (a *Artifact) executor() *LogisticExecutor {
	cols := make([]feature.Column, len(a.Columns))
	for i, c := range a.Columns {
		kind, _ := parseKind(c.Kind)
		cols[i] = feature.Column{Name: c.Name, Kind: kind}
	}
	threshold := a.Threshold
	if threshold == 0 {
		threshold = defaultThreshold
	}
	return &LogisticExecutor{
		columns:     cols,
		intercept:   a.Intercept,
		numeric:     orEmpty(a.Numeric),
		flags:       orEmpty(a.Flags),
		categorical: orEmptyNested(a.Categorical),
		threshold:   threshold,
	}
}

func parseKind(s string) (observation.Kind, error) {
	switch s {
	case "str":
		return observation.KindString, nil
	case "bool":
		return observation.KindBool, nil
	case "float":
		return observation.KindFloat, nil
	case "int":
		return observation.KindInt, nil
	default:
		return 0, fmt.Errorf("unknown column kind %q", s)
	}
}

func orEmpty(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}

func orEmptyNested(m map[string]map[string]float64) map[string]map[string]float64 {
	if m == nil {
		return map[string]map[string]float64{}
	}
	return m
}
