// Package predict defines the contract for scoring assembled feature
// vectors and ships a logistic-model executor loaded from a JSON weights
// artifact. The executor is constructed once at startup and immutable
// thereafter; scoring is deterministic for identical input.
package predict

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/frisk/internal/domain/feature"
)

// Default classification threshold on the positive-class probability.
const defaultThreshold = 0.5

// ErrVectorShape reports a vector whose columns do not match the trained
// schema. This must not happen for vectors built by an assembler derived
// from the executor's own column list.
var ErrVectorShape = errors.New("feature vector does not match trained columns")

// Executor scores assembled feature vectors. Classify is always
// available; Score exposes the calibrated positive-class probability used
// by the probability-emitting endpoint variant.
type Executor interface {
	Classify(ctx context.Context, vec feature.Vector) (bool, error)
	Score(ctx context.Context, vec feature.Vector) (float64, error)
}

// LogisticExecutor implements Executor with a linear model over one-hot
// encoded categoricals and raw numeric features.
type LogisticExecutor struct {
	columns     []feature.Column
	intercept   float64
	numeric     map[string]float64
	categorical map[string]map[string]float64
	flags       map[string]float64
	threshold   float64
}

// Option applies a configuration option to the LogisticExecutor.
type Option func(*LogisticExecutor)

// WithThreshold overrides the classification threshold.
func WithThreshold(t float64) Option {
	return func(e *LogisticExecutor) {
		if t > 0 && t < 1 {
			e.threshold = t
		}
	}
}

// NewLogisticExecutor creates an executor from the built-in default
// weights, applying any options.
func NewLogisticExecutor(opts ...Option) *LogisticExecutor {
	e := defaultArtifact().executor()
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Columns returns the trained column list. The feature assembler is built
// from this, which keeps the vector shape and the model schema in
// lockstep by construction.
func (e *LogisticExecutor) Columns() []feature.Column {
	return e.columns
}

// Score returns the positive-class probability for a vector.
func (e *LogisticExecutor) Score(_ context.Context, vec feature.Vector) (float64, error) {
	if vec.Len() != len(e.columns) {
		return 0, fmt.Errorf("%w: got %d columns, want %d", ErrVectorShape, vec.Len(), len(e.columns))
	}

	logit := e.intercept
	for i, col := range vec.Columns() {
		if col.Name != e.columns[i].Name {
			return 0, fmt.Errorf("%w: column %d is %q, want %q", ErrVectorShape, i, col.Name, e.columns[i].Name)
		}
		switch v := vec.At(i).(type) {
		case float64:
			logit += e.numeric[col.Name] * v
		case int:
			logit += e.numeric[col.Name] * float64(v)
		case bool:
			if v {
				logit += e.flags[col.Name]
			}
		case string:
			// Values that passed the closed enumeration but carry no
			// trained weight contribute nothing.
			logit += e.categorical[col.Name][v]
		}
	}
	return sigmoid(logit), nil
}

// Classify returns the predicted label for a vector.
func (e *LogisticExecutor) Classify(ctx context.Context, vec feature.Vector) (bool, error) {
	p, err := e.Score(ctx, vec)
	if err != nil {
		return false, err
	}
	return p >= e.threshold, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
