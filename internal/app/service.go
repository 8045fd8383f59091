// Package app provides the core business service that implements the
// dependencies required by the HTTP API: the validation chain, the
// prediction pipeline, the ledger and the reconciliation protocol.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/frisk/internal/adapters/ledger"
	"github.com/okian/frisk/internal/domain/feature"
	"github.com/okian/frisk/internal/domain/observation"
	"github.com/okian/frisk/internal/domain/predict"
	"github.com/okian/frisk/internal/domain/temporal"
	"github.com/okian/frisk/internal/domain/validate"
	"github.com/okian/frisk/pkg/logger"
	"github.com/okian/frisk/pkg/metrics"
)

// Variant names for the two accepted observation shapes.
const (
	VariantFlat   = "flat"
	VariantNested = "nested"
)

// ErrUnknownVariant reports a predict call naming an unregistered shape.
var ErrUnknownVariant = errors.New("unknown observation variant")

// PredictResult is the outcome of one submit-and-predict operation. When
// Duplicate is set the prediction was computed but the ledger rejected
// the replayed identifier; the caller still receives the prediction
// together with the persistence error.
type PredictResult struct {
	ObservationID  string
	Prediction     bool
	Probability    float64
	HasProbability bool
	Duplicate      bool
}

// variant bundles a schema with its validation chain.
type variant struct {
	schema *observation.Schema
	chain  *validate.Chain
}

// Service implements the API dependencies for the prediction service.
type Service struct {
	mu sync.RWMutex

	// Core components
	ledger    ledger.Ledger
	executor  predict.Executor
	columns   []feature.Column
	assembler *feature.Assembler
	variants  map[string]*variant

	// Configuration
	databasePath    string
	modelPath       string
	recordCacheSize int
	busyTimeoutMS   int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDatabasePath sets the SQLite DSN of the prediction ledger.
func WithDatabasePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.databasePath = path
		}
	}
}

// WithModelPath sets the JSON model artifact to load at startup.
func WithModelPath(path string) Option {
	return func(s *Service) {
		s.modelPath = path
	}
}

// WithRecordCacheSize bounds the ledger's record cache.
func WithRecordCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.recordCacheSize = size
		}
	}
}

// WithBusyTimeout sets the SQLite busy timeout, in milliseconds, applied
// when the ledger opens its database.
func WithBusyTimeout(ms int) Option {
	return func(s *Service) {
		if ms > 0 {
			s.busyTimeoutMS = ms
		}
	}
}

// WithLedger injects a pre-built ledger, bypassing the SQLite default.
func WithLedger(l ledger.Ledger) Option {
	return func(s *Service) {
		s.ledger = l
	}
}

// WithExecutor injects a pre-built executor together with its trained
// column list.
func WithExecutor(e predict.Executor, columns []feature.Column) Option {
	return func(s *Service) {
		s.executor = e
		s.columns = columns
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		databasePath:    "predictions.db",
		recordCacheSize: 1024,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components: the model executor (loaded
// once per process, never reloaded mid-request), the feature assembler
// derived from the trained column list, the validation chains for both
// variants, and the ledger.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.executor == nil {
		if s.modelPath != "" {
			exec, err := predict.LoadArtifact(s.modelPath)
			if err != nil {
				return err
			}
			s.executor = exec
			s.columns = exec.Columns()
			s.logger.Info(ctx, "model artifact loaded", logger.String("path", s.modelPath))
		} else {
			exec := predict.NewLogisticExecutor()
			s.executor = exec
			s.columns = exec.Columns()
			s.logger.Info(ctx, "using built-in model weights")
		}
	}
	s.assembler = feature.NewAssembler(s.columns)

	s.variants = map[string]*variant{}
	for _, schema := range []*observation.Schema{observation.FlatSchema(), observation.NestedSchema()} {
		s.variants[schema.Name] = &variant{
			schema: schema,
			chain:  validate.NewChain(schema),
		}
	}

	if s.ledger == nil {
		led, err := ledger.NewSQLite(ctx, s.databasePath,
			ledger.WithCacheSize(s.recordCacheSize),
			ledger.WithBusyTimeoutMS(s.busyTimeoutMS),
		)
		if err != nil {
			return err
		}
		s.ledger = led
		s.logger.Info(ctx, "ledger opened", logger.String("path", s.databasePath))
	}

	s.started = true
	s.logger.Info(ctx, "prediction service started",
		logger.Int("columns", len(s.columns)),
		logger.Int("variants", len(s.variants)),
	)
	return nil
}

// Stop closes the ledger.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.ledger != nil {
		if err := s.ledger.Close(); err != nil {
			s.logger.Error(context.Background(), "ledger close failed", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "prediction service stopped")
}

// Predict runs the full pipeline for one observation: decode, validate
// (schema, types, domains, ranges, date in that fixed order with a
// short-circuit on the first failure), assemble, score, insert. Every
// validation failure comes back as an error whose text is the exact
// user-facing message.
func (s *Service) Predict(ctx context.Context, variantName string, body []byte) (PredictResult, error) {
	v, ok := s.variants[variantName]
	if !ok {
		return PredictResult{}, fmt.Errorf("%w: %s", ErrUnknownVariant, variantName)
	}

	decoded, err := observation.Decode(body, v.schema)
	if err != nil {
		metrics.RecordValidationFailure(validate.StageSchema)
		return PredictResult{}, err
	}
	// The nested shape carries the id outside the validated payload, so
	// its absence has to be reported here.
	if v.schema.NestedKey != "" && decoded.ID == "" {
		metrics.RecordValidationFailure(validate.StageSchema)
		return PredictResult{}, &validate.SchemaError{Missing: []string{v.schema.IDField}}
	}

	if failure := v.chain.Validate(decoded.Payload); failure != nil {
		metrics.RecordValidationFailure(failure.Stage())
		s.logger.Debug(ctx, "observation rejected",
			logger.String("variant", variantName),
			logger.String("stage", failure.Stage()),
			logger.String("reason", failure.Error()),
		)
		return PredictResult{}, failure
	}

	var derived *temporal.Components
	if v.schema.DateField != "" {
		raw, _ := decoded.Payload[v.schema.DateField].(string)
		components, failure := temporal.Parse(raw)
		if failure != nil {
			metrics.RecordValidationFailure(failure.Stage())
			return PredictResult{}, failure
		}
		derived = &components
	}

	vec, err := s.assembler.Assemble(decoded.Payload, derived)
	if err != nil {
		return PredictResult{}, err
	}

	start := time.Now()
	probability, err := s.executor.Score(ctx, vec)
	if err != nil {
		return PredictResult{}, err
	}
	prediction, err := s.executor.Classify(ctx, vec)
	if err != nil {
		return PredictResult{}, err
	}
	metrics.RecordExecutorLatency(float64(time.Since(start).Microseconds()) / 1000)

	result := PredictResult{
		ObservationID:  decoded.ID,
		Prediction:     prediction,
		Probability:    probability,
		HasProbability: v.schema.NestedKey != "",
	}

	rec := ledger.Record{
		ObservationID:  decoded.ID,
		RawObservation: string(decoded.Raw),
		Prediction:     prediction,
		CreatedAt:      time.Now().UTC(),
	}
	if result.HasProbability {
		rec.Probability = &probability
	}

	if err := s.ledger.Insert(ctx, rec); err != nil {
		if errors.Is(err, ledger.ErrDuplicateObservation) {
			// The prediction was computed; only persistence failed. The
			// caller still gets the prediction plus the duplicate error.
			metrics.RecordPredictionDuplicate()
			result.Duplicate = true
			return result, nil
		}
		return PredictResult{}, err
	}

	metrics.RecordPrediction()
	s.logger.Debug(ctx, "observation recorded",
		logger.String("observationID", decoded.ID),
		logger.Bool("prediction", prediction),
		logger.Float64("probability", probability),
	)
	return result, nil
}

// Reconcile attaches a ground-truth outcome to a previously recorded
// observation and returns the updated record.
func (s *Service) Reconcile(ctx context.Context, observationID string, outcome json.RawMessage) (ledger.Record, error) {
	rec, err := s.ledger.AttachOutcome(ctx, observationID, outcome)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			metrics.RecordReconciliationNotFound()
		}
		return ledger.Record{}, err
	}
	metrics.RecordReconciliation()
	s.logger.Debug(ctx, "outcome attached", logger.String("observationID", observationID))
	return rec, nil
}

// GetRecord returns the ledger record for an identifier.
func (s *Service) GetRecord(ctx context.Context, observationID string) (ledger.Record, error) {
	return s.ledger.Find(ctx, observationID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"columns": len(s.columns),
	}
	if s.started {
		if count, err := s.ledger.Count(context.Background()); err == nil {
			stats["ledgerRecords"] = count
			metrics.UpdateLedgerRecords(count)
		}
	}
	return stats
}
