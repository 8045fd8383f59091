// Package ledger provides the durable prediction ledger: a keyed record
// store holding at most one record per observation identifier. The ledger
// exclusively owns the store; no other component mutates records.
package ledger

import (
	"context"
	"encoding/json"
	"time"
)

// Record is the persisted ledger entry linking an observation to its
// prediction and, once reconciled, its real-world outcome.
type Record struct {
	// ObservationID is the externally supplied identifier, unique across
	// all records.
	ObservationID string `json:"observation_id"`

	// RawObservation holds the original request body verbatim for audit
	// and replay.
	RawObservation string `json:"raw_observation"`

	// Prediction is the model's label, written at insert time and
	// immutable thereafter.
	Prediction bool `json:"prediction"`

	// Probability is the calibrated score; nil for the legacy variant
	// that does not emit one.
	Probability *float64 `json:"probability,omitempty"`

	// Outcome is the ground-truth result attached by reconciliation;
	// nil until then.
	Outcome json.RawMessage `json:"outcome,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Ledger is the keyed record store the prediction pipeline writes to.
// Uniqueness of ObservationID is enforced by the store itself, not by a
// check-then-act in the caller.
type Ledger interface {
	// Insert creates a new record. It fails with ErrDuplicateObservation
	// when a record with the same identifier already exists, leaving the
	// store untouched.
	Insert(ctx context.Context, rec Record) error

	// Find returns the record for an identifier, or ErrNotFound.
	Find(ctx context.Context, observationID string) (Record, error)

	// AttachOutcome sets the outcome on an existing record and returns
	// the updated record, or ErrNotFound when the identifier is unknown.
	// Concurrent attachments to the same record are last-write-wins.
	AttachOutcome(ctx context.Context, observationID string, outcome json.RawMessage) (Record, error)

	// Count returns the number of records in the ledger.
	Count(ctx context.Context) (int, error)

	Close() error
}
