package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/okian/frisk/pkg/metrics"
)

// Defaults for the SQLite ledger.
const (
	defaultCacheSize     = 1024
	defaultBusyTimeoutMS = 5000
)

// SQLiteLedger implements Ledger over modernc.org/sqlite with an LRU
// record cache on the read path. Writes always go to the database; the
// UNIQUE constraint on observation_id is what enforces at-most-one
// record per identifier, so two concurrent inserts of the same id can
// never both succeed.
type SQLiteLedger struct {
	db    *sql.DB
	cache *lru.Cache[string, Record]

	cacheSize     int
	busyTimeoutMS int
}

// NewSQLite opens (or creates) the ledger database at the given DSN and
// applies the schema.
func NewSQLite(ctx context.Context, dsn string, opts ...Option) (*SQLiteLedger, error) {
	l := &SQLiteLedger{
		cacheSize:     defaultCacheSize,
		busyTimeoutMS: defaultBusyTimeoutMS,
	}
	for _, opt := range opts {
		opt(l)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %q: %w", dsn, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", l.busyTimeoutMS),
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("ledger: exec %s: %w", pragma, err)
		}
	}
	l.db = db

	if l.cacheSize > 0 {
		cache, err := lru.New[string, Record](l.cacheSize)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("ledger: cache: %w", err)
		}
		l.cache = cache
	}

	if err := l.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS predictions (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	observation_id  TEXT NOT NULL UNIQUE,
	raw_observation TEXT NOT NULL,
	prediction      INTEGER NOT NULL,
	probability     REAL,
	outcome         TEXT,
	created_at      DATETIME NOT NULL
);
`

func (l *SQLiteLedger) migrate(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, migration); err != nil {
		return fmt.Errorf("ledger: migrate: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

// Insert creates a new record. The insert is a single statement, so a
// uniqueness violation leaves no partial row behind.
func (l *SQLiteLedger) Insert(ctx context.Context, rec Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordLedgerInsertLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var probability sql.NullFloat64
	if rec.Probability != nil {
		probability = sql.NullFloat64{Float64: *rec.Probability, Valid: true}
	}
	var outcome sql.NullString
	if rec.Outcome != nil {
		outcome = sql.NullString{String: string(rec.Outcome), Valid: true}
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO predictions (observation_id, raw_observation, prediction, probability, outcome, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ObservationID, rec.RawObservation, boolToInt(rec.Prediction), probability, outcome, rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateObservation, rec.ObservationID)
		}
		return fmt.Errorf("ledger: insert %s: %w", rec.ObservationID, err)
	}

	if l.cache != nil {
		l.cache.Add(rec.ObservationID, rec)
	}
	return nil
}

// Find returns the record for an identifier, serving recently touched
// records from the cache.
func (l *SQLiteLedger) Find(ctx context.Context, observationID string) (Record, error) {
	if l.cache != nil {
		if rec, ok := l.cache.Get(observationID); ok {
			metrics.RecordLedgerCacheHit()
			return rec, nil
		}
		metrics.RecordLedgerCacheMiss()
	}

	start := time.Now()
	defer func() {
		metrics.RecordLedgerQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	rec, err := l.selectRecord(ctx, observationID)
	if err != nil {
		return Record{}, err
	}
	if l.cache != nil {
		l.cache.Add(observationID, rec)
	}
	return rec, nil
}

// AttachOutcome sets the outcome on an existing record. The update is a
// single statement keyed on the identifier; repeated attachments simply
// overwrite, which keeps concurrent reconciliations last-write-wins.
func (l *SQLiteLedger) AttachOutcome(ctx context.Context, observationID string, outcome json.RawMessage) (Record, error) {
	res, err := l.db.ExecContext(ctx,
		`UPDATE predictions SET outcome = ? WHERE observation_id = ?`,
		string(outcome), observationID,
	)
	if err != nil {
		return Record{}, fmt.Errorf("ledger: attach outcome %s: %w", observationID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Record{}, fmt.Errorf("ledger: attach outcome %s: %w", observationID, err)
	}
	if n == 0 {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, observationID)
	}

	rec, err := l.selectRecord(ctx, observationID)
	if err != nil {
		return Record{}, err
	}
	if l.cache != nil {
		l.cache.Add(observationID, rec)
	}
	return rec, nil
}

// Count returns the number of records in the ledger.
func (l *SQLiteLedger) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ledger: count: %w", err)
	}
	return n, nil
}

func (l *SQLiteLedger) selectRecord(ctx context.Context, observationID string) (Record, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT observation_id, raw_observation, prediction, probability, outcome, created_at
		FROM predictions WHERE observation_id = ?`,
		observationID,
	)

	var (
		rec         Record
		prediction  int
		probability sql.NullFloat64
		outcome     sql.NullString
	)
	err := row.Scan(&rec.ObservationID, &rec.RawObservation, &prediction, &probability, &outcome, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, observationID)
	}
	if err != nil {
		return Record{}, fmt.Errorf("ledger: scan %s: %w", observationID, err)
	}

	rec.Prediction = prediction != 0
	if probability.Valid {
		rec.Probability = &probability.Float64
	}
	if outcome.Valid {
		rec.Outcome = json.RawMessage(outcome.String)
	}
	return rec, nil
}

// isUniqueViolation reports whether err is the SQLite unique-constraint
// result code, covering both dedicated UNIQUE columns and primary keys.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	default:
		return false
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
