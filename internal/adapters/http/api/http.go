// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/frisk/internal/adapters/ledger"
	"github.com/okian/frisk/internal/app"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Predict validates one observation body, scores it and records the
	// result in the ledger.
	Predict(ctx context.Context, variant string, body []byte) (app.PredictResult, error)

	// Reconcile attaches a ground-truth outcome to a recorded observation.
	Reconcile(ctx context.Context, observationID string, outcome json.RawMessage) (ledger.Record, error)

	// GetRecord returns the ledger record for an identifier.
	GetRecord(ctx context.Context, observationID string) (ledger.Record, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	predictHandler   *PredictHandler
	reconcileHandler *ReconcileHandler
	recordsHandler   *RecordsHandler

	maxBodyBytes int64
}

// ServerOption customizes the API server.
type ServerOption func(*Server)

// WithMaxBodyBytes caps the size of accepted request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{maxBodyBytes: 1 << 20}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.predictHandler = NewPredictHandler(deps, s.maxBodyBytes)
	s.reconcileHandler = NewReconcileHandler(deps, s.maxBodyBytes)
	s.recordsHandler = NewRecordsHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/should_search/", MetricsMiddleware(s.predictHandler.HandleShouldSearch, "should_search"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/search_result/", MetricsMiddleware(s.reconcileHandler.HandleSearchResult, "search_result"))
	mux.HandleFunc("/records/", MetricsMiddleware(s.recordsHandler.HandleGetRecord, "records"))
}

// readBody drains a capped request body.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return io.ReadAll(r.Body)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRecoverable writes a recoverable failure. Validation and ledger
// failures are part of the endpoint contract, so they go out as a 200
// with a structured error body rather than a transport-level status.
func writeRecoverable(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, errorResponse{Error: msg})
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
