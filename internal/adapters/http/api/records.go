// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/frisk/internal/adapters/ledger"
)

// RecordsHandler exposes stored ledger records for audit.
type RecordsHandler struct {
	deps Dependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps Dependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// HandleGetRecord handles GET /records/{observation_id} requests.
func (h *RecordsHandler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_record"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	observationID := strings.TrimPrefix(r.URL.Path, "/records/")
	if observationID == "" || strings.Contains(observationID, "/") {
		writeError(w, http.StatusBadRequest, NewKind(op, ErrBadRequest))
		return
	}

	rec, err := h.deps.GetRecord(r.Context(), observationID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{
				Error: fmt.Sprintf("Observation ID: %q does not exist", observationID),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
