// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/frisk/internal/adapters/ledger"
	"github.com/okian/frisk/internal/domain/observation"
)

// ReconcileHandler handles ground-truth outcome submissions.
type ReconcileHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewReconcileHandler creates a new reconciliation handler.
func NewReconcileHandler(deps Dependencies, maxBodyBytes int64) *ReconcileHandler {
	return &ReconcileHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleSearchResult handles POST /search_result/ requests. The body
// carries the observation identifier and the observed outcome; on success
// the full request payload is echoed back with the stored prediction
// attached under predicted_outcome.
func (h *ReconcileHandler) HandleSearchResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.search_result"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	body, err := readBody(w, r, h.maxBodyBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, observation.ErrMalformedBody))
		return
	}

	var observationID string
	if raw, ok := payload["observation_id"]; ok {
		if err := json.Unmarshal(raw, &observationID); err != nil {
			// Bare numeric ids arrive unquoted; keep the raw digits.
			observationID = string(raw)
		}
	}
	if observationID == "" {
		writeRecoverable(w, "Missing columns: ['observation_id']")
		return
	}

	// Legacy clients send the ground truth under "label".
	outcome, ok := payload["outcome"]
	if !ok {
		outcome, ok = payload["label"]
	}
	if !ok {
		writeRecoverable(w, "Missing columns: ['outcome']")
		return
	}

	rec, err := h.deps.Reconcile(r.Context(), observationID, json.RawMessage(outcome))
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeRecoverable(w, fmt.Sprintf("Observation ID: %q does not exist", observationID))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	payload["predicted_outcome"] = mustRaw(rec.Prediction)
	writeJSON(w, http.StatusOK, payload)
}

func mustRaw(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return raw
}
