// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/frisk/internal/app"
	"github.com/okian/frisk/internal/domain/observation"
	"github.com/okian/frisk/internal/domain/validate"
)

// outcomeResponse mirrors the legacy flat contract: the boolean verdict
// only, plus the persistence error when the identifier was replayed.
type outcomeResponse struct {
	Outcome bool   `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// predictionResponse mirrors the nested contract: identifier, probability
// and thresholded verdict.
type predictionResponse struct {
	ObservationID string  `json:"observation_id"`
	Proba         float64 `json:"proba"`
	Prediction    bool    `json:"prediction"`
	Error         string  `json:"error,omitempty"`
}

// PredictHandler handles observation submission for both payload shapes.
type PredictHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(deps Dependencies, maxBodyBytes int64) *PredictHandler {
	return &PredictHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleShouldSearch handles POST /should_search/ requests carrying the
// flat payload shape.
func (h *PredictHandler) HandleShouldSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.should_search"
	result, ok := h.predict(w, r, op, app.VariantFlat)
	if !ok {
		return
	}
	resp := outcomeResponse{Outcome: result.Prediction}
	if result.Duplicate {
		resp.Error = duplicateMessage(result.ObservationID)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePredict handles POST /predict requests carrying the nested
// payload shape.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	result, ok := h.predict(w, r, op, app.VariantNested)
	if !ok {
		return
	}
	resp := predictionResponse{
		ObservationID: result.ObservationID,
		Proba:         result.Probability,
		Prediction:    result.Prediction,
	}
	if result.Duplicate {
		resp.Error = duplicateMessage(result.ObservationID)
	}
	writeJSON(w, http.StatusOK, resp)
}

// predict runs the shared request path. A false return means a response
// has already been written.
func (h *PredictHandler) predict(w http.ResponseWriter, r *http.Request, op, variant string) (app.PredictResult, bool) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return app.PredictResult{}, false
	}
	body, err := readBody(w, r, h.maxBodyBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err))
		return app.PredictResult{}, false
	}

	result, err := h.deps.Predict(r.Context(), variant, body)
	if err != nil {
		var failure validate.Failure
		switch {
		case errors.As(err, &failure):
			// Validation failures are part of the endpoint contract.
			writeRecoverable(w, failure.Error())
		case errors.Is(err, observation.ErrMalformedBody):
			writeError(w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err))
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return app.PredictResult{}, false
	}
	return result, true
}

func duplicateMessage(observationID string) string {
	return fmt.Sprintf("Observation ID: '%s' already exists", observationID)
}
