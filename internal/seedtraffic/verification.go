package seedtraffic

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/okian/frisk/pkg/logger"
)

// verifyDuplicateHandling replays an already submitted observation and
// checks that the service still answers with a prediction plus the
// duplicate error, without creating a second record.
func verifyDuplicateHandling(ctx context.Context, config *Config, obs Observation) error {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Post(ctx, config.BaseURL+"/should_search/", obs)
	if err != nil {
		return fmt.Errorf("duplicate replay failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read duplicate response: %w", err)
	}

	var outcome OutcomeResponse
	if err := json.Unmarshal(body, &outcome); err != nil {
		return fmt.Errorf("failed to parse duplicate response: %w", err)
	}
	if !strings.Contains(outcome.Error, "already exists") {
		return fmt.Errorf("expected duplicate error, got: %q", outcome.Error)
	}

	logger.Get().Info(ctx, "duplicate handling verified",
		logger.Any("observationID", obs["observation_id"]),
		logger.String("error", outcome.Error))
	return nil
}

// reconcileOutcomes posts a random outcome for a sample of the submitted
// observations and verifies the echoed predicted_outcome matches the
// stored record.
func reconcileOutcomes(ctx context.Context, config *Config, observations []Observation, stats *Stats) error {
	client := newHTTPClient(config.Timeout)
	sample := sampleSize(len(observations))

	logger.Get().Info(ctx, "reconciling outcomes", logger.Int("sample", sample))

	for _, obs := range observations[:sample] {
		id, _ := obs["observation_id"].(string)
		n, _ := rand.Int(rand.Reader, big.NewInt(2))
		payload := map[string]any{
			"observation_id": id,
			"outcome":        n.Int64() == 1,
		}

		resp, err := client.Post(ctx, config.BaseURL+"/search_result/", payload)
		if err != nil {
			return fmt.Errorf("reconcile request failed: %w", err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("failed to read reconcile response: %w", err)
		}

		var rec ReconcileResponse
		if err := json.Unmarshal(body, &rec); err != nil {
			return fmt.Errorf("failed to parse reconcile response: %w", err)
		}
		if rec.Error != "" {
			return fmt.Errorf("reconcile rejected %s: %s", id, rec.Error)
		}
		stats.OutcomesReconciled++

		// Cross-check against the stored record
		if err := verifyStoredPrediction(ctx, client, config, id, rec.PredictedOutcome); err != nil {
			stats.ReconcileMismatches++
			logger.Get().Warn(ctx, "reconcile mismatch",
				logger.String("observationID", id),
				logger.Error(err))
		}
	}

	logger.Get().Info(ctx, "outcome reconciliation completed",
		logger.Int("reconciled", stats.OutcomesReconciled),
		logger.Int("mismatches", stats.ReconcileMismatches))
	return nil
}

// verifyStoredPrediction fetches the ledger record and compares its
// prediction with the one echoed by the reconcile endpoint.
func verifyStoredPrediction(ctx context.Context, client *HTTPClient, config *Config, id string, predicted bool) error {
	resp, err := client.Get(ctx, config.BaseURL+"/records/"+id)
	if err != nil {
		return fmt.Errorf("record lookup failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read record response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("record lookup returned status %d", resp.StatusCode)
	}

	var record struct {
		Prediction bool `json:"prediction"`
	}
	if err := json.Unmarshal(body, &record); err != nil {
		return fmt.Errorf("failed to parse record: %w", err)
	}
	if record.Prediction != predicted {
		return fmt.Errorf("stored prediction %v does not match echoed %v", record.Prediction, predicted)
	}
	return nil
}

// sampleSize bounds the reconciliation sample.
func sampleSize(total int) int {
	const maxSample = 100
	if total < maxSample {
		return total
	}
	return maxSample
}
