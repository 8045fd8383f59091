package seedtraffic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/frisk/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete seed run: health check, generation,
// concurrent submission, a duplicate replay, outcome reconciliation and
// a final report.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting observation seed run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("observations", config.NumObservations),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	observations, err := generateObservations(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("observation generation failed: %w", err)
	}

	if err := submitObservations(ctx, config, observations, stats); err != nil {
		return fmt.Errorf("observation submission failed: %w", err)
	}

	// Replay the first observation to exercise the duplicate path
	if len(observations) > 0 {
		if err := verifyDuplicateHandling(ctx, config, observations[0]); err != nil {
			return fmt.Errorf("duplicate verification failed: %w", err)
		}
	}

	if err := reconcileOutcomes(ctx, config, observations, stats); err != nil {
		return fmt.Errorf("outcome reconciliation failed: %w", err)
	}

	if err := saveObservationsToFile(ctx, config, observations); err != nil {
		logger.Get().Warn(ctx, "failed to save observations to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seed run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Any 200 counts as healthy; the endpoint serves Prometheus metrics
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveObservationsToFile saves the generated observations to a JSON file.
func saveObservationsToFile(ctx context.Context, config *Config, observations []Observation) error {
	if len(observations) == 0 {
		return fmt.Errorf("no observations to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_observations_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}
	for i, obs := range observations {
		jsonData, err := json.Marshal(obs)
		if err != nil {
			return fmt.Errorf("failed to marshal observation %d: %w", i, err)
		}
		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write observation %d: %w", i, err)
		}
		if i < len(observations)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}
	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "observations saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final seed run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, observationsPerSecond float64

	if stats.ObservationsSubmitted > 0 {
		successRate = float64(stats.ObservationsSuccessful) / float64(stats.ObservationsSubmitted) * 100
	}
	if stats.Duration > 0 {
		observationsPerSecond = float64(stats.ObservationsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("observationsGenerated", stats.ObservationsGenerated),
		logger.Int("observationsSubmitted", stats.ObservationsSubmitted),
		logger.Int("observationsSuccessful", stats.ObservationsSuccessful),
		logger.Int("observationsDuplicate", stats.ObservationsDuplicate),
		logger.Int("observationsFailed", stats.ObservationsFailed),
		logger.Int("outcomesReconciled", stats.OutcomesReconciled),
		logger.Int("reconcileMismatches", stats.ReconcileMismatches),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("observationsPerSecond", observationsPerSecond))
}
