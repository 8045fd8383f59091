package seedtraffic

import "time"

// Config holds configuration for the seed run
type Config struct {
	BaseURL         string        // Base URL of the service
	NumObservations int           // Number of observations to generate
	Workers         int           // Number of concurrent workers
	Timeout         time.Duration // HTTP request timeout
	OutputFile      string        // Output file for generated observations
	LogFile         string        // Log file for seed output
	Verbose         bool          // Enable verbose logging
}

// Observation is one generated flat payload keyed by observation id.
type Observation map[string]any

// OutcomeResponse represents the response from observation submission.
type OutcomeResponse struct {
	Outcome bool   `json:"outcome"`
	Error   string `json:"error"`
}

// ReconcileResponse represents the response from outcome reconciliation.
type ReconcileResponse struct {
	ObservationID    string `json:"observation_id"`
	Outcome          bool   `json:"outcome"`
	PredictedOutcome bool   `json:"predicted_outcome"`
	Error            string `json:"error"`
}

// Stats holds seed run statistics
type Stats struct {
	ObservationsGenerated  int
	ObservationsSubmitted  int
	ObservationsSuccessful int
	ObservationsDuplicate  int
	ObservationsFailed     int
	OutcomesReconciled     int
	ReconcileMismatches    int
	StartTime              time.Time
	EndTime                time.Time
	Duration               time.Duration
}
