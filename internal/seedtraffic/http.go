package seedtraffic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/frisk/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitObservations submits observations concurrently using a worker pool.
func submitObservations(ctx context.Context, config *Config, observations []Observation, stats *Stats) error {
	logger.Get().Info(ctx, "submitting observations",
		logger.Int("count", len(observations)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/should_search/"

	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	obsChan := make(chan Observation, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for obs := range obsChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				result := submitSingleObservation(ctx, client, url, obs)

				atomic.AddInt64(&submitted, 1)
				switch result {
				case "success":
					atomic.AddInt64(&successful, 1)
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				case "failed":
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(obsChan)
		for _, obs := range observations {
			select {
			case <-ctx.Done():
				return
			case obsChan <- obs:
			}
		}
	}()

	wg.Wait()

	stats.ObservationsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ObservationsSuccessful = int(atomic.LoadInt64(&successful))
	stats.ObservationsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.ObservationsFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "observation submission completed",
		logger.Int("successful", stats.ObservationsSuccessful),
		logger.Int("duplicate", stats.ObservationsDuplicate),
		logger.Int("failed", stats.ObservationsFailed))
	return nil
}

// submitSingleObservation submits one observation and classifies the result.
func submitSingleObservation(ctx context.Context, client *HTTPClient, url string, obs Observation) string {
	resp, err := client.Post(ctx, url, obs)
	if err != nil {
		return "failed"
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}
	if resp.StatusCode != http.StatusOK {
		return "failed"
	}

	var outcome OutcomeResponse
	if err := json.Unmarshal(body, &outcome); err != nil {
		return "failed"
	}
	switch {
	case outcome.Error == "":
		return "success"
	case strings.Contains(outcome.Error, "already exists"):
		return "duplicate"
	default:
		return "failed"
	}
}
