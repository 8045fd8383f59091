package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/frisk/internal/seedtraffic"
)

// Default configuration constants.
const (
	defaultNumObservations = 1000
	defaultWorkers         = 2 // multiplier for runtime.NumCPU()
	defaultTimeout         = 30 * time.Second
	defaultRunTimeout      = 10 * time.Minute
)

func main() {
	var (
		baseURL         = flag.String("url", "http://localhost:5000", "Base URL of the service")
		numObservations = flag.Int("observations", defaultNumObservations, "Number of observations to generate and submit")
		workers         = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout         = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile      = flag.String("output", "", "Output file for generated observations (default: generated_observations_TIMESTAMP.json)")
		logFile         = flag.String("log", "", "Log file for seed output (default: seed_log_TIMESTAMP.log)")
		verbose         = flag.Bool("verbose", false, "Enable verbose logging")
		help            = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seedtraffic.ShowHelp()
		return
	}

	// Setup logging
	if err := seedtraffic.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create seed configuration
	config := &seedtraffic.Config{
		BaseURL:         *baseURL,
		NumObservations: *numObservations,
		Workers:         *workers,
		Timeout:         *timeout,
		OutputFile:      *outputFile,
		LogFile:         *logFile,
		Verbose:         *verbose,
	}

	// Run the seed
	if err := seedtraffic.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		return
	}
}
