package seedtraffic

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/okian/frisk/pkg/logger"
)

// randomFloatDivisor controls the resolution of generated floats.
const randomFloatDivisor = 1000000

// Sample values drawn from the closed enumerations the service accepts.
var (
	sampleTypes = []string{
		"Person search",
		"Person Vehicle search",
		"Vehicle search",
	}
	sampleGenders      = []string{"Male", "Female"}
	sampleLegislations = []string{
		"Misuse of Drugs Act 1971 (section 23)",
		"Police and Criminal Evidence Act 1984 (section 1)",
		"Criminal Justice and Public Order Act 1994 (section 60)",
		"Firearms Act 1968 (section 47)",
	}
	sampleObjects = []string{
		"Controlled drugs",
		"Offensive weapons",
		"Stolen goods",
		"Article for use in theft",
	}
	sampleAgeRanges   = []string{"under 10", "10-17", "18-24", "25-34", "over 34"}
	sampleEthnicities = []string{"White", "Black", "Asian", "Other", "Mixed"}
	sampleStations    = []string{
		"merseyside",
		"west-yorkshire",
		"thames-valley",
		"avon-and-somerset",
		"greater-manchester",
	}
)

// Coordinate bounds accepted by the service.
const (
	latitudeMin   = 49.0
	latitudeSpan  = 9.0
	longitudeMin  = -9.0
	longitudeSpan = 11.0
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// pick returns a uniformly random element of values.
func pick(values []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(values))))
	return values[n.Int64()]
}

// generateObservations creates the specified number of valid flat
// observations with unique identifiers.
func generateObservations(ctx context.Context, config *Config, stats *Stats) ([]Observation, error) {
	logger.Get().Info(ctx, "generating observations",
		logger.Int("numObservations", config.NumObservations))

	observations := make([]Observation, config.NumObservations)
	for i := range observations {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		observations[i] = generateSingleObservation()
	}

	stats.ObservationsGenerated = len(observations)
	logger.Get().Info(ctx, "generated observations successfully",
		logger.Int("count", len(observations)))
	return observations, nil
}

// generateSingleObservation creates one valid flat payload.
func generateSingleObservation() Observation {
	// Spread timestamps over roughly the past year
	offset := time.Duration(getRandomFloat() * float64(365*24) * float64(time.Hour))
	when := time.Now().UTC().Add(-offset)

	return Observation{
		"observation_id":               uuid.New().String(),
		"Type":                         pick(sampleTypes),
		"Date":                         when.Format("2006-01-02T15:04:05+00:00"),
		"Part of a policing operation": getRandomFloat() < 0.2,
		"Latitude":                     latitudeMin + getRandomFloat()*latitudeSpan,
		"Longitude":                    longitudeMin + getRandomFloat()*longitudeSpan,
		"Gender":                       pick(sampleGenders),
		"Legislation":                  pick(sampleLegislations),
		"Object of search":             pick(sampleObjects),
		"Age range":                    pick(sampleAgeRanges),
		"Officer-defined ethnicity":    pick(sampleEthnicities),
		"station":                      pick(sampleStations),
	}
}
