// Package config defines service configuration structures and loading.
//
// Conventions:
// - Provide New() returning defaults; Load layers file and env on top.
// - External errors are wrapped via this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// DatabasePath is the SQLite DSN of the prediction ledger.
	DatabasePath string `koanf:"database_path"`

	// ModelPath points at the JSON model artifact. Empty selects the
	// built-in default weights.
	ModelPath string `koanf:"model_path"`

	// RecordCacheSize bounds the ledger's in-memory record cache.
	RecordCacheSize int `koanf:"record_cache_size"`

	// BusyTimeoutMS is the SQLite busy timeout applied when the ledger
	// opens its database.
	BusyTimeoutMS int `koanf:"busy_timeout_ms"`

	// MaxBodyBytes caps the accepted request body size.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":5000",
		DatabasePath:    "predictions.db",
		ModelPath:       "",
		RecordCacheSize: 1024,
		BusyTimeoutMS:   5000,
		MaxBodyBytes:    1 << 20,
	}
}
