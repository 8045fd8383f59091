package ledger

// Option applies a configuration option to the SQLiteLedger.
type Option func(*SQLiteLedger)

// WithCacheSize sets the capacity of the in-memory record cache sitting
// in front of the read path. Zero or negative disables the cache.
func WithCacheSize(size int) Option {
	return func(l *SQLiteLedger) {
		l.cacheSize = size
	}
}

// WithBusyTimeoutMS sets the SQLite busy timeout applied at open.
func WithBusyTimeoutMS(ms int) Option {
	return func(l *SQLiteLedger) {
		if ms > 0 {
			l.busyTimeoutMS = ms
		}
	}
}
