package ledger

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrDuplicateObservation = errors.New("observation id already exists")
	ErrNotFound             = errors.New("observation id does not exist")
)
