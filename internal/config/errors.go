package config

import (
	"errors"
)

// Failure kinds wrapped around loader and validation errors so callers
// can branch with errors.Is.
var (
	ErrInvalidConfig = errors.New("configuration invalid")
	ErrLoadConfig    = errors.New("configuration load failed")
)
