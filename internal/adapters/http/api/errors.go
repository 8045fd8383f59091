package api

import (
	"errors"
	"fmt"
)

// ErrBadRequest marks requests rejected before reaching the pipeline.
var ErrBadRequest = errors.New("bad request")

// NewKind annotates a sentinel with the operation it occurred in.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind annotates a sentinel with the operation and the underlying
// cause.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
