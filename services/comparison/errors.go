package comparison

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for blank slugs or names; no store access happens
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when a university or program name matches nothing
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousMatch is returned when a name matches more than one record
	ErrAmbiguousMatch = errors.New("ambiguous match")
)

// StoreError wraps a failure from the catalog store. It is never retried here.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("catalog store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
