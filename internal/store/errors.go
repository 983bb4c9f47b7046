package store

import (
	"errors"
	"fmt"
)

var (
	// ErrOpen matches every error returned by a failed Open.
	ErrOpen = errors.New("store: open failed")

	// ErrDisposed is returned when an engine, scope or command is used after
	// it was closed or finalized.
	ErrDisposed = errors.New("store: use after dispose")

	// ErrReentrancy is returned by BeginTransaction while another scope of
	// the same engine is still open.
	ErrReentrancy = errors.New("store: illegal attempt at transaction scope reentrancy")

	// ErrNotFound is returned by reads for an ID that has no row.
	ErrNotFound = errors.New("store: not found")
)

// OpenError wraps the cause of a failed Open. Nothing is left open when it
// is returned.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("store: open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrOpen) hold for every OpenError.
func (e *OpenError) Is(target error) bool { return target == ErrOpen }

// IsConstraintViolation reports whether err was caused by a violated SQLite
// constraint, such as a duplicate spectrum or chromatogram ID.
// Uses errors.As to handle wrapped errors.
func IsConstraintViolation(err error) bool {
	return err != nil && isConstraint(err)
}
