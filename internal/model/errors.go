package model

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyIdentity is returned when a parameter or keyed item is
	// constructed or added with a blank identity.
	ErrEmptyIdentity = errors.New("identity must not be empty")

	// ErrDuplicateKey is returned when adding an item whose key already
	// exists in a keyed collection.
	ErrDuplicateKey = errors.New("duplicate key")
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
