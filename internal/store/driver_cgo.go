//go:build !purego

package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

const (
	// driverName is the database/sql driver registered by mattn/go-sqlite3.
	driverName = "sqlite3"

	// BuildMode names the driver this binary was built with.
	BuildMode = "cgo"
)

func isConstraint(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}
