//go:build purego

package store

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const (
	// driverName is the database/sql driver registered by modernc.org/sqlite.
	driverName = "sqlite"

	// BuildMode names the driver this binary was built with.
	BuildMode = "purego"
)

func isConstraint(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		// Extended codes keep the primary code in the low byte.
		return se.Code()&0xff == sqlite3lib.SQLITE_CONSTRAINT
	}
	return false
}
