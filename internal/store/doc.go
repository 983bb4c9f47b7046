// Package store provides the SQLite-backed MzLite file format.
//
// A file holds three tables:
//   - Model: exactly one row with the JSON model document, replaced wholesale
//   - Spectrum: one row per mass spectrum (description, peak header, peak blob)
//   - Chromatogram: one row per chromatogram, same shape
//
// Spectrum and chromatogram rows are append-only; a duplicate ID is a
// constraint violation, never an upsert. RunID is stored as given and not
// checked against the model's runs.
//
// # Transactions
//
// An Engine has at most one open Scope. Scope methods take part in that
// scope's transaction and leave committing to the caller. The same
// operations on Engine are ambient: they join the open scope if there is
// one, otherwise they run in a scope of their own and commit it.
//
//	scope, err := engine.BeginTransaction(ctx)
//	if err != nil {
//		return err
//	}
//	defer scope.Close() // rolls back unless committed
//	...
//	return scope.Commit()
//
// # Database Configuration
//
//   - synchronous=OFF: no fsync; a crash can corrupt the file
//   - journal_mode=MEMORY: rollback journal kept in memory
//   - temp_store=MEMORY
//   - ignore_check_constraints=OFF: the Model row CHECK is enforced
//   - one pooled connection: SQLite has a single writer
//
// The default driver is mattn/go-sqlite3 (cgo). Building with the purego tag
// switches to modernc.org/sqlite:
//
//	CGO_ENABLED=0 go build -tags purego ./...
package store
