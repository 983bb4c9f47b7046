package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ZimmerD/MzLite/internal/model"
	"github.com/ZimmerD/MzLite/internal/peakcodec"
)

//go:embed schema.sql
var schemaSQL string

// PeakCodec converts peak arrays to the PeakData blob and back.
type PeakCodec interface {
	Encode1D(*model.Peak1DArray) ([]byte, error)
	Decode1D(*model.Peak1DArray, []byte) error
	Encode2D(*model.Peak2DArray) ([]byte, error)
	Decode2D(*model.Peak2DArray, []byte) error
}

// Engine is an open MzLite file: one SQLite connection, the cached model
// and at most one open transaction scope.
type Engine struct {
	db    *sql.DB
	log   *slog.Logger
	codec PeakCodec
	model *model.Model
	path  string

	mu     sync.Mutex
	scope  *Scope
	closed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithPeakCodec replaces the peak codec. The default is peakcodec.Codec.
func WithPeakCodec(c PeakCodec) Option {
	return func(e *Engine) {
		if c != nil {
			e.codec = c
		}
	}
}

// Open opens the MzLite file at path, creating it when absent.
//
// The schema is created if missing and the model row is loaded. A new file
// gets an empty model named after the file (base name without extension),
// which is persisted before Open returns. All of this runs in one
// transaction; on any failure nothing stays open and the returned
// *OpenError wraps the cause.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	e := &Engine{
		log:   slog.New(slog.DiscardHandler),
		codec: peakcodec.Codec{},
		path:  path,
	}
	for _, opt := range opts {
		opt(e)
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	// One connection: SQLite has a single writer, and pragmas are
	// per-connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &OpenError{Path: path, Err: fmt.Errorf("connect: %w", err)}
	}
	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, &OpenError{Path: path, Err: err}
	}
	e.db = db

	if err := e.bootstrap(ctx); err != nil {
		db.Close()
		return nil, &OpenError{Path: path, Err: err}
	}

	e.log.Info("store opened", "path", path, "model", e.model.Name, "driver", BuildMode)
	return e, nil
}

// bootstrap creates the schema and loads or initializes the model row.
func (e *Engine) bootstrap(ctx context.Context) error {
	scope, err := e.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer scope.Close()

	if _, err := scope.tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	m, err := scope.loadModel(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		e.model = model.NewModel(modelName(e.path))
		if err := scope.SaveModel(ctx); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		e.model = m
	}

	return scope.Commit()
}

// modelName derives the default model name from the file path.
func modelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// applyPragmas sets the connection configuration.
//
// synchronous=OFF with an in-memory journal trades crash durability for
// write throughput: a crash mid-transaction can corrupt the file.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA synchronous = OFF",
		"PRAGMA journal_mode = MEMORY",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA ignore_check_constraints = OFF",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// Path returns the file path the engine was opened with.
func (e *Engine) Path() string { return e.path }

// GetModel returns the cached model. Edits to it are persisted by SaveModel.
func (e *Engine) GetModel() (*model.Model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrDisposed
	}
	return e.model, nil
}

// BeginTransaction opens the engine's transaction scope. Only one scope may
// be open at a time; while it is, BeginTransaction fails with ErrReentrancy
// and the open scope is unaffected.
func (e *Engine) BeginTransaction(ctx context.Context) (*Scope, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrDisposed
	}
	if e.scope != nil {
		return nil, ErrReentrancy
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	s := &Scope{engine: e, tx: tx, commands: make(map[string]*Command)}
	e.scope = s
	e.log.Debug("scope begin")
	return s, nil
}

// release clears the scope slot if s still holds it.
func (e *Engine) release(s *Scope) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scope == s {
		e.scope = nil
	}
}

// ambient runs fn in the open scope without committing, or, when no scope
// is open, in a fresh scope that is committed on success.
func (e *Engine) ambient(ctx context.Context, fn func(*Scope) error) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrDisposed
	}
	current := e.scope
	e.mu.Unlock()

	if current != nil {
		return fn(current)
	}

	s, err := e.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s); err != nil {
		return err
	}
	return s.Commit()
}

// Close closes the open scope, if any, and the connection. It is safe to
// call more than once; every other method fails with ErrDisposed afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	scope := e.scope
	e.mu.Unlock()

	var errs []error
	if scope != nil {
		errs = append(errs, scope.Close())
	}
	errs = append(errs, e.db.Close())
	e.log.Info("store closed", "path", e.path)
	return errors.Join(errs...)
}

// SaveModel persists the cached model, replacing the stored row.
func (e *Engine) SaveModel(ctx context.Context) error {
	return e.ambient(ctx, func(s *Scope) error { return s.SaveModel(ctx) })
}

// InsertSpectrum appends a spectrum and its peaks under runID. A spectrum
// ID that already exists fails with a constraint violation.
func (e *Engine) InsertSpectrum(ctx context.Context, runID string, spectrum *model.MassSpectrum, peaks *model.Peak1DArray) error {
	return e.ambient(ctx, func(s *Scope) error { return s.InsertSpectrum(ctx, runID, spectrum, peaks) })
}

// InsertChromatogram appends a chromatogram and its peaks under runID.
func (e *Engine) InsertChromatogram(ctx context.Context, runID string, chrom *model.Chromatogram, peaks *model.Peak2DArray) error {
	return e.ambient(ctx, func(s *Scope) error { return s.InsertChromatogram(ctx, runID, chrom, peaks) })
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (e *Engine) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := e.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
