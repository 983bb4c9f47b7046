package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Scope is the unit of atomic access to an engine: one SQL transaction plus
// a cache of prepared commands bound to it.
//
// Operations on a Scope participate in its transaction and never commit.
// Commit and Rollback finalize the transaction once; Close releases the
// scope so the engine accepts a new BeginTransaction. A Scope is not safe
// for concurrent use.
type Scope struct {
	engine   *Engine
	tx       *sql.Tx
	commands map[string]*Command
	done     bool
	closed   bool
}

func (s *Scope) usable() error {
	if s.closed || s.done {
		return ErrDisposed
	}
	return nil
}

// CreateCommand returns an unprepared command bound to the transaction.
// The caller owns it; it is not cached.
func (s *Scope) CreateCommand(query string) (*Command, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	return &Command{scope: s, query: query}, nil
}

// PrepareCommand compiles query and caches it under name, replacing and
// closing any command previously cached under that name.
func (s *Scope) PrepareCommand(ctx context.Context, name, query string) (*Command, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	stmt, err := s.tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", name, err)
	}
	if old, ok := s.commands[name]; ok {
		old.Close()
	}
	cmd := &Command{scope: s, query: query, stmt: stmt}
	s.commands[name] = cmd
	return cmd, nil
}

// TryGetCommand looks up a command cached by PrepareCommand.
func (s *Scope) TryGetCommand(name string) (*Command, bool, error) {
	if err := s.usable(); err != nil {
		return nil, false, err
	}
	cmd, ok := s.commands[name]
	return cmd, ok, nil
}

// command returns the cached command for name, preparing it on first use.
func (s *Scope) command(ctx context.Context, name, query string) (*Command, error) {
	cmd, ok, err := s.TryGetCommand(name)
	if err != nil {
		return nil, err
	}
	if ok {
		return cmd, nil
	}
	return s.PrepareCommand(ctx, name, query)
}

// Commit commits the transaction. The scope stays open until Close.
func (s *Scope) Commit() error {
	if err := s.usable(); err != nil {
		return err
	}
	s.done = true
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.engine.log.Debug("scope commit")
	return nil
}

// Rollback discards the transaction. The scope stays open until Close.
func (s *Scope) Rollback() error {
	if err := s.usable(); err != nil {
		return err
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	s.engine.log.Debug("scope rollback")
	return nil
}

// Close closes every cached command, rolls back the transaction unless it
// was already finalized, and releases the engine's scope slot. It is safe
// to call more than once.
func (s *Scope) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for name, cmd := range s.commands {
		if err := cmd.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	clear(s.commands)

	if !s.done {
		s.done = true
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
		s.engine.log.Debug("scope rollback on close")
	}

	s.engine.release(s)
	return errors.Join(errs...)
}

// Command is a SQL statement bound to a scope's transaction.
type Command struct {
	scope  *Scope
	stmt   *sql.Stmt
	query  string
	closed bool
}

func (c *Command) usable() error {
	if c.closed {
		return ErrDisposed
	}
	return c.scope.usable()
}

// Exec runs the command with args.
func (c *Command) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	if c.stmt != nil {
		return c.stmt.ExecContext(ctx, args...)
	}
	return c.scope.tx.ExecContext(ctx, c.query, args...)
}

// QueryRow runs the command and returns at most one row.
func (c *Command) QueryRow(ctx context.Context, args ...any) (*sql.Row, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	if c.stmt != nil {
		return c.stmt.QueryRowContext(ctx, args...), nil
	}
	return c.scope.tx.QueryRowContext(ctx, c.query, args...), nil
}

// Query runs the command. Callers are responsible for closing the rows.
func (c *Command) Query(ctx context.Context, args ...any) (*sql.Rows, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	if c.stmt != nil {
		return c.stmt.QueryContext(ctx, args...)
	}
	return c.scope.tx.QueryContext(ctx, c.query, args...)
}

// Close releases the prepared statement. Safe to call more than once.
func (c *Command) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.stmt != nil {
		return c.stmt.Close()
	}
	return nil
}
