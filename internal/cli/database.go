package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZimmerD/MzLite/internal/store"
)

// DatabaseOptions holds the --db flag shared by the store commands.
type DatabaseOptions struct {
	*RootOptions
	Database string
}

func (o *DatabaseOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// open opens the store at --db. Unless create is set, a missing file is
// reported instead of being created.
func (o *DatabaseOptions) open(cmd *cobra.Command, f *OutputFormatter, create bool) (*store.Engine, error) {
	if o.Database == "" {
		return nil, f.Fail(ExitCommandError, ErrCodeUsage, "--db is required (or set "+EnvDatabase+")", nil)
	}
	if !create {
		if _, err := os.Stat(o.Database); err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeNotFound, "database not found", err)
		}
	}
	logger := o.NewLogger(cmd.ErrOrStderr())
	e, err := store.Open(commandContext(cmd), o.Database, store.WithLogger(logger))
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeOpenFailed, "failed to open database", err)
	}
	return e, nil
}

// closeEngine closes e, logging instead of returning the error.
func (o *DatabaseOptions) closeEngine(cmd *cobra.Command, e *store.Engine) {
	if err := e.Close(); err != nil {
		o.NewLogger(cmd.ErrOrStderr()).Error("error closing database", "error", err)
	}
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
