package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ZimmerD/MzLite/internal/ingest"
	"github.com/ZimmerD/MzLite/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	DatabaseOptions

	// IDGenerator allows overriding the spectrum/chromatogram ID generator
	// (for testing). If nil, defaults to UUIDv7Generator.
	IDGenerator ingest.IDGenerator
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{DatabaseOptions: DatabaseOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "import <dataset-file>",
		Short: "Import a YAML, JSON or CUE dataset file",
		Long: `Import a dataset file into the database in one transaction.

The file adds runs, samples, instruments, software, processing and source
file descriptions to the model and inserts spectra and chromatograms with
their peak arrays. The format follows the extension (.yaml, .yml, .json,
.cue). If anything fails, nothing is written.

Exit codes:
  0 - Dataset imported
  1 - Invalid dataset or rejected write (duplicate ID, etc.)
  2 - Command error (missing --db, database cannot be opened, etc.)

Examples:
  mzlite import --db ./run1.mzlite ./dataset.yaml
  mzlite import --db ./run1.mzlite ./dataset.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	addDatabaseFlag(cmd, &opts.Database)

	return cmd
}

func runImport(opts *ImportOptions, file string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	ds, err := ingest.Load(file)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalid) {
			return f.Fail(ExitFailure, ErrCodeInvalid, "invalid dataset", err)
		}
		return f.Fail(ExitCommandError, ErrCodeNotFound, "failed to read dataset", err)
	}
	f.VerboseLog("Loaded %s: %d spectra, %d chromatograms", file, len(ds.Spectra), len(ds.Chromatograms))

	e, err := opts.open(cmd, f, true)
	if err != nil {
		return err
	}
	defer opts.closeEngine(cmd, e)

	applyOpts := []ingest.Option{ingest.WithLogger(opts.NewLogger(cmd.ErrOrStderr()))}
	if opts.IDGenerator != nil {
		applyOpts = append(applyOpts, ingest.WithIDGenerator(opts.IDGenerator))
	}
	result, err := ingest.Apply(commandContext(cmd), e, ds, applyOpts...)
	switch {
	case errors.Is(err, ingest.ErrInvalid):
		return f.Fail(ExitFailure, ErrCodeInvalid, "invalid dataset", err)
	case store.IsConstraintViolation(err):
		return f.Fail(ExitFailure, ErrCodeWriteFailed, "duplicate spectrum or chromatogram ID", err)
	case err != nil:
		return f.Fail(ExitFailure, ErrCodeWriteFailed, "import failed", err)
	}

	return f.Render(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Imported %d spectra and %d chromatograms into model %q (%d runs added)\n",
			len(result.Spectra), len(result.Chromatograms), result.Model, result.Runs)
		return err
	})
}
