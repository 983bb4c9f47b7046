package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZimmerD/MzLite/internal/store"
)

// InfoResult summarizes a database.
type InfoResult struct {
	Path            string      `json:"path"`
	Driver          string      `json:"driver"`
	Model           string      `json:"model"`
	Runs            []string    `json:"runs"`
	Samples         int         `json:"samples"`
	Instruments     int         `json:"instruments"`
	Softwares       int         `json:"softwares"`
	DataProcessings int         `json:"data_processings"`
	SourceFiles     int         `json:"source_files"`
	Rows            store.Stats `json:"rows"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DatabaseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Summarize the model and row counts of a database",
		Long: `Print the model name, the model's runs and descriptive entities, and the
number of stored spectra and chromatograms per run.

Examples:
  mzlite info --db ./run1.mzlite
  MZLITE_DB=./run1.mzlite mzlite info --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(opts, cmd)
		},
	}

	addDatabaseFlag(cmd, &opts.Database)

	return cmd
}

func runInfo(opts *DatabaseOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	e, err := opts.open(cmd, f, false)
	if err != nil {
		return err
	}
	defer opts.closeEngine(cmd, e)

	m, err := e.GetModel()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeOpenFailed, "failed to read model", err)
	}
	stats, err := e.Stats(commandContext(cmd))
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "failed to count rows", err)
	}

	result := InfoResult{
		Path:            e.Path(),
		Driver:          store.BuildMode,
		Model:           m.Name,
		Runs:            []string{},
		Samples:         m.Samples.Len(),
		Instruments:     m.Instruments.Len(),
		Softwares:       m.Softwares.Len(),
		DataProcessings: m.DataProcessings.Len(),
		SourceFiles:     m.FileDescription.SourceFiles.Len(),
		Rows:            stats,
	}
	for run := range m.Runs.All() {
		result.Runs = append(result.Runs, run.ID)
	}

	return f.Render(result, func(w io.Writer) error {
		return writeInfoText(w, result)
	})
}

func writeInfoText(w io.Writer, r InfoResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Database:      %s (%s driver)\n", r.Path, r.Driver)
	fmt.Fprintf(&b, "Model:         %s\n", r.Model)
	fmt.Fprintf(&b, "Runs:          %s\n", listOrNone(r.Runs))
	fmt.Fprintf(&b, "Samples:       %d\n", r.Samples)
	fmt.Fprintf(&b, "Instruments:   %d\n", r.Instruments)
	fmt.Fprintf(&b, "Softwares:     %d\n", r.Softwares)
	fmt.Fprintf(&b, "Processings:   %d\n", r.DataProcessings)
	fmt.Fprintf(&b, "Source files:  %d\n", r.SourceFiles)
	fmt.Fprintf(&b, "Spectra:       %d\n", r.Rows.Spectra)
	fmt.Fprintf(&b, "Chromatograms: %d\n", r.Rows.Chromatograms)
	fmt.Fprintf(&b, "Row run IDs:   %s\n", listOrNone(r.Rows.RunIDs))
	_, err := io.WriteString(w, b.String())
	return err
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
