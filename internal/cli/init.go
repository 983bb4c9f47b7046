package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	DatabaseOptions
	Name string
}

// InitResult is the output of init.
type InitResult struct {
	Path  string `json:"path"`
	Model string `json:"model"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{DatabaseOptions: DatabaseOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a database or open an existing one",
		Long: `Create an MzLite database with an empty model, or open an existing one.

The model is named after the file unless --name is given. Running init on an
existing database leaves its content unchanged except for the rename.

Examples:
  mzlite init --db ./run1.mzlite
  mzlite init --db ./run1.mzlite --name "Run 1"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	addDatabaseFlag(cmd, &opts.Database)
	cmd.Flags().StringVar(&opts.Name, "name", "", "model name (default: file name without extension)")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	e, err := opts.open(cmd, f, true)
	if err != nil {
		return err
	}
	defer opts.closeEngine(cmd, e)

	m, err := e.GetModel()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeOpenFailed, "failed to read model", err)
	}
	if opts.Name != "" && opts.Name != m.Name {
		old := m.Name
		m.Name = opts.Name
		if err := e.SaveModel(commandContext(cmd)); err != nil {
			m.Name = old
			return f.Fail(ExitFailure, ErrCodeWriteFailed, "failed to rename model", err)
		}
		f.VerboseLog("Renamed model %q to %q", old, m.Name)
	}

	result := InitResult{Path: e.Path(), Model: m.Name}
	return f.Render(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Initialized %s (model %q)\n", result.Path, result.Model)
		return err
	})
}
