package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZimmerD/MzLite/internal/model"
	"github.com/ZimmerD/MzLite/internal/store"
)

// ShowOptions holds flags for the show subcommands.
type ShowOptions struct {
	DatabaseOptions
	Peaks bool
}

// SpectrumView is the output of show spectrum. The peak array header
// leaves out the peaks, so they are listed separately.
type SpectrumView struct {
	Spectrum  *model.MassSpectrum `json:"spectrum"`
	PeakArray *model.Peak1DArray  `json:"peak_array,omitempty"`
	Peaks     []model.Peak1D      `json:"peaks,omitempty"`
}

// ChromatogramView is the output of show chromatogram.
type ChromatogramView struct {
	Chromatogram *model.Chromatogram `json:"chromatogram"`
	PeakArray    *model.Peak2DArray  `json:"peak_array,omitempty"`
	Peaks        []model.Peak2D      `json:"peaks,omitempty"`
}

// NewShowCommand creates the show command and its subcommands.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{DatabaseOptions: DatabaseOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored spectrum or chromatogram",
		Long: `Print the description of a stored spectrum or chromatogram, and with
--peaks its decoded peak array.

Examples:
  mzlite show spectrum scan=1 --db ./run1.mzlite
  mzlite show chromatogram tic --db ./run1.mzlite --peaks --format json`,
	}

	spectrum := &cobra.Command{
		Use:           "spectrum <id>",
		Short:         "Print a stored spectrum",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowSpectrum(opts, args[0], cmd)
		},
	}
	chromatogram := &cobra.Command{
		Use:           "chromatogram <id>",
		Short:         "Print a stored chromatogram",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowChromatogram(opts, args[0], cmd)
		},
	}
	for _, sub := range []*cobra.Command{spectrum, chromatogram} {
		addDatabaseFlag(sub, &opts.Database)
		sub.Flags().BoolVar(&opts.Peaks, "peaks", false, "include the decoded peak array")
		cmd.AddCommand(sub)
	}

	return cmd
}

func runShowSpectrum(opts *ShowOptions, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	e, err := opts.open(cmd, f, false)
	if err != nil {
		return err
	}
	defer opts.closeEngine(cmd, e)

	ctx := commandContext(cmd)
	ms, err := e.ReadMassSpectrum(ctx, id)
	if err != nil {
		return readFailure(f, "spectrum", id, err)
	}
	view := SpectrumView{Spectrum: ms}
	if opts.Peaks {
		arr, err := e.ReadSpectrumPeaks(ctx, id)
		if err != nil {
			return readFailure(f, "spectrum", id, err)
		}
		view.PeakArray, view.Peaks = arr, arr.Peaks
	}

	return f.Render(view, func(w io.Writer) error {
		fmt.Fprintf(w, "Spectrum:     %s\n", ms.ID)
		fmt.Fprintf(w, "Processing:   %s\n", orNone(ms.DataProcessingReference))
		fmt.Fprintf(w, "Source file:  %s\n", orNone(ms.SourceFileReference))
		fmt.Fprintf(w, "Precursors:   %d\n", len(ms.Precursors))
		writeParams(w, &ms.ParamContainer)
		arr := view.PeakArray
		if arr == nil {
			return nil
		}
		fmt.Fprintf(w, "Peaks:        %d (%s, mz %s, intensity %s)\n",
			len(arr.Peaks), arr.CompressionType, arr.MzDataType, arr.IntensityDataType)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  MZ\tINTENSITY")
		for _, p := range arr.Peaks {
			fmt.Fprintf(tw, "  %g\t%g\n", p.Mz, p.Intensity)
		}
		return tw.Flush()
	})
}

func runShowChromatogram(opts *ShowOptions, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	e, err := opts.open(cmd, f, false)
	if err != nil {
		return err
	}
	defer opts.closeEngine(cmd, e)

	ctx := commandContext(cmd)
	c, err := e.ReadChromatogram(ctx, id)
	if err != nil {
		return readFailure(f, "chromatogram", id, err)
	}
	view := ChromatogramView{Chromatogram: c}
	if opts.Peaks {
		arr, err := e.ReadChromatogramPeaks(ctx, id)
		if err != nil {
			return readFailure(f, "chromatogram", id, err)
		}
		view.PeakArray, view.Peaks = arr, arr.Peaks
	}

	return f.Render(view, func(w io.Writer) error {
		fmt.Fprintf(w, "Chromatogram: %s\n", c.ID)
		fmt.Fprintf(w, "Processing:   %s\n", orNone(c.DataProcessingReference))
		writeParams(w, &c.ParamContainer)
		arr := view.PeakArray
		if arr == nil {
			return nil
		}
		fmt.Fprintf(w, "Peaks:        %d (%s, mz %s, rt %s, intensity %s)\n",
			len(arr.Peaks), arr.CompressionType, arr.MzDataType, arr.RtDataType, arr.IntensityDataType)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  RT\tMZ\tINTENSITY")
		for _, p := range arr.Peaks {
			fmt.Fprintf(tw, "  %g\t%g\t%g\n", p.Rt, p.Mz, p.Intensity)
		}
		return tw.Flush()
	})
}

func readFailure(f *OutputFormatter, what, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return f.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("%s %q not found", what, id), err)
	}
	return f.Fail(ExitFailure, ErrCodeGeneric, fmt.Sprintf("failed to read %s %q", what, id), err)
}

// writeParams lists a container's params, one per line.
func writeParams(w io.Writer, pc *model.ParamContainer) {
	fmt.Fprintf(w, "Params:       %d cv, %d user\n", pc.CvParams.Len(), pc.UserParams.Len())
	for p := range pc.CvParams.All() {
		fmt.Fprintf(w, "  %s\n", p)
	}
	for p := range pc.UserParams.All() {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
