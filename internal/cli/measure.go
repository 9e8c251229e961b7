package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ew/internal/report"
	"github.com/cwbudde/algo-ew/measure/ew"
)

type measureFlags struct {
	lineList string
	codec    string
	sigma    float64
	noClip   bool
	noError  bool
}

func (f *measureFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.lineList, "linelist", "l", "", "line list file (default from config)")
	cmd.Flags().StringVar(&f.codec, "codec", "", "spectrum codec (fits|text); default by extension")
	cmd.Flags().Float64Var(&f.sigma, "sigma", 0, "sigma-clip threshold (default from config)")
	cmd.Flags().BoolVar(&f.noClip, "no-clip", false, "disable continuum sigma-clipping")
	cmd.Flags().BoolVar(&f.noError, "no-error", false, "skip error propagation (synthetic spectra)")
}

func (f *measureFlags) options(opts *RootOptions) []ew.Option {
	o := opts.Config.MeasureOptions()

	if f.sigma > 0 {
		o = append(o, ew.WithSigma(f.sigma))
	}

	if f.noClip {
		o = append(o, ew.WithSigmaClip(false))
	}

	if f.noError {
		o = append(o, ew.WithErrorPropagation(false))
	}

	return o
}

// NewMeasureCommand measures every line of a list in one spectrum file.
func NewMeasureCommand(opts *RootOptions) *cobra.Command {
	flags := &measureFlags{}

	cmd := &cobra.Command{
		Use:   "measure <spectrum>",
		Short: "Measure a line list in one spectrum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _, err := opts.lineList(flags.lineList)
			if err != nil {
				return err
			}

			s, err := readSpectrum(args[0], flags.codec)
			if err != nil {
				return err
			}

			res := ew.NewMeasurer(flags.options(opts)...).MeasureList(s, list)
			mode, _ := opts.mode()

			return report.Measurements(cmd.OutOrStdout(), mode, res)
		},
	}

	flags.register(cmd)

	return cmd
}

// NewTraceCommand prints the intermediate data of one line measurement.
func NewTraceCommand(opts *RootOptions) *cobra.Command {
	flags := &measureFlags{}

	cmd := &cobra.Command{
		Use:   "trace <spectrum> <label>",
		Short: "Show continuum samples and integration data for one line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _, err := opts.lineList(flags.lineList)
			if err != nil {
				return err
			}

			idx := -1
			for i, label := range list.Labels() {
				if label == args[1] {
					idx = i
					break
				}
			}

			if idx < 0 {
				return fmt.Errorf("line %q not in list", args[1])
			}

			s, err := readSpectrum(args[0], flags.codec)
			if err != nil {
				return err
			}

			_, tr := ew.NewMeasurer(flags.options(opts)...).MeasureTrace(s, list.Line(idx))
			mode, _ := opts.mode()

			return report.Trace(cmd.OutOrStdout(), mode, tr)
		},
	}

	flags.register(cmd)

	return cmd
}
