package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ew/internal/report"
	"github.com/cwbudde/algo-ew/spectrum"
)

// NewGridCommand prints a log-linear wavelength grid, by default the
// apStar grid.
func NewGridCommand(opts *RootOptions) *cobra.Command {
	var (
		start float64
		step  float64
		n     int
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the apStar wavelength grid or another log-linear grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return fmt.Errorf("--pixels must be positive, got %d", n)
			}

			if step <= 0 {
				return fmt.Errorf("--log-step must be positive, got %g", step)
			}

			mode, _ := opts.mode()

			return report.Grid(cmd.OutOrStdout(), mode, spectrum.LogLinearGrid(start, step, n))
		},
	}

	cmd.Flags().Float64Var(&start, "log-start", 4.179, "log10 of the first wavelength")
	cmd.Flags().Float64Var(&step, "log-step", 6e-6, "log10 step between pixels")
	cmd.Flags().IntVar(&n, "pixels", spectrum.ApStarPixels, "number of pixels")

	return cmd
}
