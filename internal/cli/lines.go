package cli

import (
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ew/internal/logging"
	"github.com/cwbudde/algo-ew/internal/report"
)

// NewLinesCommand validates and prints a line list.
func NewLinesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lines [file]",
		Short: "Validate and print a line list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			list, _, err := opts.lineList(path)
			if err != nil {
				return err
			}

			if overlaps := list.Overlapping(); len(overlaps) > 0 {
				logging.New("lines").Warn("continuum windows overlap integration windows", "count", len(overlaps))
			}

			mode, _ := opts.mode()

			return report.Lines(cmd.OutOrStdout(), mode, list)
		},
	}
}
