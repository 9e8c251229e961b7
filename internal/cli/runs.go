package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ew/internal/report"
	"github.com/cwbudde/algo-ew/store"
)

// NewRunsCommand lists stored runs, or prints one run's result matrix.
func NewRunsCommand(opts *RootOptions) *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "List stored catalog runs or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if db == "" {
				db = opts.Config.Output.DB
			}

			if db == "" {
				return fmt.Errorf("no database: pass --db or set output.db in the config")
			}

			st, err := store.Open(db)
			if err != nil {
				return err
			}
			defer st.Close()

			mode, _ := opts.mode()

			if len(args) == 0 {
				runs, err := st.ListRuns(cmd.Context())
				if err != nil {
					return err
				}

				return report.Runs(cmd.OutOrStdout(), mode, runs)
			}

			run, err := st.LoadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return report.Matrix(cmd.OutOrStdout(), mode, run.Result)
		},
	}

	cmd.Flags().StringVar(&db, "db", "", "SQLite run database (default from config)")

	return cmd
}
