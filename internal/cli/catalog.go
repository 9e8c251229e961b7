package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ew/catalog"
	"github.com/cwbudde/algo-ew/internal/logging"
	"github.com/cwbudde/algo-ew/internal/report"
	"github.com/cwbudde/algo-ew/measure/batch"
	"github.com/cwbudde/algo-ew/store"
)

type catalogFlags struct {
	measureFlags

	catalog     string
	root        string
	workers     int
	dataRelease int
	db          string
	csv         string
}

// NewCatalogCommand measures a line list across every spectrum of a
// catalog and writes the EW and error matrices.
func NewCatalogCommand(opts *RootOptions) *cobra.Command {
	flags := &catalogFlags{}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Measure a line list across a catalog of spectra",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, opts, flags)
		},
	}

	flags.measureFlags.register(cmd)
	cmd.Flags().StringVar(&flags.catalog, "catalog", "", "catalog file, CSV or SQLite (default from config)")
	cmd.Flags().StringVar(&flags.root, "root", "", "read spectra from this directory instead of the configured provider")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", 0, "concurrent spectra (default from config, 0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&flags.dataRelease, "dr", 0, "data release selecting the catalog location column")
	cmd.Flags().StringVar(&flags.db, "db", "", "SQLite database to record the run in")
	cmd.Flags().StringVar(&flags.csv, "csv", "", "also write the result matrix as CSV to this file")

	return cmd
}

func runCatalog(cmd *cobra.Command, opts *RootOptions, flags *catalogFlags) error {
	ctx := cmd.Context()
	cfg := opts.Config
	log := logging.New("catalog")

	if flags.root != "" {
		cfg.Provider.Kind = "dir"
		cfg.Provider.Root = flags.root
	}

	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}

	if flags.dataRelease > 0 {
		cfg.DataRelease = flags.dataRelease
	}

	if flags.catalog != "" {
		cfg.Catalog.Path = flags.catalog
	}

	if flags.db != "" {
		cfg.Output.DB = flags.db
	}

	if flags.csv != "" {
		cfg.Output.CSV = flags.csv
	}

	if cfg.Catalog.Path == "" {
		return fmt.Errorf("no catalog: pass --catalog or set catalog.path in the config")
	}

	list, listPath, err := opts.lineList(flags.lineList)
	if err != nil {
		return err
	}

	cat, err := catalog.Load(ctx, cfg.Catalog.Path, cfg.Catalog.Format, cfg.Catalog.Table)
	if err != nil {
		return err
	}

	p, err := cfg.Provider.Build()
	if err != nil {
		return err
	}

	log.Info("measuring catalog", "rows", cat.Len(), "lines", list.Len(), "provider", cfg.Provider.Kind, "workers", cfg.Workers)

	m := batch.New(list, p,
		batch.WithWorkers(cfg.Workers),
		batch.WithSchema(cfg.Schema()),
		batch.WithMeasureOptions(flags.options(opts)...),
		batch.WithLogger(logging.New("batch")),
	)

	res, err := m.Run(ctx, cat)
	if err != nil {
		return err
	}

	mode, _ := opts.mode()
	if err := report.Matrix(cmd.OutOrStdout(), mode, res); err != nil {
		return err
	}

	if cfg.Output.CSV != "" {
		if err := writeCSV(cfg.Output.CSV, res); err != nil {
			return err
		}

		log.Info("wrote csv", "path", cfg.Output.CSV)
	}

	if cfg.Output.DB == "" {
		return nil
	}

	st, err := store.Open(cfg.Output.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	snapshot, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("snapshot config: %w", err)
	}

	id, err := st.SaveRun(ctx, store.RunInfo{
		LineList:    listPath,
		Catalog:     cfg.Catalog.Path,
		DataRelease: cfg.DataRelease,
		Config:      string(snapshot),
	}, list, res)
	if err != nil {
		return err
	}

	log.Info("run saved", "id", id, "db", cfg.Output.DB)

	return nil
}

func writeCSV(path string, res *batch.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}

	if err := report.Matrix(f, report.CSV, res); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
