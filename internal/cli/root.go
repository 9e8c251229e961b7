// Package cli implements the ewm command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ew/internal/config"
	"github.com/cwbudde/algo-ew/internal/logging"
	"github.com/cwbudde/algo-ew/internal/report"
	"github.com/cwbudde/algo-ew/linelist"
	"github.com/cwbudde/algo-ew/provider"
	"github.com/cwbudde/algo-ew/spectrum"
)

// RootOptions holds global flags and the loaded configuration.
type RootOptions struct {
	ConfigPath string
	Format     string
	LogLevel   string
	LogFormat  string

	Config config.Config
}

// NewRootCommand creates the root command for the ewm CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Config: config.Default()}

	cmd := &cobra.Command{
		Use:           "ewm",
		Short:         "Measure spectral-line equivalent widths",
		Long:          "ewm measures equivalent widths of absorption lines in stellar spectra, one spectrum at a time or across a whole catalog.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML run configuration")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format (table|markdown|csv); default from config")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")

	cmd.AddCommand(NewLinesCommand(opts))
	cmd.AddCommand(NewMeasureCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewGridCommand(opts))

	return cmd
}

func (o *RootOptions) load(cmd *cobra.Command) error {
	if o.ConfigPath != "" {
		cfg, err := config.Load(o.ConfigPath)
		if err != nil {
			return err
		}

		o.Config = cfg
	}

	if o.Format != "" {
		o.Config.Output.Format = o.Format
	}

	if o.LogLevel != "" {
		o.Config.Log.Level = o.LogLevel
	}

	if o.LogFormat != "" {
		o.Config.Log.Format = o.LogFormat
	}

	if _, err := o.mode(); err != nil {
		return err
	}

	return logging.Setup(o.Config.Log.Level, o.Config.Log.Format, cmd.ErrOrStderr())
}

func (o *RootOptions) mode() (report.Mode, error) {
	return report.ParseMode(o.Config.Output.Format)
}

// lineList loads the list named by flag, falling back to the config.
func (o *RootOptions) lineList(flag string) (*linelist.List, string, error) {
	path := flag
	if path == "" {
		path = o.Config.LineList
	}

	if path == "" {
		return nil, "", fmt.Errorf("no line list: pass --linelist or set linelist in the config")
	}

	list, err := linelist.Load(path)
	if err != nil {
		return nil, "", err
	}

	return list, path, nil
}

// readSpectrum decodes a local spectrum file. An empty codec selects
// FITS for .fits/.fit files and text otherwise.
func readSpectrum(path, codec string) (*spectrum.Spectrum, error) {
	if codec == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".fits", ".fit", ".fts":
			codec = "fits"
		default:
			codec = "text"
		}
	}

	c, err := provider.CodecFor(codec)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spectrum: %w", err)
	}
	defer f.Close()

	s, err := c.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}
