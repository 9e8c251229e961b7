// Package config loads the YAML run configuration of the ewm command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-ew/catalog"
	"github.com/cwbudde/algo-ew/internal/logging"
	"github.com/cwbudde/algo-ew/measure/ew"
	"github.com/cwbudde/algo-ew/provider"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config is a complete run configuration.
type Config struct {
	LineList    string         `yaml:"linelist"`
	Catalog     CatalogConfig  `yaml:"catalog"`
	DataRelease int            `yaml:"data_release"`
	Measure     MeasureConfig  `yaml:"measure"`
	Provider    ProviderConfig `yaml:"provider"`
	Workers     int            `yaml:"workers"`
	Output      OutputConfig   `yaml:"output"`
	Log         LogConfig      `yaml:"log"`
}

// CatalogConfig locates the target catalog.
type CatalogConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // csv, sqlite or empty for by-extension
	Table  string `yaml:"table"`
}

// MeasureConfig mirrors ew.Config.
type MeasureConfig struct {
	SigmaClip         bool    `yaml:"sigma_clip"`
	Sigma             float64 `yaml:"sigma"`
	ExcludeBadPixels  bool    `yaml:"exclude_bad_pixels"`
	BadPixelThreshold float64 `yaml:"bad_pixel_threshold"`
	PropagateError    bool    `yaml:"propagate_error"`
}

// ProviderConfig selects where spectra come from.
type ProviderConfig struct {
	Kind        string   `yaml:"kind"` // dir or s3
	Root        string   `yaml:"root"`
	KeyTemplate string   `yaml:"key_template"`
	Codec       string   `yaml:"codec"` // fits or text
	S3          S3Config `yaml:"s3"`
}

// S3Config addresses an S3 or MinIO bucket.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// OutputConfig selects where results go.
type OutputConfig struct {
	DB     string `yaml:"db"`
	CSV    string `yaml:"csv"`
	Format string `yaml:"format"` // table, markdown or csv on stdout
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	m := ew.DefaultConfig()

	return Config{
		Catalog:     CatalogConfig{Table: "allstar"},
		DataRelease: catalog.DefaultDataRelease,
		Measure: MeasureConfig{
			SigmaClip:         m.SigmaClip,
			Sigma:             m.Sigma,
			ExcludeBadPixels:  m.ExcludeBadPixels,
			BadPixelThreshold: m.BadPixelThreshold,
			PropagateError:    m.PropagateError,
		},
		Provider: ProviderConfig{
			Kind:        "dir",
			Root:        ".",
			KeyTemplate: provider.DefaultKeyTemplate,
			Codec:       "fits",
		},
		Output: OutputConfig{Format: "table"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Parse decodes YAML over Default and validates the result. Unknown keys
// are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads the file at path. Relative paths inside it are resolved
// against the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	cfg.resolve(filepath.Dir(path))

	return cfg, nil
}

func (c *Config) resolve(base string) {
	for _, p := range []*string{&c.LineList, &c.Catalog.Path, &c.Provider.Root, &c.Output.DB, &c.Output.CSV} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error

	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.DataRelease > 0, "data_release must be positive, got %d", c.DataRelease)
	check(c.Measure.Sigma > 0, "measure.sigma must be positive, got %g", c.Measure.Sigma)
	check(c.Measure.BadPixelThreshold >= 0, "measure.bad_pixel_threshold must be >= 0, got %g", c.Measure.BadPixelThreshold)
	check(c.Workers >= 0, "workers must be >= 0, got %d", c.Workers)
	check(oneOf(c.Catalog.Format, "", "csv", "sqlite"), "catalog.format %q", c.Catalog.Format)
	check(oneOf(c.Provider.Codec, "fits", "text"), "provider.codec %q", c.Provider.Codec)
	check(oneOf(c.Output.Format, "table", "markdown", "csv"), "output.format %q", c.Output.Format)
	check(oneOf(c.Log.Format, "text", "json"), "log.format %q", c.Log.Format)

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		check(false, "log.level %q", c.Log.Level)
	}

	switch c.Provider.Kind {
	case "dir":
		check(c.Provider.Root != "", "provider.root is required for kind dir")
	case "s3":
		check(c.Provider.S3.Endpoint != "", "provider.s3.endpoint is required for kind s3")
		check(c.Provider.S3.Bucket != "", "provider.s3.bucket is required for kind s3")
	default:
		check(false, "provider.kind %q", c.Provider.Kind)
	}

	return errors.Join(errs...)
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}

	return false
}

// MeasureOptions converts the measure section to ew options.
func (c Config) MeasureOptions() []ew.Option {
	return []ew.Option{ew.WithConfig(ew.Config{
		SigmaClip:         c.Measure.SigmaClip,
		Sigma:             c.Measure.Sigma,
		ExcludeBadPixels:  c.Measure.ExcludeBadPixels,
		BadPixelThreshold: c.Measure.BadPixelThreshold,
		PropagateError:    c.Measure.PropagateError,
	})}
}

// Schema returns the catalog schema for the configured data release.
func (c Config) Schema() catalog.Schema { return catalog.NewSchema(c.DataRelease) }

// Build constructs the configured spectrum provider.
func (p ProviderConfig) Build() (provider.Provider, error) {
	codec, err := provider.CodecFor(p.Codec)
	if err != nil {
		return nil, err
	}

	switch p.Kind {
	case "dir":
		return &provider.Dir{Root: p.Root, Template: p.KeyTemplate, Codec: codec}, nil
	case "s3":
		store, err := provider.NewObjectStore(provider.S3Config{
			Endpoint:  p.S3.Endpoint,
			Bucket:    p.S3.Bucket,
			AccessKey: p.S3.AccessKey,
			SecretKey: p.S3.SecretKey,
			Region:    p.S3.Region,
			UseSSL:    p.S3.UseSSL,
		})
		if err != nil {
			return nil, err
		}

		store.Template = p.KeyTemplate
		store.Codec = codec

		return store, nil
	default:
		return nil, fmt.Errorf("%w: provider.kind %q", ErrInvalid, p.Kind)
	}
}

// Marshal renders the configuration as YAML with the S3 secret key
// blanked, for recording alongside stored runs.
func (c Config) Marshal() ([]byte, error) {
	c.Provider.S3.SecretKey = ""

	return yaml.Marshal(c)
}
