package ew

const (
	defaultSigma             = 2.0
	defaultBadPixelThreshold = 1e-4
)

// Config holds measurement parameters shared by every line.
type Config struct {
	// SigmaClip enables one fit, clip, refit pass on the continuum samples.
	SigmaClip bool
	// Sigma is the clipping threshold in units of the residual standard
	// deviation.
	Sigma float64
	// ExcludeBadPixels drops continuum samples whose flux is below
	// BadPixelThreshold before fitting.
	ExcludeBadPixels bool
	// BadPixelThreshold marks near-zero flux as a bad pixel, both for the
	// continuum exclusion and for the informational integration flag.
	BadPixelThreshold float64
	// PropagateError computes the EW uncertainty from the error channel.
	// When false the uncertainty is reported as 0 (synthetic spectra).
	PropagateError bool
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the standard measurement setup: 2-sigma clipping,
// bad-pixel exclusion below 1e-4 and error propagation.
func DefaultConfig() Config {
	return Config{
		SigmaClip:         true,
		Sigma:             defaultSigma,
		ExcludeBadPixels:  true,
		BadPixelThreshold: defaultBadPixelThreshold,
		PropagateError:    true,
	}
}

// WithSigmaClip enables or disables continuum sigma-clipping.
func WithSigmaClip(enabled bool) Option {
	return func(cfg *Config) {
		cfg.SigmaClip = enabled
	}
}

// WithSigma sets the clipping threshold. Non-positive values are ignored.
func WithSigma(sigma float64) Option {
	return func(cfg *Config) {
		if sigma > 0 {
			cfg.Sigma = sigma
		}
	}
}

// WithBadPixelExclusion enables or disables dropping near-zero continuum
// samples.
func WithBadPixelExclusion(enabled bool) Option {
	return func(cfg *Config) {
		cfg.ExcludeBadPixels = enabled
	}
}

// WithBadPixelThreshold sets the near-zero flux threshold. Negative values
// are ignored.
func WithBadPixelThreshold(threshold float64) Option {
	return func(cfg *Config) {
		if threshold >= 0 {
			cfg.BadPixelThreshold = threshold
		}
	}
}

// WithErrorPropagation enables or disables the uncertainty computation.
func WithErrorPropagation(enabled bool) Option {
	return func(cfg *Config) {
		cfg.PropagateError = enabled
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(c Config) Option {
	return func(cfg *Config) {
		*cfg = c
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

func (c Config) isBad(flux float64) bool {
	return !(flux >= c.BadPixelThreshold)
}
