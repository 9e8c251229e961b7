// Package testutil provides tolerance assertions and deterministic
// synthetic spectra for tests.
package testutil

import (
	"math/rand"

	"github.com/cwbudde/algo-ew/spectrum"
)

// Builder assembles a synthetic spectrum on a uniform grid.
type Builder struct {
	wl   []float64
	flux []float64
	errs []float64
}

// NewBuilder starts a spectrum of n samples at start + i*step with flux 1.
func NewBuilder(start, step float64, n int) *Builder {
	b := &Builder{wl: spectrum.LinearGrid(start, step, n), flux: make([]float64, n)}
	for i := range b.flux {
		b.flux[i] = 1
	}
	return b
}

// Linear sets flux = slope*wavelength + intercept everywhere.
func (b *Builder) Linear(slope, intercept float64) *Builder {
	for i, x := range b.wl {
		b.flux[i] = slope*x + intercept
	}
	return b
}

// Scale multiplies the flux of samples with lo < wavelength < hi by f.
func (b *Builder) Scale(lo, hi, f float64) *Builder {
	for i, x := range b.wl {
		if x > lo && x < hi {
			b.flux[i] *= f
		}
	}
	return b
}

// Set assigns flux v to samples with lo <= wavelength <= hi.
func (b *Builder) Set(lo, hi, v float64) *Builder {
	for i, x := range b.wl {
		if x >= lo && x <= hi {
			b.flux[i] = v
		}
	}
	return b
}

// Noise adds deterministic uniform noise in [-amplitude, amplitude).
func (b *Builder) Noise(seed int64, amplitude float64) *Builder {
	rng := rand.New(rand.NewSource(seed))
	for i := range b.flux {
		b.flux[i] += (rng.Float64()*2 - 1) * amplitude
	}
	return b
}

// Error attaches a constant error channel.
func (b *Builder) Error(v float64) *Builder {
	b.errs = make([]float64, len(b.wl))
	for i := range b.errs {
		b.errs[i] = v
	}
	return b
}

// Flux exposes the flux slice for direct edits.
func (b *Builder) Flux() []float64 { return b.flux }

// Wavelength exposes the wavelength grid.
func (b *Builder) Wavelength() []float64 { return b.wl }

// Build returns the spectrum. It panics on invalid input, which only a
// broken test can produce.
func (b *Builder) Build() *spectrum.Spectrum {
	s, err := spectrum.New(b.wl, b.flux, b.errs)
	if err != nil {
		panic(err)
	}
	return s
}
