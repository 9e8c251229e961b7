package ew

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-ew/internal/numeric"
	"github.com/cwbudde/algo-ew/linelist"
	"github.com/cwbudde/algo-ew/spectrum"
)

// Integration is the outcome of integrating one line.
//
// Wavelength, Flux, Continuum and Normalized describe the augmented
// sequence: the interpolated value at the blue edge, every sample strictly
// inside the window, and the interpolated value at the red edge.
type Integration struct {
	EW    float64
	Flags Flags

	Wavelength []float64
	Flux       []float64
	Continuum  []float64
	Normalized []float64
}

// Integrate computes the equivalent width of w against continuum c:
// the trapezoidal integral of 1 - flux/continuum over the augmented
// sequence. Positive values mean absorption.
//
// Grid samples rarely coincide with the window edges, so the edges are
// sampled by linear interpolation (fractional pixels). A window with no
// interior sample degenerates to a two-point trapezoid. A window that
// leaves the grid yields NaN and FlagIntegrationOutOfRange; a continuum
// that is not positive across the whole window yields NaN and
// FlagContinuumNonPositive.
func Integrate(s *spectrum.Spectrum, w linelist.Window, c Continuum, cfg Config) Integration {
	out := Integration{EW: math.NaN()}

	x, flux, err := augment(s, w, s.Flux, s.InterpFlux)
	if err != nil {
		out.Flags |= FlagIntegrationOutOfRange
		return out
	}

	n := len(x)

	out.Wavelength = x
	out.Flux = flux
	out.Continuum = make([]float64, n)
	out.Normalized = make([]float64, n)

	c.EvalInto(out.Continuum, x)

	for _, v := range out.Continuum {
		if !(v > 0) {
			out.Flags |= FlagContinuumNonPositive
			return out
		}
	}

	inv := make([]float64, n)
	for i, v := range out.Continuum {
		inv[i] = 1 / v
	}

	vecmath.MulBlock(out.Normalized, flux, inv)

	depth := make([]float64, n)
	for i, v := range out.Normalized {
		depth[i] = 1 - v
	}

	out.EW = numeric.Trapezoid(x, depth)

	for _, v := range flux {
		if cfg.isBad(v) {
			out.Flags |= FlagIntegrationBadPixel
			break
		}
	}

	return out
}

// augment builds [interp(lo), values strictly inside (lo, hi), interp(hi)]
// together with the matching wavelengths.
func augment(s *spectrum.Spectrum, w linelist.Window, values []float64,
	interp func(float64) (float64, error),
) (x, y []float64, err error) {
	blue, err := interp(w.Lo)
	if err != nil {
		return nil, nil, err
	}

	red, err := interp(w.Hi)
	if err != nil {
		return nil, nil, err
	}

	start, end := s.Interior(w.Lo, w.Hi)
	n := end - start + 2

	x = make([]float64, 0, n)
	y = make([]float64, 0, n)

	x = append(x, w.Lo)
	y = append(y, blue)
	x = append(x, s.Wavelength[start:end]...)
	y = append(y, values[start:end]...)
	x = append(x, w.Hi)
	y = append(y, red)

	return x, y, nil
}
