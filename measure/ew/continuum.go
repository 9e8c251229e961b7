package ew

import (
	"math"

	"github.com/cwbudde/algo-ew/internal/numeric"
	"github.com/cwbudde/algo-ew/linelist"
	"github.com/cwbudde/algo-ew/spectrum"
)

// Continuum is a straight-line continuum, flux = Slope*wavelength + Intercept.
// It is only meaningful within the wavelength range it was fitted on.
type Continuum struct {
	Slope     float64
	Intercept float64
}

// Eval returns the continuum flux at wavelength x.
func (c Continuum) Eval(x float64) float64 {
	return c.Slope*x + c.Intercept
}

// EvalInto writes the continuum at each wavelength of x into dst.
func (c Continuum) EvalInto(dst, x []float64) {
	for i, v := range x {
		dst[i] = c.Slope*v + c.Intercept
	}
}

// ContinuumFit is the outcome of fitting one line's continuum windows.
//
// Wavelength and Flux hold every sample inside the continuum windows.
// Good marks samples that passed bad-pixel exclusion and Kept those that
// also survived sigma-clipping; both align with Wavelength.
type ContinuumFit struct {
	Continuum Continuum
	Initial   Continuum
	OK        bool
	Flags     Flags

	Wavelength []float64
	Flux       []float64
	Good       []bool
	Kept       []bool
	Residual   []float64
	Std        float64
}

// FitContinuum fits a linear continuum to the samples of s that fall
// inside any of windows (bounds inclusive).
//
// Samples with flux below cfg.BadPixelThreshold are excluded when
// cfg.ExcludeBadPixels is set. With cfg.SigmaClip the initial fit is
// followed by a single clipping pass that keeps samples with
// |residual| <= cfg.Sigma * std(residual), and a refit on the survivors.
// A fit needs two samples at every stage; otherwise OK is false and Flags
// says which stage ran out.
func FitContinuum(s *spectrum.Spectrum, windows []linelist.Window, cfg Config) ContinuumFit {
	fit := ContinuumFit{Std: math.NaN()}

	idx := windowIndices(s, windows)

	fit.Wavelength = make([]float64, len(idx))
	fit.Flux = make([]float64, len(idx))
	fit.Good = make([]bool, len(idx))
	fit.Kept = make([]bool, len(idx))

	var x, y []float64

	for k, i := range idx {
		fit.Wavelength[k] = s.Wavelength[i]
		fit.Flux[k] = s.Flux[i]

		if cfg.ExcludeBadPixels && cfg.isBad(s.Flux[i]) {
			fit.Flags |= FlagContinuumBadPixel
			continue
		}

		fit.Good[k] = true
		x = append(x, s.Wavelength[i])
		y = append(y, s.Flux[i])
	}

	slope, intercept, err := numeric.FitLine(x, y)
	if err != nil {
		fit.Flags |= FlagContinuumAllBad
		return fit
	}

	fit.Initial = Continuum{Slope: slope, Intercept: intercept}
	fit.Continuum = fit.Initial
	copy(fit.Kept, fit.Good)

	if !cfg.SigmaClip {
		fit.OK = true
		return fit
	}

	fit.Residual = make([]float64, len(idx))
	good := make([]float64, 0, len(x))

	for k := range fit.Wavelength {
		fit.Residual[k] = fit.Flux[k] - fit.Initial.Eval(fit.Wavelength[k])
		if fit.Good[k] {
			good = append(good, fit.Residual[k])
		}
	}

	_, fit.Std = numeric.MeanStd(good)
	limit := cfg.Sigma * fit.Std

	x, y = x[:0], y[:0]

	for k := range fit.Wavelength {
		fit.Kept[k] = fit.Good[k] && math.Abs(fit.Residual[k]) <= limit
		if fit.Kept[k] {
			x = append(x, fit.Wavelength[k])
			y = append(y, fit.Flux[k])
		}
	}

	slope, intercept, err = numeric.FitLine(x, y)
	if err != nil {
		fit.Flags |= FlagContinuumAllClipped
		return fit
	}

	fit.Continuum = Continuum{Slope: slope, Intercept: intercept}
	fit.OK = true

	return fit
}

// windowIndices returns the ascending, de-duplicated indices of samples
// inside any window.
func windowIndices(s *spectrum.Spectrum, windows []linelist.Window) []int {
	if len(windows) == 1 {
		start, end := s.Inclusive(windows[0].Lo, windows[0].Hi)
		out := make([]int, 0, end-start)

		for i := start; i < end; i++ {
			out = append(out, i)
		}

		return out
	}

	var mask []bool

	lo, hi := s.Len(), 0

	for _, w := range windows {
		start, end := s.Inclusive(w.Lo, w.Hi)
		if start == end {
			continue
		}

		if mask == nil {
			mask = make([]bool, s.Len())
		}

		for i := start; i < end; i++ {
			mask[i] = true
		}

		lo, hi = min(lo, start), max(hi, end)
	}

	var out []int

	for i := lo; i < hi; i++ {
		if mask[i] {
			out = append(out, i)
		}
	}

	return out
}
