package ew

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-ew/internal/numeric"
	"github.com/cwbudde/algo-ew/linelist"
	"github.com/cwbudde/algo-ew/spectrum"
)

// Uncertainty propagates the error channel of s over window w: the
// square root of the sum of squared errors over the same augmented
// sequence Integrate uses. It is a quadrature sum in flux units, neither
// integrated over wavelength nor divided by the continuum. Without an
// error channel, or outside the grid, the result is NaN.
func Uncertainty(s *spectrum.Spectrum, w linelist.Window) float64 {
	if !s.HasError() {
		return math.NaN()
	}

	_, errs, err := augment(s, w, s.Error, s.InterpError)
	if err != nil {
		return math.NaN()
	}

	sq := make([]float64, len(errs))
	vecmath.MulBlock(sq, errs, errs)

	return math.Sqrt(numeric.Sum(sq))
}
