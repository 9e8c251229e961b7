// Package numeric holds the small numerical kernels shared by the
// equivalent-width measurement: straight-line least squares, running
// moments, linear interpolation and trapezoidal integration.
package numeric

import (
	"errors"
	"math"
)

// ErrDegenerate is returned by FitLine when the abscissae do not span a range.
var ErrDegenerate = errors.New("numeric: degenerate least-squares system")

// ErrTooFewPoints is returned by FitLine when fewer than two points are given.
var ErrTooFewPoints = errors.New("numeric: at least two points required")

// FitLine computes the ordinary least-squares line y = slope*x + intercept.
//
// Sums are accumulated around the mean abscissa so wavelength-sized x values
// (order 1e4) do not lose precision in sumXX.
func FitLine(x, y []float64) (slope, intercept float64, err error) {
	n := len(x)
	if n != len(y) {
		return 0, 0, errors.New("numeric: x and y must have same length")
	}

	if n < 2 {
		return 0, 0, ErrTooFewPoints
	}

	var x0 float64
	for _, v := range x {
		x0 += v
	}

	x0 /= float64(n)

	var sumX, sumY, sumXX, sumXY float64

	for i := range x {
		dx := x[i] - x0
		sumX += dx
		sumY += y[i]
		sumXX += dx * dx
		sumXY += dx * y[i]
	}

	nf := float64(n)

	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0, ErrDegenerate
	}

	slope = (nf*sumXY - sumX*sumY) / denom
	interceptAtX0 := (sumY - slope*sumX) / nf

	return slope, interceptAtX0 - slope*x0, nil
}

// MeanStd returns the mean and the population standard deviation (ddof = 0)
// of data using Welford's online update. Empty input yields NaN for both.
func MeanStd(data []float64) (mean, std float64) {
	if len(data) == 0 {
		return math.NaN(), math.NaN()
	}

	var m2 float64

	for i, x := range data {
		ni := float64(i + 1)
		delta := x - mean
		mean += delta / ni
		m2 += delta * (x - mean)
	}

	return mean, math.Sqrt(m2 / float64(len(data)))
}

// Lerp interpolates linearly between (x0, y0) and (x1, y1) at x.
// When x0 == x1 it returns y0.
func Lerp(x, x0, x1, y0, y1 float64) float64 {
	if x1 == x0 {
		return y0
	}

	frac := (x - x0) / (x1 - x0)

	return y0 + frac*(y1-y0)
}

// Trapezoid integrates y over x with the trapezoidal rule.
// Fewer than two points integrate to zero.
func Trapezoid(x, y []float64) float64 {
	n := min(len(x), len(y))

	var area float64
	for i := 1; i < n; i++ {
		area += 0.5 * (y[i] + y[i-1]) * (x[i] - x[i-1])
	}

	return area
}

// Sum returns the plain sum of data.
func Sum(data []float64) float64 {
	var s float64
	for _, v := range data {
		s += v
	}

	return s
}
