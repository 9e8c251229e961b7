package spectrum

import "math"

// apStar combined-spectrum grid: log10-linear from 10^4.179 Angstrom with
// a step of 6e-6 dex.
const (
	ApStarPixels   = 8575
	apStarLogStart = 4.179
	apStarLogStep  = 6e-6
)

// ApStarGrid returns the wavelength grid, in Angstrom, shared by APOGEE
// apStar and aspcapStar spectra.
func ApStarGrid() []float64 {
	return LogLinearGrid(apStarLogStart, apStarLogStep, ApStarPixels)
}

// LogLinearGrid returns n wavelengths 10^(logStart + i*logStep).
func LogLinearGrid(logStart, logStep float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = math.Pow(10, logStart+float64(i)*logStep)
	}

	return out
}

// LinearGrid returns n wavelengths start + i*step.
func LinearGrid(start, step float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}

	return out
}
