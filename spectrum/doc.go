// Package spectrum represents one-dimensional stellar spectra: flux and
// an optional flux-error channel sampled on an ascending wavelength grid.
//
// A [Spectrum] is always sorted by wavelength with duplicates removed, so
// window selection ([Spectrum.Inclusive], [Spectrum.Interior]) is a pair
// of binary searches and [Spectrum.InterpFlux] can place fractional
// pixels at arbitrary window edges.
//
// [ApStarGrid] reproduces the log-linear wavelength grid of APOGEE
// apStar/aspcapStar files, which archive providers pair with the flux
// and error arrays they fetch.
package spectrum
