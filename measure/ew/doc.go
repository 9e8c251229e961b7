// Package ew measures spectral-line equivalent widths.
//
// For each line the measurement runs four steps:
//
//   - [FitContinuum]: least-squares straight line through the samples of
//     the continuum windows, with optional bad-pixel exclusion and a
//     single sigma-clip and refit pass
//   - [Integrate]: trapezoidal integral of 1 - flux/continuum over the
//     integration window, with the window edges placed by linear
//     interpolation (fractional pixels)
//   - [Uncertainty]: quadrature sum of the error channel over the same
//     samples
//   - flagging: continuum and integration conditions are collected in
//     [Flags]
//
// A line whose continuum cannot be fitted yields a NaN EW and a flag; it
// never aborts the other lines of a [Measurer.MeasureList] call.
//
// # Usage
//
//	list, err := linelist.Load("lines.txt")
//	m := ew.NewMeasurer(ew.WithSigma(2.5))
//	res := m.MeasureList(spec, list)
//	for i, label := range res.Labels {
//		fmt.Printf("%s EW=%.3f ± %.3f %v\n", label, res.EW[i], res.Err[i], res.Flags[i])
//	}
//
// [Measurer.MeasureTrace] additionally returns the continuum samples,
// clip partition and normalized integration region for plotting.
package ew
