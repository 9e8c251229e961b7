// Package linelist parses and holds the absorption lines to measure.
//
// A line list is a whitespace-delimited table with a header row:
//
//	# Label   i_b       i_r       cont
//	FeI_1     15194.0   15198.0   [(15188.0,15192.0),(15200.0,15204.0)]
//	MgI_1     15740.0   15744.0   [(15733.0,15737.0),(15748.5,15752.0)]
//
// i_b and i_r bound the integration window, cont lists the continuum
// windows as (lo, hi) pairs. The cont column is read by a strict grammar
// ([ParseWindows]); it is never evaluated.
//
// A parsed [List] is immutable. Its Labels, Integration and Continuum
// accessors return slices of identical length whose indices correspond,
// and measurement output columns follow the same order.
package linelist
