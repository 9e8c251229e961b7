package ew

import "strings"

// Flags is a set of per-line measurement conditions.
type Flags uint8

const (
	// FlagContinuumAllBad: fewer than two usable continuum samples after
	// bad-pixel exclusion. EW is NaN.
	FlagContinuumAllBad Flags = 1 << iota
	// FlagContinuumBadPixel: at least one continuum sample was excluded as
	// a bad pixel.
	FlagContinuumBadPixel
	// FlagContinuumAllClipped: fewer than two continuum samples survived
	// sigma-clipping. EW is NaN.
	FlagContinuumAllClipped
	// FlagIntegrationBadPixel: a sample of the integration region has
	// near-zero flux. Informational only.
	FlagIntegrationBadPixel
	// FlagIntegrationOutOfRange: the integration window is not covered by
	// the wavelength grid. EW is NaN.
	FlagIntegrationOutOfRange
	// FlagContinuumNonPositive: the fitted continuum is zero or negative
	// somewhere in the integration window, so the normalized flux is
	// undefined. EW is NaN.
	FlagContinuumNonPositive
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagContinuumAllBad, "CONTINUUM_ALL_BAD"},
	{FlagContinuumBadPixel, "CONTINUUM_BAD_PIXEL"},
	{FlagContinuumAllClipped, "CONTINUUM_ALL_CLIPPED"},
	{FlagIntegrationBadPixel, "INTEGRATION_BAD_PIXEL"},
	{FlagIntegrationOutOfRange, "INTEGRATION_OUT_OF_RANGE"},
	{FlagContinuumNonPositive, "CONTINUUM_NON_POSITIVE"},
}

// Has reports whether every flag in f2 is set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Failed reports whether the flags describe a measurement without an EW.
func (f Flags) Failed() bool {
	return f&(FlagContinuumAllBad|FlagContinuumAllClipped|FlagIntegrationOutOfRange|FlagContinuumNonPositive) != 0
}

// List returns the names of the set flags in declaration order.
func (f Flags) List() []string {
	var out []string

	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			out = append(out, fn.name)
		}
	}

	return out
}

func (f Flags) String() string {
	if f == 0 {
		return ""
	}

	return strings.Join(f.List(), "|")
}

// ParseFlags is the inverse of Flags.String. Unknown names are ignored.
func ParseFlags(s string) Flags {
	var f Flags

	for _, part := range strings.Split(s, "|") {
		for _, fn := range flagNames {
			if strings.TrimSpace(part) == fn.name {
				f |= fn.flag
			}
		}
	}

	return f
}
