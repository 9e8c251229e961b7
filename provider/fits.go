package provider

import (
	"fmt"
	"io"

	"github.com/astrogo/fitsio"

	"github.com/cwbudde/algo-ew/spectrum"
)

// FITS decodes aspcapStar-style files: one image HDU of flux and one of
// flux errors, both on a shared wavelength grid.
//
// The grid is taken from Grid when set. Otherwise a log-linear grid is
// built from the CRVAL1 and CDELT1 keywords of the flux HDU, and
// failing that the apStar grid is used. Two-dimensional images (apStar
// visit stacks) contribute their first row, the combined spectrum.
type FITS struct {
	FluxHDU  int
	ErrorHDU int // negative disables the error channel
	Grid     []float64
}

// NewFITS returns the aspcapStar layout: flux in HDU 1, errors in HDU 2.
func NewFITS() FITS {
	return FITS{FluxHDU: 1, ErrorHDU: 2}
}

// Decode implements Codec.
func (c FITS) Decode(r io.Reader) (*spectrum.Spectrum, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()

	n := len(f.HDUs())
	if c.FluxHDU < 0 || c.FluxHDU >= n {
		return nil, fmt.Errorf("%w: flux HDU %d missing (file has %d)", ErrDecode, c.FluxHDU, n)
	}

	fluxHDU := f.HDU(c.FluxHDU)

	flux, err := readRow(fluxHDU)
	if err != nil {
		return nil, fmt.Errorf("%w: flux HDU %d: %w", ErrDecode, c.FluxHDU, err)
	}

	var errs []float64

	if c.ErrorHDU >= 0 && c.ErrorHDU < n {
		errs, err = readRow(f.HDU(c.ErrorHDU))
		if err != nil {
			return nil, fmt.Errorf("%w: error HDU %d: %w", ErrDecode, c.ErrorHDU, err)
		}
	}

	grid := c.Grid
	if grid == nil {
		grid = headerGrid(fluxHDU.Header(), len(flux))
	}

	if len(grid) != len(flux) {
		return nil, fmt.Errorf("%w: grid has %d pixels, flux %d", ErrDecode, len(grid), len(flux))
	}

	s, err := spectrum.New(grid, flux, errs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return s, nil
}

func headerGrid(hdr *fitsio.Header, n int) []float64 {
	start, ok1 := cardFloat(hdr, "CRVAL1")
	step, ok2 := cardFloat(hdr, "CDELT1")

	if ok1 && ok2 && step > 0 {
		return spectrum.LogLinearGrid(start, step, n)
	}

	if n == spectrum.ApStarPixels {
		return spectrum.ApStarGrid()
	}

	return nil
}

func cardFloat(hdr *fitsio.Header, name string) (float64, bool) {
	card := hdr.Get(name)
	if card == nil {
		return 0, false
	}

	switch v := card.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}

	return 0, false
}

// pixel covers the Go types fitsio decodes for each BITPIX.
type pixel interface {
	~uint8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// readRow returns the first row of an image HDU as float64.
func readRow(hdu fitsio.HDU) ([]float64, error) {
	img, ok := hdu.(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("not an image HDU")
	}

	hdr := img.Header()

	axes := hdr.Axes()
	if len(axes) == 0 {
		return nil, fmt.Errorf("image has no data")
	}

	total := 1
	for _, a := range axes {
		total *= a
	}

	switch hdr.Bitpix() {
	case 8:
		return firstRow[uint8](img, total, axes[0])
	case 16:
		return firstRow[int16](img, total, axes[0])
	case 32:
		return firstRow[int32](img, total, axes[0])
	case 64:
		return firstRow[int64](img, total, axes[0])
	case -32:
		return firstRow[float32](img, total, axes[0])
	case -64:
		return firstRow[float64](img, total, axes[0])
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", hdr.Bitpix())
	}
}

func firstRow[T pixel](img fitsio.Image, total, width int) ([]float64, error) {
	raw := make([]T, total)
	if err := img.Read(&raw); err != nil {
		return nil, err
	}

	out := make([]float64, width)
	for i := range out {
		out[i] = float64(raw[i])
	}

	return out, nil
}
