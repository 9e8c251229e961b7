package provider

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-ew/spectrum"
)

// Text decodes whitespace-separated columns "wavelength flux [error]".
// Blank lines and lines starting with '#' are skipped. Every data line
// must have the same number of columns.
type Text struct{}

// Decode implements Codec.
func (Text) Decode(r io.Reader) (*spectrum.Spectrum, error) {
	var (
		wl, flux, errs []float64
		cols           int
		lineNo         int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++

		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if cols == 0 {
			cols = len(fields)
			if cols != 2 && cols != 3 {
				return nil, fmt.Errorf("%w: line %d: want 2 or 3 columns, got %d", ErrDecode, lineNo, cols)
			}
		}

		if len(fields) != cols {
			return nil, fmt.Errorf("%w: line %d: want %d columns, got %d", ErrDecode, lineNo, cols, len(fields))
		}

		vals := make([]float64, cols)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %w", ErrDecode, lineNo, i+1, err)
			}

			vals[i] = v
		}

		wl = append(wl, vals[0])
		flux = append(flux, vals[1])

		if cols == 3 {
			errs = append(errs, vals[2])
		}
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	s, err := spectrum.New(wl, flux, errs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return s, nil
}

// EncodeText writes s in the format Text decodes.
func EncodeText(w io.Writer, s *spectrum.Spectrum) error {
	bw := bufio.NewWriter(w)

	for i, x := range s.Wavelength {
		var err error
		if s.HasError() {
			_, err = fmt.Fprintf(bw, "%.6f %g %g\n", x, s.Flux[i], s.Error[i])
		} else {
			_, err = fmt.Fprintf(bw, "%.6f %g\n", x, s.Flux[i])
		}

		if err != nil {
			return err
		}
	}

	return bw.Flush()
}
