package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-ew/internal/numeric"
)

// Errors returned by spectrum construction and sampling.
var (
	ErrEmpty          = errors.New("spectrum: no samples")
	ErrLengthMismatch = errors.New("spectrum: wavelength, flux and error must have same length")
	ErrBadWavelength  = errors.New("spectrum: wavelength must be finite")
	ErrOutOfRange     = errors.New("spectrum: wavelength outside sampled range")
	ErrNoError        = errors.New("spectrum: no error channel")
)

// Spectrum is a one-dimensional spectrum sampled on an ascending,
// duplicate-free wavelength grid. Error is nil when no uncertainty
// channel is available.
type Spectrum struct {
	Wavelength []float64
	Flux       []float64
	Error      []float64
}

// New builds a Spectrum from parallel slices. The inputs are copied,
// sorted by wavelength and de-duplicated (the first sample at a given
// wavelength wins). errs may be nil.
func New(wavelength, flux, errs []float64) (*Spectrum, error) {
	n := len(wavelength)
	if n == 0 {
		return nil, ErrEmpty
	}

	if len(flux) != n || (errs != nil && len(errs) != n) {
		return nil, fmt.Errorf("%w: %d wavelengths, %d flux, %d error",
			ErrLengthMismatch, n, len(flux), len(errs))
	}

	order := make([]int, n)
	for i := range order {
		if math.IsNaN(wavelength[i]) || math.IsInf(wavelength[i], 0) {
			return nil, fmt.Errorf("%w: index %d is %v", ErrBadWavelength, i, wavelength[i])
		}

		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return wavelength[order[a]] < wavelength[order[b]]
	})

	s := &Spectrum{
		Wavelength: make([]float64, 0, n),
		Flux:       make([]float64, 0, n),
	}
	if errs != nil {
		s.Error = make([]float64, 0, n)
	}

	for k, i := range order {
		if k > 0 && wavelength[i] == s.Wavelength[len(s.Wavelength)-1] {
			continue
		}

		s.Wavelength = append(s.Wavelength, wavelength[i])
		s.Flux = append(s.Flux, flux[i])

		if errs != nil {
			s.Error = append(s.Error, errs[i])
		}
	}

	return s, nil
}

// Len returns the number of samples.
func (s *Spectrum) Len() int { return len(s.Wavelength) }

// HasError reports whether the spectrum carries an error channel.
func (s *Spectrum) HasError() bool { return s.Error != nil }

// Range returns the first and last wavelength.
func (s *Spectrum) Range() (lo, hi float64) {
	if len(s.Wavelength) == 0 {
		return math.NaN(), math.NaN()
	}

	return s.Wavelength[0], s.Wavelength[len(s.Wavelength)-1]
}

// Covers reports whether [lo, hi] lies within the sampled range.
func (s *Spectrum) Covers(lo, hi float64) bool {
	first, last := s.Range()
	return lo >= first && hi <= last
}

// Inclusive returns the indices of samples with lo <= wavelength <= hi.
func (s *Spectrum) Inclusive(lo, hi float64) (start, end int) {
	start = sort.SearchFloat64s(s.Wavelength, lo)
	end = sort.Search(len(s.Wavelength), func(i int) bool { return s.Wavelength[i] > hi })

	if end < start {
		end = start
	}

	return start, end
}

// Interior returns the index range [start, end) of samples with
// lo < wavelength < hi.
func (s *Spectrum) Interior(lo, hi float64) (start, end int) {
	start = sort.Search(len(s.Wavelength), func(i int) bool { return s.Wavelength[i] > lo })
	end = sort.SearchFloat64s(s.Wavelength, hi)

	if end < start {
		end = start
	}

	return start, end
}

// InterpFlux linearly interpolates the flux at wavelength x.
func (s *Spectrum) InterpFlux(x float64) (float64, error) {
	return interpAt(s.Wavelength, s.Flux, x)
}

// InterpError linearly interpolates the error channel at wavelength x.
func (s *Spectrum) InterpError(x float64) (float64, error) {
	if s.Error == nil {
		return math.NaN(), ErrNoError
	}

	return interpAt(s.Wavelength, s.Error, x)
}

func interpAt(grid, values []float64, x float64) (float64, error) {
	n := len(grid)
	if n == 0 {
		return math.NaN(), ErrEmpty
	}

	if x < grid[0] || x > grid[n-1] || math.IsNaN(x) {
		return math.NaN(), fmt.Errorf("%w: %v not in [%v, %v]", ErrOutOfRange, x, grid[0], grid[n-1])
	}

	i := sort.SearchFloat64s(grid, x)
	if grid[i] == x {
		return values[i], nil
	}

	return numeric.Lerp(x, grid[i-1], grid[i], values[i-1], values[i]), nil
}
