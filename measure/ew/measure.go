package ew

import (
	"math"

	"github.com/cwbudde/algo-ew/linelist"
	"github.com/cwbudde/algo-ew/spectrum"
)

// Result is the measurement of one line in one spectrum.
//
// EW is NaN when no continuum could be fitted or the window is off the
// grid; Flags says why. Err is NaN in those cases and when error
// propagation was requested for a spectrum without an error channel. It
// is 0 when propagation is disabled.
type Result struct {
	EW    float64
	Err   float64
	Flags Flags
}

// Trace exposes the intermediate values of one line measurement for
// plotting: the continuum samples and their clip partition, the fitted
// continuum and the normalized integration region.
type Trace struct {
	Label       string
	Window      linelist.Window
	Fit         ContinuumFit
	Integration Integration
	Result      Result
}

// ListResult holds one spectrum's measurements for a whole line list.
// All slices are indexed like the list.
type ListResult struct {
	Labels []string
	EW     []float64
	Err    []float64
	Flags  []Flags
}

// Measurer measures lines with a fixed configuration. It holds no
// per-measurement state and is safe for concurrent use.
type Measurer struct {
	cfg Config
}

// NewMeasurer creates a Measurer from options applied to DefaultConfig.
func NewMeasurer(opts ...Option) *Measurer {
	return &Measurer{cfg: ApplyOptions(opts...)}
}

// Config returns the measurement configuration.
func (m *Measurer) Config() Config { return m.cfg }

// Measure is a one-shot measurement of a single line.
func Measure(s *spectrum.Spectrum, line linelist.Line, opts ...Option) Result {
	return NewMeasurer(opts...).Measure(s, line)
}

// MeasureTrace is a one-shot measurement that also returns the
// intermediate values.
func MeasureTrace(s *spectrum.Spectrum, line linelist.Line, opts ...Option) (Result, Trace) {
	return NewMeasurer(opts...).MeasureTrace(s, line)
}

// MeasureList is a one-shot measurement of every line in list.
func MeasureList(s *spectrum.Spectrum, list *linelist.List, opts ...Option) ListResult {
	return NewMeasurer(opts...).MeasureList(s, list)
}

// Measure fits the continuum, integrates the line and propagates the
// error. Failures are reported through Result.Flags, never as errors.
func (m *Measurer) Measure(s *spectrum.Spectrum, line linelist.Line) Result {
	r, _ := m.measure(s, line, false)
	return r
}

// MeasureTrace is Measure plus the intermediate values.
func (m *Measurer) MeasureTrace(s *spectrum.Spectrum, line linelist.Line) (Result, Trace) {
	return m.measure(s, line, true)
}

// MeasureList measures every line of list in order. A failed line never
// affects the others.
func (m *Measurer) MeasureList(s *spectrum.Spectrum, list *linelist.List) ListResult {
	n := list.Len()
	out := ListResult{
		Labels: list.Labels(),
		EW:     make([]float64, n),
		Err:    make([]float64, n),
		Flags:  make([]Flags, n),
	}

	for i := range n {
		r := m.Measure(s, list.Line(i))
		out.EW[i] = r.EW
		out.Err[i] = r.Err
		out.Flags[i] = r.Flags
	}

	return out
}

func (m *Measurer) measure(s *spectrum.Spectrum, line linelist.Line, trace bool) (Result, Trace) {
	res := Result{EW: math.NaN(), Err: math.NaN()}
	if !m.cfg.PropagateError {
		res.Err = 0
	}

	fit := FitContinuum(s, line.Continuum, m.cfg)
	res.Flags |= fit.Flags

	var integ Integration

	if fit.OK {
		integ = Integrate(s, line.Integration, fit.Continuum, m.cfg)
		res.EW = integ.EW
		res.Flags |= integ.Flags

		if m.cfg.PropagateError && !res.Flags.Failed() {
			res.Err = Uncertainty(s, line.Integration)
		}
	}

	if !trace {
		return res, Trace{}
	}

	return res, Trace{
		Label:       line.Label,
		Window:      line.Integration,
		Fit:         fit,
		Integration: integ,
		Result:      res,
	}
}
