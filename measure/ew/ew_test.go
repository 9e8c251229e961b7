package ew

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-ew/internal/testutil"
	"github.com/cwbudde/algo-ew/linelist"
	"github.com/cwbudde/algo-ew/spectrum"
)

const tolerance = 1e-9

// referenceLine has continuum windows either side of a 10 Angstrom
// integration window.
var referenceLine = linelist.Line{
	Label:       "ref",
	Integration: linelist.Window{Lo: 5015, Hi: 5025},
	Continuum:   []linelist.Window{{Lo: 5000, Hi: 5010}, {Lo: 5030, Hi: 5040}},
}

// dipSpectrum is flat at 1 with a uniform 10% dip across (5015, 5025).
// Samples sit at half-integer wavelengths from 4990.5 to 5049.5, so the
// window edges fall half-way between samples.
func dipSpectrum() *testutil.Builder {
	return testutil.NewBuilder(4990.5, 1, 60).Scale(5015, 5025, 0.9).Error(0.01)
}

func TestMeasure_ReferenceDip(t *testing.T) {
	s := dipSpectrum().Build()
	r := Measure(s, referenceLine)

	// Nine full interior intervals of depth 0.1 plus two half-pixel edges
	// whose interpolated depth is 0.05: 0.9 + 2*0.0375.
	testutil.RequireNearlyEqual(t, "EW", r.EW, 0.975, tolerance)
	if math.Abs(r.EW-1.0) > 0.03 {
		t.Errorf("EW = %g, want about 1.0", r.EW)
	}

	// Ten interior samples plus two interpolated edges.
	testutil.RequireNearlyEqual(t, "Err", r.Err, math.Sqrt(12)*0.01, tolerance)

	if r.Flags != 0 {
		t.Errorf("Flags = %v, want none", r.Flags)
	}
}

func TestMeasure_LinearContinuumNoLine(t *testing.T) {
	for _, clip := range []bool{true, false} {
		s := testutil.NewBuilder(4990.5, 1, 60).Linear(2e-3, -8).Build()

		r := Measure(s, referenceLine, WithSigmaClip(clip))
		if math.Abs(r.EW) > tolerance {
			t.Errorf("clip=%v: EW = %g, want 0", clip, r.EW)
		}
		if r.Flags.Failed() {
			t.Errorf("clip=%v: unexpected failure flags %v", clip, r.Flags)
		}
	}
}

func TestMeasure_SigmaClipRemovesOutlier(t *testing.T) {
	clean := Measure(dipSpectrum().Build(), referenceLine)

	b := dipSpectrum()
	b.Set(5005.5, 5005.5, 3)
	s := b.Build()

	unclipped := Measure(s, referenceLine, WithSigmaClip(false))
	clipped := Measure(s, referenceLine, WithSigmaClip(true))

	if math.Abs(clipped.EW-clean.EW) >= math.Abs(unclipped.EW-clean.EW) {
		t.Fatalf("clipping did not help: clean %g, clipped %g, unclipped %g",
			clean.EW, clipped.EW, unclipped.EW)
	}
	testutil.RequireNearlyEqual(t, "clipped EW", clipped.EW, clean.EW, tolerance)
}

func TestMeasure_FractionalEdgeMatchesResampled(t *testing.T) {
	line := linelist.Line{
		Integration: linelist.Window{Lo: 5015.3, Hi: 5024.7},
		Continuum:   referenceLine.Continuum,
	}

	b := testutil.NewBuilder(4990.5, 1, 60).Linear(1e-3, -4)
	flux := b.Flux()
	for i, x := range b.Wavelength() {
		if x > 5014 && x < 5026 {
			flux[i] *= 1 - 0.3*math.Exp(-0.5*(x-5020)*(x-5020)/4)
		}
	}
	s := b.Build()

	// Insert grid samples exactly at the window edges.
	wl := append([]float64(nil), s.Wavelength...)
	fl := append([]float64(nil), s.Flux...)
	for _, edge := range []float64{line.Integration.Lo, line.Integration.Hi} {
		v, err := s.InterpFlux(edge)
		if err != nil {
			t.Fatal(err)
		}
		wl = append(wl, edge)
		fl = append(fl, v)
	}
	resampled, err := spectrum.New(wl, fl, nil)
	if err != nil {
		t.Fatal(err)
	}

	opts := []Option{WithErrorPropagation(false)}
	a := Measure(s, line, opts...)
	r := Measure(resampled, line, opts...)

	if a.EW <= 0 {
		t.Fatalf("EW = %g, want absorption", a.EW)
	}
	testutil.RequireNearlyEqual(t, "EW", a.EW, r.EW, 1e-12)
}

func TestMeasure_DegenerateWindow(t *testing.T) {
	s := dipSpectrum().Build()

	for _, w := range []linelist.Window{
		{Lo: 5015.6, Hi: 5015.9}, // no interior sample
		{Lo: 5015.5, Hi: 5016.5}, // edges on samples, nothing strictly inside
		{Lo: 5015.6, Hi: 5015.6 + 1e-9},
	} {
		line := linelist.Line{Integration: w, Continuum: referenceLine.Continuum}
		r, tr := MeasureTrace(s, line, WithSigmaClip(false))

		if math.IsInf(r.EW, 0) {
			t.Errorf("%v: EW = %g", w, r.EW)
		}
		if math.IsNaN(r.EW) {
			t.Errorf("%v: EW is NaN for a covered window", w)
		}
		if len(tr.Integration.Wavelength) != 2 {
			t.Errorf("%v: augmented length %d, want 2", w, len(tr.Integration.Wavelength))
		}
		testutil.RequireNearlyEqual(t, "Err", r.Err, math.Sqrt(2)*0.01, tolerance)
	}

	// Inside the uniform dip the two-point trapezoid is exact.
	r := Measure(s, linelist.Line{
		Integration: linelist.Window{Lo: 5015.6, Hi: 5015.9},
		Continuum:   referenceLine.Continuum,
	})
	testutil.RequireNearlyEqual(t, "EW", r.EW, 0.1*0.3, tolerance)
}

func TestMeasure_ContinuumAllBad(t *testing.T) {
	b := dipSpectrum()
	b.Set(5000, 5010, 0).Set(5030, 5040, 5e-5)
	r := Measure(b.Build(), referenceLine)

	if !math.IsNaN(r.EW) {
		t.Errorf("EW = %g, want NaN", r.EW)
	}
	if !r.Flags.Has(FlagContinuumAllBad | FlagContinuumBadPixel) {
		t.Errorf("Flags = %v, want CONTINUUM_ALL_BAD|CONTINUUM_BAD_PIXEL", r.Flags)
	}
}

func TestMeasure_ContinuumBadPixelRecovered(t *testing.T) {
	b := dipSpectrum()
	b.Set(5001.5, 5001.5, 0)
	r := Measure(b.Build(), referenceLine)

	if r.Flags != FlagContinuumBadPixel {
		t.Errorf("Flags = %v, want CONTINUUM_BAD_PIXEL", r.Flags)
	}
	testutil.RequireNearlyEqual(t, "EW", r.EW, 0.975, tolerance)

	// Without exclusion the zero pixel drags the continuum down.
	r = Measure(b.Build(), referenceLine, WithBadPixelExclusion(false), WithSigmaClip(false))
	if r.Flags.Has(FlagContinuumBadPixel) {
		t.Errorf("exclusion disabled but flag set: %v", r.Flags)
	}
	if math.Abs(r.EW-0.975) < 1e-3 {
		t.Errorf("EW = %g, expected bias from the bad pixel", r.EW)
	}
}

func TestMeasure_ContinuumAllClipped(t *testing.T) {
	s := dipSpectrum().Noise(3, 0.01).Build()
	r := Measure(s, referenceLine, WithSigma(1e-12))

	if !math.IsNaN(r.EW) || !r.Flags.Has(FlagContinuumAllClipped) {
		t.Errorf("got EW %g flags %v, want NaN with CONTINUUM_ALL_CLIPPED", r.EW, r.Flags)
	}
	if !math.IsNaN(r.Err) {
		t.Errorf("Err = %g, want NaN", r.Err)
	}
}

func TestMeasure_IntegrationBadPixel(t *testing.T) {
	b := dipSpectrum()
	b.Set(5020.5, 5020.5, 0)
	r := Measure(b.Build(), referenceLine)

	if r.Flags != FlagIntegrationBadPixel {
		t.Errorf("Flags = %v, want INTEGRATION_BAD_PIXEL", r.Flags)
	}
	if math.IsNaN(r.EW) || r.EW <= 0.975 {
		t.Errorf("EW = %g, want finite and deeper than 0.975", r.EW)
	}
}

func TestMeasure_OutOfRange(t *testing.T) {
	line := linelist.Line{
		Integration: linelist.Window{Lo: 5045, Hi: 5060},
		Continuum:   referenceLine.Continuum,
	}
	r := Measure(dipSpectrum().Build(), line)

	if !math.IsNaN(r.EW) || !math.IsNaN(r.Err) || !r.Flags.Has(FlagIntegrationOutOfRange) {
		t.Errorf("got %+v, want NaN with INTEGRATION_OUT_OF_RANGE", r)
	}
}

func TestMeasure_ContinuumNonPositive(t *testing.T) {
	// Falls by 0.05 per Angstrom from 1 at 5000, crossing zero at 5020.
	s := testutil.NewBuilder(4990.5, 1, 60).Linear(-0.05, 251).Error(0.01).Build()

	line := linelist.Line{
		Integration: linelist.Window{Lo: 5015, Hi: 5025},
		Continuum:   []linelist.Window{{Lo: 5000, Hi: 5010}},
	}

	r, tr := MeasureTrace(s, line, WithSigmaClip(false))
	if !math.IsNaN(r.EW) || !math.IsNaN(r.Err) || !r.Flags.Has(FlagContinuumNonPositive) {
		t.Errorf("got %+v, want NaN with CONTINUUM_NON_POSITIVE", r)
	}

	if n := len(tr.Integration.Continuum); n == 0 || tr.Integration.Continuum[n-1] >= 0 {
		t.Errorf("trace continuum %v, want it to end below zero", tr.Integration.Continuum)
	}

	// The same slope fitted on a window that keeps it positive still works.
	line.Integration = linelist.Window{Lo: 5011, Hi: 5015}
	if r := Measure(s, line, WithSigmaClip(false)); r.Flags.Failed() {
		t.Errorf("positive continuum flagged %v", r.Flags)
	}
}

func TestMeasure_ErrorChannel(t *testing.T) {
	noErr := testutil.NewBuilder(4990.5, 1, 60).Scale(5015, 5025, 0.9).Build()

	r := Measure(noErr, referenceLine)
	if !math.IsNaN(r.Err) {
		t.Errorf("missing error channel: Err = %g, want NaN", r.Err)
	}
	testutil.RequireNearlyEqual(t, "EW", r.EW, 0.975, tolerance)

	r = Measure(noErr, referenceLine, WithErrorPropagation(false))
	if r.Err != 0 {
		t.Errorf("propagation disabled: Err = %g, want 0", r.Err)
	}
}

func TestMeasure_OverlappingWindowsCountedOnce(t *testing.T) {
	line := referenceLine
	line.Continuum = []linelist.Window{{Lo: 5000, Hi: 5010}, {Lo: 5005, Hi: 5012}, {Lo: 5030, Hi: 5040}}

	_, tr := MeasureTrace(dipSpectrum().Build(), line)
	for i := 1; i < len(tr.Fit.Wavelength); i++ {
		if tr.Fit.Wavelength[i] <= tr.Fit.Wavelength[i-1] {
			t.Fatalf("continuum samples not strictly ascending at %d", i)
		}
	}
	if got := len(tr.Fit.Wavelength); got != 22 {
		t.Errorf("continuum samples: got %d, want 22", got)
	}
}

func TestMeasureTrace_ClipPartition(t *testing.T) {
	b := dipSpectrum()
	b.Set(5005.5, 5005.5, 3)
	r, tr := MeasureTrace(b.Build(), referenceLine)

	if tr.Result != r {
		t.Errorf("trace result %+v differs from %+v", tr.Result, r)
	}

	clipped := 0
	for k, kept := range tr.Fit.Kept {
		if !kept {
			clipped++
			if tr.Fit.Wavelength[k] != 5005.5 {
				t.Errorf("clipped sample at %g, want 5005.5", tr.Fit.Wavelength[k])
			}
		}
	}
	if clipped != 1 {
		t.Errorf("clipped %d samples, want 1", clipped)
	}
	if tr.Fit.Initial == tr.Fit.Continuum {
		t.Errorf("refit did not change the continuum")
	}

	n := len(tr.Integration.Wavelength)
	if n != 12 || len(tr.Integration.Normalized) != n || len(tr.Integration.Continuum) != n {
		t.Errorf("integration arrays misaligned: %d", n)
	}
	if tr.Integration.Wavelength[0] != 5015 || tr.Integration.Wavelength[n-1] != 5025 {
		t.Errorf("augmented sequence must start and end at the window edges")
	}
}

func TestMeasureList_Order(t *testing.T) {
	list, err := linelist.New([]linelist.Line{
		{Label: "deep", Integration: linelist.Window{Lo: 5015, Hi: 5025}, Continuum: referenceLine.Continuum},
		{Label: "bad", Integration: linelist.Window{Lo: 5015, Hi: 5025}, Continuum: []linelist.Window{{Lo: 6000, Hi: 6010}}},
		{Label: "none", Integration: linelist.Window{Lo: 5041, Hi: 5045}, Continuum: referenceLine.Continuum},
	})
	if err != nil {
		t.Fatal(err)
	}

	res := MeasureList(dipSpectrum().Build(), list)

	if len(res.Labels) != 3 || len(res.EW) != 3 || len(res.Err) != 3 || len(res.Flags) != 3 {
		t.Fatalf("result lengths do not match the list")
	}
	if res.Labels[0] != "deep" || res.Labels[1] != "bad" || res.Labels[2] != "none" {
		t.Errorf("labels out of order: %v", res.Labels)
	}
	testutil.RequireNearlyEqual(t, "deep", res.EW[0], 0.975, tolerance)
	if !math.IsNaN(res.EW[1]) || !res.Flags[1].Has(FlagContinuumAllBad) {
		t.Errorf("bad line: EW %g flags %v", res.EW[1], res.Flags[1])
	}
	testutil.RequireNearlyEqual(t, "none", res.EW[2], 0, tolerance)
}
