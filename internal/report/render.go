package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cwbudde/algo-ew/linelist"
	"github.com/cwbudde/algo-ew/measure/batch"
	"github.com/cwbudde/algo-ew/measure/ew"
	"github.com/cwbudde/algo-ew/store"
)

// Lines renders a line list with one row per line. Lines whose
// continuum overlaps their integration window are marked.
func Lines(w io.Writer, m Mode, list *linelist.List) error {
	overlap := make(map[int]bool)
	for _, i := range list.Overlapping() {
		overlap[i] = true
	}

	t := NewTable(m)
	t.Header("Label", "i_b", "i_r", "cont", "overlap")
	t.AlignRight(2, 3)

	for i, line := range list.Lines() {
		mark := ""
		if overlap[i] {
			mark = "yes"
		}

		t.Row(line.Label, Float(CSV, line.Integration.Lo), Float(CSV, line.Integration.Hi),
			linelist.FormatWindows(line.Continuum), mark)
	}

	_, err := t.WriteTo(w)

	return err
}

// Measurements renders a single spectrum's results.
func Measurements(w io.Writer, m Mode, res ew.ListResult) error {
	t := NewTable(m)
	t.Header("Label", "EW", "Err", "Flags")
	t.AlignRight(2, 3)

	for i, label := range res.Labels {
		t.Row(label, Float(m, res.EW[i]), Float(m, res.Err[i]), res.Flags[i].String())
	}

	_, err := t.WriteTo(w)

	return err
}

// Matrix renders a catalog result: one row per catalog row with the EW,
// error and flags of every line.
func Matrix(w io.Writer, m Mode, res *batch.Result) error {
	header := []string{"row", "location", "object", "status"}
	for _, l := range res.Labels {
		header = append(header, l, l+"_err", l+"_flags")
	}

	t := NewTable(m)
	t.Header(header...)

	for i := range res.Len() {
		row := []any{i, res.IDs[i].Location, res.IDs[i].Object, res.Status[i].String()}
		for j := range res.Labels {
			row = append(row, Float(m, res.EW[i][j]), Float(m, res.Err[i][j]), res.Flags[i][j].String())
		}

		t.Row(row...)
	}

	_, err := t.WriteTo(w)

	return err
}

// Trace renders the intermediate data of one line measurement: the
// continuum samples with their clip state, then the integration
// sequence. CSV output omits titles; sections are separated by a blank
// line.
func Trace(w io.Writer, m Mode, tr ew.Trace) error {
	fit := tr.Fit
	res := tr.Result

	summary := NewTable(m)
	summary.Title(fmt.Sprintf("%s %v", tr.Label, tr.Window))
	summary.Header("EW", "Err", "Flags", "slope", "intercept", "initial_slope", "initial_intercept", "std")
	summary.Row(Float(m, res.EW), Float(m, res.Err), res.Flags.String(),
		Float(CSV, fit.Continuum.Slope), Float(CSV, fit.Continuum.Intercept),
		Float(CSV, fit.Initial.Slope), Float(CSV, fit.Initial.Intercept), Float(CSV, fit.Std))

	if _, err := summary.WriteTo(w); err != nil {
		return err
	}

	cont := NewTable(m)
	cont.Title("continuum samples")
	cont.Header("wavelength", "flux", "good", "kept", "residual")

	for i, x := range fit.Wavelength {
		cont.Row(Float(CSV, x), Float(CSV, fit.Flux[i]), yes(at(fit.Good, i)), yes(at(fit.Kept, i)), Float(CSV, atf(fit.Residual, i)))
	}

	if _, err := cont.WriteTo(w); err != nil {
		return err
	}

	integ := tr.Integration
	it := NewTable(m)
	it.Title("integration")
	it.Header("wavelength", "flux", "continuum", "normalized")

	for i, x := range integ.Wavelength {
		it.Row(Float(CSV, x), Float(CSV, integ.Flux[i]), Float(CSV, integ.Continuum[i]), Float(CSV, integ.Normalized[i]))
	}

	_, err := it.WriteTo(w)

	return err
}

// Runs renders stored run metadata.
func Runs(w io.Writer, m Mode, runs []store.RunInfo) error {
	t := NewTable(m)
	t.Header("id", "created", "linelist", "catalog", "DR", "rows", "lines")
	t.AlignRight(5, 6, 7)

	for _, r := range runs {
		t.Row(r.ID, r.CreatedAt.Format(time.RFC3339), r.LineList, r.Catalog,
			strconv.Itoa(r.DataRelease), strconv.Itoa(r.Rows), strconv.Itoa(r.Lines))
	}

	_, err := t.WriteTo(w)

	return err
}

// Grid renders a wavelength grid, one pixel per row.
func Grid(w io.Writer, m Mode, wl []float64) error {
	t := NewTable(m)
	t.Header("pixel", "wavelength")
	t.AlignRight(1, 2)

	for i, x := range wl {
		t.Row(i, Float(CSV, x))
	}

	_, err := t.WriteTo(w)

	return err
}

func at(b []bool, i int) bool { return i < len(b) && b[i] }

func atf(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}

	return 0
}

func yes(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
