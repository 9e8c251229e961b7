package batch

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-ew/catalog"
	"github.com/cwbudde/algo-ew/internal/logging"
	"github.com/cwbudde/algo-ew/linelist"
	"github.com/cwbudde/algo-ew/measure/ew"
	"github.com/cwbudde/algo-ew/provider"
)

// Status classifies how a catalog row was processed.
type Status uint8

const (
	// StatusPending means the row was never processed, which only
	// happens in the partial result of a cancelled run.
	StatusPending Status = iota
	// StatusOK means the spectrum was fetched and every line measured.
	// Individual lines may still carry failure flags.
	StatusOK
	// StatusUnavailable means the provider could not deliver the spectrum.
	StatusUnavailable
	// StatusFormatError means the row identifiers could not be decoded.
	StatusFormatError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusFormatError:
		return "format_error"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of Status.String; unknown names map to
// StatusUnavailable.
func ParseStatus(s string) Status {
	switch s {
	case "pending":
		return StatusPending
	case "ok":
		return StatusOK
	case "format_error":
		return StatusFormatError
	default:
		return StatusUnavailable
	}
}

// Result holds the N x L matrices of a catalog run. Rows follow catalog
// order, columns follow line-list order. Rows that could not be measured
// are all NaN and carry the cause in Errors.
type Result struct {
	Labels []string
	IDs    []catalog.ID
	EW     [][]float64
	Err    [][]float64
	Flags  [][]ew.Flags
	Status []Status
	Errors []error
}

func newResult(rows int, labels []string) *Result {
	r := &Result{
		Labels: labels,
		IDs:    make([]catalog.ID, rows),
		EW:     make([][]float64, rows),
		Err:    make([][]float64, rows),
		Flags:  make([][]ew.Flags, rows),
		Status: make([]Status, rows),
		Errors: make([]error, rows),
	}

	for i := range rows {
		r.EW[i] = nanRow(len(labels))
		r.Err[i] = nanRow(len(labels))
		r.Flags[i] = make([]ew.Flags, len(labels))
	}

	return r
}

func nanRow(n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = math.NaN()
	}

	return row
}

// Len returns the number of rows.
func (r *Result) Len() int { return len(r.Status) }

// Count returns the number of rows with status s.
func (r *Result) Count(s Status) int {
	n := 0

	for _, st := range r.Status {
		if st == s {
			n++
		}
	}

	return n
}

// Measurer runs a line list over every spectrum of a catalog.
type Measurer struct {
	list     *linelist.List
	provider provider.Provider
	ew       *ew.Measurer
	schema   catalog.Schema
	workers  int
	log      *slog.Logger
	progress int
}

// Option configures a Measurer.
type Option func(*Measurer)

// WithWorkers bounds the number of spectra processed concurrently.
// Non-positive values select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(m *Measurer) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithSchema sets the identifier schema.
func WithSchema(s catalog.Schema) Option {
	return func(m *Measurer) { m.schema = s }
}

// WithMeasureOptions configures the per-line measurement.
func WithMeasureOptions(opts ...ew.Option) Option {
	return func(m *Measurer) { m.ew = ew.NewMeasurer(opts...) }
}

// WithLogger sets the logger for diagnostics and progress.
func WithLogger(l *slog.Logger) Option {
	return func(m *Measurer) {
		if l != nil {
			m.log = l
		}
	}
}

// WithProgressEvery logs a progress record every n finished rows; zero
// disables progress records.
func WithProgressEvery(n int) Option {
	return func(m *Measurer) {
		if n >= 0 {
			m.progress = n
		}
	}
}

// New returns a Measurer for list whose spectra come from p.
func New(list *linelist.List, p provider.Provider, opts ...Option) *Measurer {
	m := &Measurer{
		list:     list,
		provider: p,
		ew:       ew.NewMeasurer(),
		schema:   catalog.NewSchema(catalog.DefaultDataRelease),
		workers:  runtime.GOMAXPROCS(0),
		log:      logging.New("batch"),
		progress: 100,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Run measures every row of cat. Rows whose identifiers are malformed or
// whose spectrum cannot be fetched are left NaN and the run continues;
// only cancellation of ctx aborts it, in which case the partial result
// is returned along with the context error. Rows not reached before
// cancellation keep StatusPending and carry the context error.
func (m *Measurer) Run(ctx context.Context, cat *catalog.Catalog) (*Result, error) {
	res := newResult(cat.Len(), m.list.Labels())

	if err := m.schema.Validate(cat); err != nil {
		m.log.Warn("catalog lacks identifier columns; every row will fail", "error", err)
	}

	if overlaps := m.list.Overlapping(); len(overlaps) > 0 {
		m.log.Warn("continuum windows overlap integration windows", "lines", overlaps)
	}

	start := time.Now()

	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i, row := range cat.Rows {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if err := m.row(gctx, i, row, res); err != nil {
				return err
			}

			if k := done.Add(1); m.progress > 0 && k%int64(m.progress) == 0 {
				m.log.Info("progress", "done", k, "total", cat.Len())
			}

			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		for i, st := range res.Status {
			if st == StatusPending {
				res.Errors[i] = err
			}
		}

		m.log.Warn("catalog run cancelled", "done", done.Load(), "total", cat.Len(), "error", err)

		return res, err
	}

	m.log.Info("catalog measured",
		"rows", res.Len(),
		"lines", len(res.Labels),
		"ok", res.Count(StatusOK),
		"unavailable", res.Count(StatusUnavailable),
		"format_errors", res.Count(StatusFormatError),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return res, nil
}

// row fills row i of res. It returns an error only when ctx is done.
func (m *Measurer) row(ctx context.Context, i int, row catalog.Row, res *Result) error {
	id, err := m.schema.Identify(i, row)
	if err != nil {
		res.Status[i] = StatusFormatError
		res.Errors[i] = err
		m.log.Warn("skipping row", "row", i, "error", err)

		return nil
	}

	res.IDs[i] = id

	s, err := m.provider.Fetch(ctx, id)
	if err != nil {
		if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return ctx.Err()
		}

		res.Status[i] = StatusUnavailable
		res.Errors[i] = err

		if errors.Is(err, provider.ErrNotFound) {
			m.log.Warn("spectrum not found", "row", i, "id", id.String())
		} else {
			m.log.Error("fetch failed", "row", i, "id", id.String(), "error", err)
		}

		return nil
	}

	lr := m.ew.MeasureList(s, m.list)

	copy(res.EW[i], lr.EW)
	copy(res.Err[i], lr.Err)
	copy(res.Flags[i], lr.Flags)
	res.Status[i] = StatusOK

	for j, f := range lr.Flags {
		if f.Failed() {
			m.log.Debug("line failed", "row", i, "id", id.String(), "line", lr.Labels[j], "flags", f.String())
		}
	}

	return nil
}
