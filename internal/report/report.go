// Package report renders line lists, measurement matrices and traces as
// terminal tables, Markdown or CSV.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
	CSV                  // Comma-separated values with full float precision
)

// ParseMode maps "table", "markdown" and "csv" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "table", "ascii":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	case "csv":
		return CSV, nil
	default:
		return ASCII, fmt.Errorf("report: unknown format %q", s)
	}
}

// Table accumulates rows and renders them in its Mode.
type Table struct {
	w    table.Writer
	mode Mode
}

// NewTable returns an empty table for mode.
func NewTable(m Mode) *Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}

	return &Table{w: w, mode: m}
}

// Header sets the column headers.
func (t *Table) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}

	t.w.AppendHeader(row)
}

// Row appends a data row.
func (t *Table) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.w.AppendRow(row)
}

// AlignRight right-aligns the given 1-based columns.
func (t *Table) AlignRight(cols ...int) {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{Number: c, Align: text.AlignRight}
	}

	t.w.SetColumnConfigs(cfgs)
}

// Title sets a caption shown above ASCII and Markdown tables.
func (t *Table) Title(s string) {
	if t.mode != CSV {
		t.w.SetTitle(s)
	}
}

// String renders the table.
func (t *Table) String() string {
	switch t.mode {
	case Markdown:
		return t.w.RenderMarkdown()
	case CSV:
		return t.w.RenderCSV()
	default:
		return t.w.Render()
	}
}

// WriteTo renders the table to w followed by a newline.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.String()+"\n")
	return int64(n), err
}

// Float formats v for mode: full precision in CSV, four decimals
// otherwise. NaN renders as "NaN" in every mode.
func Float(m Mode, v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}

	if m == CSV {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	return strconv.FormatFloat(v, 'f', 4, 64)
}
