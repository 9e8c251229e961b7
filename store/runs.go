package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-ew/catalog"
	"github.com/cwbudde/algo-ew/linelist"
	"github.com/cwbudde/algo-ew/measure/batch"
	"github.com/cwbudde/algo-ew/measure/ew"
)

// ErrRunNotFound is returned by LoadRun for an unknown run id.
var ErrRunNotFound = errors.New("store: run not found")

// RunInfo describes a stored run.
type RunInfo struct {
	ID          string
	CreatedAt   time.Time
	LineList    string
	Catalog     string
	DataRelease int
	Config      string
	Rows        int
	Lines       int
}

// Run is a stored run with its line list and result matrices.
type Run struct {
	RunInfo
	List   *linelist.List
	Result *batch.Result
}

// SaveRun stores a run in one transaction and returns its id. Run ids
// are time-ordered UUIDs. info.ID, info.CreatedAt, info.Rows and
// info.Lines are filled in by SaveRun.
func (s *Store) SaveRun(ctx context.Context, info RunInfo, list *linelist.List, res *batch.Result) (string, error) {
	if list.Len() != len(res.Labels) {
		return "", fmt.Errorf("store: list has %d lines, result %d", list.Len(), len(res.Labels))
	}

	info.ID = uuid.Must(uuid.NewV7()).String()
	info.CreatedAt = time.Now().UTC()
	info.Rows = res.Len()
	info.Lines = list.Len()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, linelist, catalog, data_release, config, row_count, line_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.CreatedAt.Format(time.RFC3339Nano), info.LineList, info.Catalog,
		info.DataRelease, info.Config, info.Rows, info.Lines)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, line := range list.Lines() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO lines (run_id, idx, label, lo, hi, continuum) VALUES (?, ?, ?, ?, ?, ?)`,
			info.ID, i, line.Label, line.Integration.Lo, line.Integration.Hi,
			linelist.FormatWindows(line.Continuum))
		if err != nil {
			return "", fmt.Errorf("insert line %d: %w", i, err)
		}
	}

	targetStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO targets (run_id, row, location, object, status, error) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare targets: %w", err)
	}
	defer targetStmt.Close()

	measStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO measurements (run_id, row, line, ew, err, flags) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare measurements: %w", err)
	}
	defer measStmt.Close()

	for i := range res.Len() {
		msg := ""
		if res.Errors[i] != nil {
			msg = res.Errors[i].Error()
		}

		id := res.IDs[i]
		if _, err := targetStmt.ExecContext(ctx, info.ID, i, id.Location, id.Object, res.Status[i].String(), msg); err != nil {
			return "", fmt.Errorf("insert target %d: %w", i, err)
		}

		for j := range res.Labels {
			_, err := measStmt.ExecContext(ctx, info.ID, i, j,
				nullable(res.EW[i][j]), nullable(res.Err[i][j]), int(res.Flags[i][j]))
			if err != nil {
				return "", fmt.Errorf("insert measurement %d/%d: %w", i, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	return info.ID, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, linelist, catalog, data_release, config, row_count, line_count
		 FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo

	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, info)
	}

	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(r scanner) (RunInfo, error) {
	var (
		info    RunInfo
		created string
	)

	err := r.Scan(&info.ID, &created, &info.LineList, &info.Catalog, &info.DataRelease, &info.Config, &info.Rows, &info.Lines)
	if err != nil {
		return RunInfo{}, err
	}

	info.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return RunInfo{}, fmt.Errorf("run %s: bad created_at %q: %w", info.ID, created, err)
	}

	return info, nil
}

// LoadRun reads a run back. Stored row errors come back as plain error
// values carrying the original message.
func (s *Store) LoadRun(ctx context.Context, id string) (*Run, error) {
	info, err := scanInfo(s.db.QueryRowContext(ctx,
		`SELECT id, created_at, linelist, catalog, data_release, config, row_count, line_count
		 FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	list, err := s.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &batch.Result{
		Labels: list.Labels(),
		IDs:    make([]catalog.ID, info.Rows),
		EW:     make([][]float64, info.Rows),
		Err:    make([][]float64, info.Rows),
		Flags:  make([][]ew.Flags, info.Rows),
		Status: make([]batch.Status, info.Rows),
		Errors: make([]error, info.Rows),
	}

	for i := range info.Rows {
		res.EW[i] = make([]float64, info.Lines)
		res.Err[i] = make([]float64, info.Lines)
		res.Flags[i] = make([]ew.Flags, info.Lines)
	}

	if err := s.loadTargets(ctx, id, res); err != nil {
		return nil, err
	}

	if err := s.loadMeasurements(ctx, id, res); err != nil {
		return nil, err
	}

	return &Run{RunInfo: info, List: list, Result: res}, nil
}

// DeleteRun removes a run and everything stored with it.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	r, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}

	if n, _ := r.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}

	return nil
}

func (s *Store) loadLines(ctx context.Context, id string) (*linelist.List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, lo, hi, continuum FROM lines WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()

	var lines []linelist.Line

	for rows.Next() {
		var (
			line linelist.Line
			cont string
		)

		if err := rows.Scan(&line.Label, &line.Integration.Lo, &line.Integration.Hi, &cont); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}

		line.Continuum, err = linelist.ParseWindows(cont)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", line.Label, err)
		}

		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return linelist.New(lines)
}

func (s *Store) loadTargets(ctx context.Context, id string, res *batch.Result) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row, location, object, status, error FROM targets WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("query targets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			i           int
			status, msg string
			loc, object string
		)

		if err := rows.Scan(&i, &loc, &object, &status, &msg); err != nil {
			return fmt.Errorf("scan target: %w", err)
		}

		if i < 0 || i >= res.Len() {
			return fmt.Errorf("store: target row %d out of range", i)
		}

		res.IDs[i] = catalog.ID{Location: loc, Object: object}
		res.Status[i] = batch.ParseStatus(status)

		if msg != "" {
			res.Errors[i] = errors.New(msg)
		}
	}

	return rows.Err()
}

func (s *Store) loadMeasurements(ctx context.Context, id string, res *batch.Result) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row, line, ew, err, flags FROM measurements WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			i, j  int
			w, e  sql.NullFloat64
			flags int
		)

		if err := rows.Scan(&i, &j, &w, &e, &flags); err != nil {
			return fmt.Errorf("scan measurement: %w", err)
		}

		if i < 0 || i >= res.Len() || j < 0 || j >= len(res.Labels) {
			return fmt.Errorf("store: measurement %d/%d out of range", i, j)
		}

		res.EW[i][j] = fromNullable(w)
		res.Err[i][j] = fromNullable(e)
		res.Flags[i][j] = ew.Flags(flags)
	}

	return rows.Err()
}

// SQLite has no NaN; it is stored as NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}

	return v.Float64
}
