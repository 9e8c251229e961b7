package catalog

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrNoHeader is returned by ReadCSV for an empty input.
var ErrNoHeader = errors.New("catalog: csv has no header row")

// ReadCSV reads a catalog whose first record names the columns. Values
// are kept as strings.
func ReadCSV(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}

	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cat := &Catalog{Columns: header}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(cat.Rows), err)
		}

		row := make(Row, len(header))
		for i, col := range header {
			row[col] = rec[i]
		}

		cat.Rows = append(cat.Rows, row)
	}

	return cat, nil
}

// ReadSQLite reads every row of table. Column values keep the types the
// driver reports, so TEXT arrives as string, BLOB as []byte and INTEGER
// as int64.
func ReadSQLite(ctx context.Context, db *sql.DB, table string) (*Catalog, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("catalog: invalid table name %q", table)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s" ORDER BY rowid`, table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", table, err)
	}

	cat := &Catalog{Columns: cols}

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))

		for i := range vals {
			ptrs[i] = &vals[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", table, len(cat.Rows), err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = vals[i]
		}

		cat.Rows = append(cat.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return cat, nil
}

// Load reads a catalog file. format is "csv" or "sqlite"; empty selects
// by extension (.db, .sqlite, .sqlite3 are SQLite, anything else CSV).
// table names the SQLite table to read.
func Load(ctx context.Context, path, format, table string) (*Catalog, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".db", ".sqlite", ".sqlite3":
			format = "sqlite"
		default:
			format = "csv"
		}
	}

	switch format {
	case "csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		defer f.Close()

		return ReadCSV(f)
	case "sqlite":
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}

		db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		defer db.Close()

		return ReadSQLite(ctx, db, table)
	default:
		return nil, fmt.Errorf("catalog: unknown format %q", format)
	}
}
