package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Column keys of APOGEE allStar-style catalogs.
const (
	KeyLocationID = "LOCATION_ID"
	KeyField      = "FIELD"
	KeyObject     = "APOGEE_ID"
)

// DefaultDataRelease is the data release assumed when none is configured.
const DefaultDataRelease = 16

// lastLocationRelease is the last data release that keyed spectra by
// numeric LOCATION_ID instead of FIELD.
const lastLocationRelease = 13

// ErrMissingKey is wrapped by FormatError when a row lacks an identifier column.
var ErrMissingKey = errors.New("catalog: missing identifier column")

// ErrBadIdentifier is wrapped by FormatError for identifiers that are
// neither text nor decodable bytes.
var ErrBadIdentifier = errors.New("catalog: undecodable identifier")

// Row maps column names to raw values as delivered by a reader. Values
// may be string, []byte or integer typed.
type Row map[string]any

// Catalog is an ordered list of rows sharing a set of columns.
type Catalog struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (c *Catalog) Len() int { return len(c.Rows) }

// HasColumn reports whether name is one of the catalog columns.
func (c *Catalog) HasColumn(name string) bool {
	for _, col := range c.Columns {
		if col == name {
			return true
		}
	}

	return false
}

// ID identifies one spectrum in the archive: the location (field or
// numeric location id, depending on the data release) and the object.
type ID struct {
	Location string
	Object   string
}

func (id ID) String() string { return id.Location + "/" + id.Object }

// FormatError reports a row whose identifier cannot be normalized to text.
type FormatError struct {
	Row   int
	Key   string
	Value any
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("catalog row %d: %s=%#v: %v", e.Row, e.Key, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Schema selects the identifier columns for a data release.
type Schema struct {
	DataRelease int
}

// NewSchema returns the schema for dr; non-positive values fall back to
// DefaultDataRelease.
func NewSchema(dr int) Schema {
	if dr <= 0 {
		dr = DefaultDataRelease
	}

	return Schema{DataRelease: dr}
}

// LocationKey is LOCATION_ID up to DR13 and FIELD afterwards.
func (s Schema) LocationKey() string {
	if s.DataRelease <= lastLocationRelease {
		return KeyLocationID
	}

	return KeyField
}

// ObjectKey is the object identifier column.
func (s Schema) ObjectKey() string { return KeyObject }

// Validate checks that c carries the columns this schema reads.
func (s Schema) Validate(c *Catalog) error {
	for _, key := range []string{s.LocationKey(), s.ObjectKey()} {
		if !c.HasColumn(key) {
			return fmt.Errorf("%w: %s (data release %d)", ErrMissingKey, key, s.DataRelease)
		}
	}

	return nil
}

// Identify normalizes the identifier columns of row i to text.
func (s Schema) Identify(i int, r Row) (ID, error) {
	loc, err := field(i, r, s.LocationKey())
	if err != nil {
		return ID{}, err
	}

	obj, err := field(i, r, s.ObjectKey())
	if err != nil {
		return ID{}, err
	}

	return ID{Location: loc, Object: obj}, nil
}

func field(i int, r Row, key string) (string, error) {
	v, ok := r[key]
	if !ok {
		return "", &FormatError{Row: i, Key: key, Err: ErrMissingKey}
	}

	s, err := Text(v)
	if err != nil {
		return "", &FormatError{Row: i, Key: key, Value: v, Err: err}
	}

	return s, nil
}

// Text converts a raw identifier value to trimmed text. Strings are used
// as is, byte slices must be valid UTF-8, integers are formatted in
// decimal (legacy numeric location ids). Anything else, and values that
// are empty after trimming FITS padding, is ErrBadIdentifier.
func Text(v any) (string, error) {
	var s string

	switch x := v.(type) {
	case string:
		s = x
	case []byte:
		if !utf8.Valid(x) {
			return "", fmt.Errorf("%w: invalid UTF-8 bytes", ErrBadIdentifier)
		}

		s = string(x)
	case int:
		s = strconv.Itoa(x)
	case int32:
		s = strconv.FormatInt(int64(x), 10)
	case int64:
		s = strconv.FormatInt(x, 10)
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrBadIdentifier, v)
	}

	s = strings.Trim(s, " \t\x00")
	if s == "" {
		return "", fmt.Errorf("%w: blank", ErrBadIdentifier)
	}

	return s, nil
}
