package catalog

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaLocationKey(t *testing.T) {
	tests := []struct {
		dr   int
		want string
	}{
		{12, KeyLocationID},
		{13, KeyLocationID},
		{14, KeyField},
		{16, KeyField},
		{17, KeyField},
	}

	for _, tc := range tests {
		if got := NewSchema(tc.dr).LocationKey(); got != tc.want {
			t.Errorf("DR%d: LocationKey=%q, want %q", tc.dr, got, tc.want)
		}
	}

	if got := NewSchema(0).DataRelease; got != DefaultDataRelease {
		t.Errorf("NewSchema(0).DataRelease=%d, want %d", got, DefaultDataRelease)
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		err  bool
	}{
		{"string", "2M00000002+7417074", "2M00000002+7417074", false},
		{"padded", "  120+12 \x00\x00", "120+12", false},
		{"bytes", []byte("N6791"), "N6791", false},
		{"int", 4102, "4102", false},
		{"int64", int64(4102), "4102", false},
		{"invalid utf8", []byte{0xff, 0xfe}, "", true},
		{"float", 1.5, "", true},
		{"nil", nil, "", true},
		{"blank", "   ", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Text(tc.in)
			if tc.err {
				if !errors.Is(err, ErrBadIdentifier) {
					t.Fatalf("err=%v, want ErrBadIdentifier", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIdentify(t *testing.T) {
	s := NewSchema(16)

	id, err := s.Identify(0, Row{KeyField: "N6791", KeyObject: []byte("2M19203+3746")})
	require.NoError(t, err)
	assert.Equal(t, ID{Location: "N6791", Object: "2M19203+3746"}, id)
	assert.Equal(t, "N6791/2M19203+3746", id.String())

	_, err = s.Identify(3, Row{KeyField: 3.5, KeyObject: "x"})

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 3, fe.Row)
	assert.Equal(t, KeyField, fe.Key)
	assert.ErrorIs(t, err, ErrBadIdentifier)

	_, err = s.Identify(1, Row{KeyObject: "x"})
	assert.ErrorIs(t, err, ErrMissingKey)

	legacy := NewSchema(12)
	id, err = legacy.Identify(0, Row{KeyLocationID: int64(4102), KeyObject: "a"})
	require.NoError(t, err)
	assert.Equal(t, "4102", id.Location)
}

func TestValidate(t *testing.T) {
	cat := &Catalog{Columns: []string{KeyField, KeyObject}}
	assert.NoError(t, NewSchema(16).Validate(cat))
	assert.ErrorIs(t, NewSchema(12).Validate(cat), ErrMissingKey)
}

func TestReadCSV(t *testing.T) {
	in := "# allStar subset\nFIELD,APOGEE_ID,TEFF\nN6791, 2M1,4500\nM67,2M2,5000\n"

	cat, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	want := &Catalog{
		Columns: []string{"FIELD", "APOGEE_ID", "TEFF"},
		Rows: []Row{
			{"FIELD": "N6791", "APOGEE_ID": "2M1", "TEFF": "4500"},
			{"FIELD": "M67", "APOGEE_ID": "2M2", "TEFF": "5000"},
		},
	}

	if diff := cmp.Diff(want, cat); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}

	_, err = ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = ReadCSV(strings.NewReader("FIELD,APOGEE_ID\nonly-one\n"))
	assert.Error(t, err)
}

func TestReadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allstar.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE allstar (LOCATION_ID INTEGER, FIELD TEXT, APOGEE_ID BLOB)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO allstar VALUES (4102, 'N6791', ?), (4103, 'M67', ?)`,
		[]byte("2M1"), []byte{0xff})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cat, err := Load(context.Background(), path, "", "allstar")
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())
	assert.Equal(t, []string{"LOCATION_ID", "FIELD", "APOGEE_ID"}, cat.Columns)

	s := NewSchema(12)
	id, err := s.Identify(0, cat.Rows[0])
	require.NoError(t, err)
	assert.Equal(t, ID{Location: "4102", Object: "2M1"}, id)

	_, err = s.Identify(1, cat.Rows[1])
	assert.ErrorIs(t, err, ErrBadIdentifier)

	_, err = Load(context.Background(), path, "sqlite", "allstar; DROP TABLE allstar")
	assert.Error(t, err)
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.csv")
	require.NoError(t, os.WriteFile(path, []byte("FIELD,APOGEE_ID\nf,o\n"), 0o600))

	cat, err := Load(context.Background(), path, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())

	_, err = Load(context.Background(), path, "parquet", "")
	assert.Error(t, err)

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.db"), "", "t")
	assert.Error(t, err)
}
