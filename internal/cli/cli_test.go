package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-ew/internal/testutil"
	"github.com/cwbudde/algo-ew/provider"
)

const testLines = `Label i_b    i_r    cont
dip   15015  15025  [(15000, 15010), (15030, 15040)]
far   15015  15025  [(16000, 16010)]
`

type fixture struct {
	dir      string
	lines    string
	spectrum string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	f := fixture{
		dir:      dir,
		lines:    filepath.Join(dir, "lines.txt"),
		spectrum: filepath.Join(dir, "star.txt"),
	}

	require.NoError(t, os.WriteFile(f.lines, []byte(testLines), 0o600))
	writeSpectrum(t, f.spectrum, 0.9)

	return f
}

func writeSpectrum(t *testing.T, path string, scale float64) {
	t.Helper()

	s := testutil.NewBuilder(14990.5, 1, 60).Scale(15015, 15025, scale).Error(0.01).Build()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, provider.EncodeText(f, s))
	require.NoError(t, f.Close())
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

func TestLinesCommand(t *testing.T) {
	f := newFixture(t)

	out, _, err := run(t, "lines", f.lines)
	require.NoError(t, err)
	assert.Contains(t, out, "dip")
	assert.Contains(t, out, "[(16000, 16010)]")

	bad := filepath.Join(f.dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("Label i_b i_r cont\nx 2 1 [(0,1)]\n"), 0o600))

	_, _, err = run(t, "lines", bad)
	assert.Error(t, err)
}

func TestMeasureCommand(t *testing.T) {
	f := newFixture(t)

	out, _, err := run(t, "--format", "csv", "measure", f.spectrum, "--linelist", f.lines)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "dip", records[1][0])
	ew, err := strconv.ParseFloat(records[1][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.975, ew, 1e-9)

	assert.Equal(t, "far", records[2][0])
	assert.Equal(t, "NaN", records[2][1])
	assert.Equal(t, "CONTINUUM_ALL_BAD", records[2][3])

	out, _, err = run(t, "--format", "csv", "measure", f.spectrum, "-l", f.lines, "--no-error")
	require.NoError(t, err)
	records, err = csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "0", records[1][2])
}

func TestMeasureCommandErrors(t *testing.T) {
	f := newFixture(t)

	_, _, err := run(t, "measure", f.spectrum)
	assert.ErrorContains(t, err, "no line list")

	_, _, err = run(t, "measure", filepath.Join(f.dir, "nope.txt"), "-l", f.lines)
	assert.Error(t, err)

	_, _, err = run(t, "--format", "html", "measure", f.spectrum, "-l", f.lines)
	assert.Error(t, err)
}

func TestTraceCommand(t *testing.T) {
	f := newFixture(t)

	out, _, err := run(t, "trace", f.spectrum, "dip", "-l", f.lines)
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "continuum samples")
	assert.Contains(t, out, "15024.5")

	_, _, err = run(t, "trace", f.spectrum, "missing", "-l", f.lines)
	assert.ErrorContains(t, err, "not in list")
}

func TestCatalogCommandWithConfig(t *testing.T) {
	f := newFixture(t)

	writeSpectrum(t, filepath.Join(f.dir, "spectra", "N6791", "a.txt"), 0.9)
	writeSpectrum(t, filepath.Join(f.dir, "spectra", "N6791", "b.txt"), 0.8)

	catPath := filepath.Join(f.dir, "allstar.csv")
	require.NoError(t, os.WriteFile(catPath, []byte("FIELD,APOGEE_ID\nN6791,a\nN6791,missing\nN6791,b\n"), 0o600))

	cfgPath := filepath.Join(f.dir, "run.yaml")
	cfg := `linelist: lines.txt
catalog:
  path: allstar.csv
provider:
  kind: dir
  root: spectra
  key_template: "{location}/{object}.txt"
  codec: text
workers: 2
output:
  db: runs.db
  csv: out.csv
  format: csv
log:
  level: info
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	out, logs, err := run(t, "--config", cfgPath, "catalog")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"0", "N6791", "a", "ok"}, records[1][:4])
	assert.Equal(t, "unavailable", records[2][3])
	assert.Equal(t, "NaN", records[2][4])
	assert.Equal(t, "ok", records[3][3])

	assert.Contains(t, logs, "run saved")
	assert.Contains(t, logs, "component=batch")

	written, err := os.ReadFile(filepath.Join(f.dir, "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, out, string(written))

	out, _, err = run(t, "--config", cfgPath, "runs")
	require.NoError(t, err)
	runs, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	shown, _, err := run(t, "--config", cfgPath, "runs", runs[1][0])
	require.NoError(t, err)
	assert.Equal(t, string(written), shown)
}

func TestCatalogCommandNeedsCatalog(t *testing.T) {
	f := newFixture(t)

	_, _, err := run(t, "catalog", "-l", f.lines)
	assert.ErrorContains(t, err, "no catalog")
}

func TestGridCommand(t *testing.T) {
	out, _, err := run(t, "--format", "csv", "grid", "--pixels", "3", "--log-start", "4", "--log-step", "0.5")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"0", "10000"}, records[1])
	assert.Equal(t, []string{"2", "100000"}, records[3])

	_, _, err = run(t, "grid", "--pixels", "0")
	assert.Error(t, err)
}
