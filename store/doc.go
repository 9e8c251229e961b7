// Package store persists batch measurement runs in SQLite.
//
// A run records its provenance (line list, catalog, data release and the
// YAML configuration it ran with), the line list itself and the N x L
// EW, error and flag matrices with per-row status. NaN measurements are
// stored as NULL.
package store
