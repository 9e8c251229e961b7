// Package batch measures a line list over every spectrum of a catalog.
//
// Rows are processed by a bounded worker pool. Each worker writes only
// its own pre-sized row of the result matrices, so no locking is needed
// and the output order always matches the catalog order. A row whose
// identifiers are malformed or whose spectrum is unavailable stays NaN
// and is marked with a [Status]; the run carries on.
package batch
