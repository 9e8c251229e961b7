// Package catalog reads target catalogs and normalizes the identifiers
// that locate each spectrum in the archive.
//
// A [Catalog] is an ordered list of [Row] values from CSV ([ReadCSV]) or
// SQLite ([ReadSQLite]). A [Schema] picks the location column for a data
// release and [Schema.Identify] turns a row into an [ID]; rows whose
// identifiers are not decodable text yield a [*FormatError].
package catalog
