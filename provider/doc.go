// Package provider fetches spectra by catalog identifier.
//
// [Dir] reads a local archive mirror and [ObjectStore] an S3 or MinIO
// bucket. Both build the file key from a template with {location} and
// {object} placeholders and decode it with a [Codec]: [FITS] for
// aspcapStar files or [Text] for column dumps. A missing spectrum is
// reported as [ErrNotFound].
package provider
