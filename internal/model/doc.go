// Package model defines the descriptive metadata of a spectral dataset.
//
// The root of a dataset is Model. Every entity that carries extensible
// metadata (the model itself, runs, samples, spectra, chromatograms, peak
// arrays, ...) embeds its own ParamContainer: two keyed parameter
// collections plus an ordered list of named descriptive blocks.
//
// # Parameters
//
// CvParam is identified by a controlled-vocabulary accession and UserParam by
// a free-text name. Identities are fixed at construction and must not be
// blank. Both carry an optional unit accession and an optional scalar value
// (see package scalar). Edits go through SetUnit and SetValue, which return
// the previous value and notify observers registered with OnChange before
// and after the change.
//
// # Keyed collections
//
// KeyedCollection keeps at most one item per key and iterates in insertion
// order. CvParam accessions compare case-insensitively, UserParam names and
// entity IDs compare exactly. Adding a duplicate fails with ErrDuplicateKey
// and leaves the collection untouched.
package model
