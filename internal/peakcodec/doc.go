// Package peakcodec converts peak arrays to the binary payload stored in the
// PeakData column.
//
// A blob starts with a fixed header
//
//	version(1) | compression(1) | column types(1 each) | count(uint32 LE)
//
// followed by the body: every column in declared order (m/z, [rt,]
// intensity), each value in its column's data type, little endian. For LZ4
// and Zstd the body is wrapped in a frame of uncompressed and stored lengths;
// a stored length of zero marks a body that did not shrink and is kept raw.
//
// Decoding checks the blob header against the array header persisted next to
// it and fails with ErrMismatch when they disagree.
package peakcodec
