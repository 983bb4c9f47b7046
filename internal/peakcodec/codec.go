package peakcodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ZimmerD/MzLite/internal/model"
)

var (
	// ErrCorrupt is returned when a blob cannot be parsed.
	ErrCorrupt = errors.New("peakcodec: corrupt peak data")

	// ErrMismatch is returned when a blob header disagrees with the array
	// header it is decoded against.
	ErrMismatch = errors.New("peakcodec: peak data does not match array header")
)

// Version is the blob layout version written by this package.
const Version byte = 1

// Codec converts peak arrays to and from their binary form. The zero value
// is ready to use and safe for concurrent use.
type Codec struct{}

// Encode1D encodes the peaks of a spectrum array with its declared column
// types and compression.
func (Codec) Encode1D(a *model.Peak1DArray) ([]byte, error) {
	if a == nil {
		return nil, errors.New("peakcodec: nil peak array")
	}
	cols := []model.BinaryDataType{a.MzDataType, a.IntensityDataType}
	w, err := newWriter(a.CompressionType, cols, len(a.Peaks))
	if err != nil {
		return nil, err
	}
	for _, p := range a.Peaks {
		if err := w.put(p.Mz, p.Intensity); err != nil {
			return nil, err
		}
	}
	return w.finish()
}

// Decode1D fills a.Peaks from blob. The array's header fields must already
// hold the values stored next to the blob.
func (Codec) Decode1D(a *model.Peak1DArray, blob []byte) error {
	if a == nil {
		return errors.New("peakcodec: nil peak array")
	}
	cols := []model.BinaryDataType{a.MzDataType, a.IntensityDataType}
	r, err := newReader(blob, a.CompressionType, cols)
	if err != nil {
		return err
	}
	peaks := make([]model.Peak1D, r.count)
	var row [2]float64
	for i := range peaks {
		r.next(row[:])
		peaks[i] = model.Peak1D{Mz: row[0], Intensity: row[1]}
	}
	a.Peaks = peaks
	return nil
}

// Encode2D encodes the peaks of a chromatogram array.
func (Codec) Encode2D(a *model.Peak2DArray) ([]byte, error) {
	if a == nil {
		return nil, errors.New("peakcodec: nil peak array")
	}
	cols := []model.BinaryDataType{a.MzDataType, a.RtDataType, a.IntensityDataType}
	w, err := newWriter(a.CompressionType, cols, len(a.Peaks))
	if err != nil {
		return nil, err
	}
	for _, p := range a.Peaks {
		if err := w.put(p.Mz, p.Rt, p.Intensity); err != nil {
			return nil, err
		}
	}
	return w.finish()
}

// Decode2D fills a.Peaks from blob.
func (Codec) Decode2D(a *model.Peak2DArray, blob []byte) error {
	if a == nil {
		return errors.New("peakcodec: nil peak array")
	}
	cols := []model.BinaryDataType{a.MzDataType, a.RtDataType, a.IntensityDataType}
	r, err := newReader(blob, a.CompressionType, cols)
	if err != nil {
		return err
	}
	peaks := make([]model.Peak2D, r.count)
	var row [3]float64
	for i := range peaks {
		r.next(row[:])
		peaks[i] = model.Peak2D{Mz: row[0], Rt: row[1], Intensity: row[2]}
	}
	a.Peaks = peaks
	return nil
}

func rowSize(cols []model.BinaryDataType) int {
	n := 0
	for _, c := range cols {
		n += c.Size()
	}
	return n
}

// writer lays out the body column by column.
type writer struct {
	ct     model.CompressionType
	cols   []model.BinaryDataType
	count  int
	row    int
	body   []byte
	offset []int
}

func newWriter(ct model.CompressionType, cols []model.BinaryDataType, count int) (*writer, error) {
	if !ct.Valid() {
		return nil, fmt.Errorf("peakcodec: invalid compression %s", ct)
	}
	if uint64(count) > math.MaxUint32 {
		return nil, fmt.Errorf("peakcodec: %d peaks exceed the format limit", count)
	}
	offset := make([]int, len(cols))
	pos := 0
	for i, c := range cols {
		if !c.Valid() {
			return nil, fmt.Errorf("peakcodec: invalid data type %s", c)
		}
		offset[i] = pos
		pos += c.Size() * count
	}
	return &writer{ct: ct, cols: cols, count: count, body: make([]byte, pos), offset: offset}, nil
}

func (w *writer) put(values ...float64) error {
	for i, c := range w.cols {
		at := w.offset[i] + w.row*c.Size()
		if err := putValue(w.body[at:], c, values[i]); err != nil {
			return fmt.Errorf("peakcodec: peak %d: %w", w.row, err)
		}
	}
	w.row++
	return nil
}

func (w *writer) finish() ([]byte, error) {
	payload, err := compressBody(w.body, w.ct)
	if err != nil {
		return nil, fmt.Errorf("peakcodec: %w", err)
	}
	head := 2 + len(w.cols) + 4
	out := make([]byte, head, head+len(payload))
	out[0] = Version
	out[1] = byte(w.ct)
	for i, c := range w.cols {
		out[2+i] = byte(c)
	}
	binary.LittleEndian.PutUint32(out[2+len(w.cols):], uint32(w.count))
	return append(out, payload...), nil
}

func putValue(dst []byte, t model.BinaryDataType, v float64) error {
	switch t {
	case model.DataTypeFloat64:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
	case model.DataTypeFloat32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v)))
	case model.DataTypeInt64:
		r := math.Round(v)
		if math.IsNaN(r) || r < math.MinInt64 || r >= math.MaxInt64 {
			return fmt.Errorf("%v does not fit Int64", v)
		}
		binary.LittleEndian.PutUint64(dst, uint64(int64(r)))
	case model.DataTypeInt32:
		r := math.Round(v)
		if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
			return fmt.Errorf("%v does not fit Int32", v)
		}
		binary.LittleEndian.PutUint32(dst, uint32(int32(r)))
	}
	return nil
}

// reader walks a decoded body row by row.
type reader struct {
	cols   []model.BinaryDataType
	body   []byte
	offset []int
	count  int
	row    int
}

func newReader(blob []byte, ct model.CompressionType, cols []model.BinaryDataType) (*reader, error) {
	head := 2 + len(cols) + 4
	if len(blob) < head {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(blob))
	}
	if blob[0] != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, blob[0])
	}
	if got := model.CompressionType(blob[1]); got != ct {
		return nil, fmt.Errorf("%w: compression %s, header says %s", ErrMismatch, got, ct)
	}
	for i, want := range cols {
		if got := model.BinaryDataType(blob[2+i]); got != want {
			return nil, fmt.Errorf("%w: column %d is %s, header says %s", ErrMismatch, i, got, want)
		}
	}
	count := int(binary.LittleEndian.Uint32(blob[2+len(cols):]))

	want := rowSize(cols) * count
	body, err := decompressBody(blob[head:], ct, want)
	if err != nil {
		return nil, err
	}
	if len(body) != want {
		return nil, fmt.Errorf("%w: body is %d bytes, want %d for %d peaks", ErrCorrupt, len(body), want, count)
	}

	offset := make([]int, len(cols))
	pos := 0
	for i, c := range cols {
		offset[i] = pos
		pos += c.Size() * count
	}
	return &reader{cols: cols, body: body, offset: offset, count: count}, nil
}

func (r *reader) next(row []float64) {
	for i, c := range r.cols {
		at := r.offset[i] + r.row*c.Size()
		src := r.body[at:]
		switch c {
		case model.DataTypeFloat64:
			row[i] = math.Float64frombits(binary.LittleEndian.Uint64(src))
		case model.DataTypeFloat32:
			row[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(src)))
		case model.DataTypeInt64:
			row[i] = float64(int64(binary.LittleEndian.Uint64(src)))
		case model.DataTypeInt32:
			row[i] = float64(int32(binary.LittleEndian.Uint32(src)))
		}
	}
	r.row++
}
