package model

import "fmt"

// BinaryDataType is the storage type of one peak column.
type BinaryDataType uint8

const (
	DataTypeFloat64 BinaryDataType = iota
	DataTypeFloat32
	DataTypeInt64
	DataTypeInt32
)

var dataTypeNames = [...]string{"Float64", "Float32", "Int64", "Int32"}

func (t BinaryDataType) String() string {
	if int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return fmt.Sprintf("BinaryDataType(%d)", uint8(t))
}

// Valid reports whether t is a known data type.
func (t BinaryDataType) Valid() bool { return int(t) < len(dataTypeNames) }

// Size returns the encoded width in bytes.
func (t BinaryDataType) Size() int {
	switch t {
	case DataTypeFloat32, DataTypeInt32:
		return 4
	default:
		return 8
	}
}

func (t BinaryDataType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid binary data type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *BinaryDataType) UnmarshalText(b []byte) error {
	for i, name := range dataTypeNames {
		if name == string(b) {
			*t = BinaryDataType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown binary data type %q", b)
}

// CompressionType selects how the peak payload is compressed.
type CompressionType uint8

const (
	CompressionNone CompressionType = iota
	CompressionLZ4
	CompressionZstd
)

var compressionNames = [...]string{"NoCompression", "LZ4", "Zstd"}

func (c CompressionType) String() string {
	if int(c) < len(compressionNames) {
		return compressionNames[c]
	}
	return fmt.Sprintf("CompressionType(%d)", uint8(c))
}

// Valid reports whether c is a known compression type.
func (c CompressionType) Valid() bool { return int(c) < len(compressionNames) }

func (c CompressionType) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid compression type %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *CompressionType) UnmarshalText(b []byte) error {
	for i, name := range compressionNames {
		if name == string(b) {
			*c = CompressionType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown compression type %q", b)
}

// Peak1D is one point of a spectrum.
type Peak1D struct {
	Mz        float64
	Intensity float64
}

// Peak2D is one point of a chromatogram.
type Peak2D struct {
	Mz        float64
	Rt        float64
	Intensity float64
}

// Peak1DArray is the numeric payload of a spectrum. Peaks are not part of
// the JSON form; they travel in the binary encoding.
type Peak1DArray struct {
	CompressionType   CompressionType `json:"CompressionType"`
	MzDataType        BinaryDataType  `json:"MzDataType"`
	IntensityDataType BinaryDataType  `json:"IntensityDataType"`
	ParamContainer
	Peaks []Peak1D `json:"-"`
}

// NewPeak1DArray returns an uncompressed float64 array holding peaks.
func NewPeak1DArray(peaks ...Peak1D) *Peak1DArray {
	return &Peak1DArray{Peaks: peaks}
}

// Peak2DArray is the numeric payload of a chromatogram.
type Peak2DArray struct {
	CompressionType   CompressionType `json:"CompressionType"`
	MzDataType        BinaryDataType  `json:"MzDataType"`
	RtDataType        BinaryDataType  `json:"RtDataType"`
	IntensityDataType BinaryDataType  `json:"IntensityDataType"`
	ParamContainer
	Peaks []Peak2D `json:"-"`
}

// NewPeak2DArray returns an uncompressed float64 array holding peaks.
func NewPeak2DArray(peaks ...Peak2D) *Peak2DArray {
	return &Peak2DArray{Peaks: peaks}
}
