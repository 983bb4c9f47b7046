package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZimmerD/MzLite/internal/ingest/ingesttest"
	"github.com/ZimmerD/MzLite/internal/model"
	"github.com/ZimmerD/MzLite/internal/scalar"
)

func loadFixture(t *testing.T) *Dataset {
	t.Helper()
	ds, err := Load(filepath.Join("testdata", "dataset.yaml"))
	require.NoError(t, err)
	return ds
}

func TestConvert_Fixture(t *testing.T) {
	b, err := convert(loadFixture(t), ingesttest.NewFixedGenerator("gen-1"))
	require.NoError(t, err)

	assert.Equal(t, "demo", b.name)
	require.Len(t, b.runs, 1)
	run := b.runs[0]
	assert.Equal(t, "s1", run.SampleReference)
	assert.Equal(t, "i1", run.DefaultInstrumentReference)
	assert.Equal(t, "dp1", run.DefaultSpectrumProcessingReference)

	require.Len(t, b.dataProcessings, 1)
	require.Len(t, b.dataProcessings[0].ProcessingSteps, 1)
	assert.Equal(t, "centroiding", b.dataProcessings[0].ProcessingSteps[0].Name)

	require.Len(t, b.spectra, 2)
	first := b.spectra[0]
	assert.Equal(t, "run1", first.runID)
	assert.Equal(t, "scan=1", first.spectrum.ID)
	assert.Equal(t, "sf1", first.spectrum.SourceFileReference)
	assert.Equal(t, model.CompressionZstd, first.peaks.CompressionType)
	assert.Equal(t, []model.Peak1D{{Mz: 100.5, Intensity: 10}, {Mz: 200.25, Intensity: 20}}, first.peaks.Peaks)

	p, ok := first.spectrum.CvParams.Get("MS:1000511")
	require.True(t, ok)
	assert.Equal(t, scalar.Int32(1), p.Value())

	second := b.spectra[1]
	assert.Equal(t, "gen-1", second.spectrum.ID)
	require.Len(t, second.spectrum.Precursors, 1)
	pre := second.spectrum.Precursors[0]
	assert.Equal(t, "scan=1", pre.SpectrumReference)
	iso, ok := pre.IsolationWindow.CvParams.Get("ms:1000827")
	require.True(t, ok, "cv accessions are case-insensitive")
	assert.Equal(t, scalar.Float64(445.3), iso.Value())
	assert.Equal(t, "MS:1000040", iso.Unit())

	require.Len(t, b.chromatograms, 1)
	tic := b.chromatograms[0]
	assert.Equal(t, "tic", tic.chrom.ID)
	assert.Equal(t, model.CompressionLZ4, tic.peaks.CompressionType)
	assert.Equal(t, []model.Peak2D{{Rt: 0.5, Intensity: 100}, {Rt: 1.5, Intensity: 200}}, tic.peaks.Peaks)

	u, ok := b.params.UserParams.Get("operator")
	require.True(t, ok)
	assert.Equal(t, scalar.String("jdoe"), u.Value())
}

func TestConvert_GeneratedIDsInOrder(t *testing.T) {
	ds := &Dataset{
		Spectra:       []SpectrumSpec{{Run: "r"}, {Run: "r", ID: "fixed"}, {Run: "r"}},
		Chromatograms: []ChromatogramSpec{{Run: "r"}},
	}
	b, err := convert(ds, ingesttest.NewFixedGenerator("a", "b", "c"))
	require.NoError(t, err)

	assert.Equal(t, "a", b.spectra[0].spectrum.ID)
	assert.Equal(t, "fixed", b.spectra[1].spectrum.ID)
	assert.Equal(t, "b", b.spectra[2].spectrum.ID)
	assert.Equal(t, "c", b.chromatograms[0].chrom.ID)
}

func TestConvert_UUIDv7IDs(t *testing.T) {
	ds := &Dataset{Spectra: []SpectrumSpec{{Run: "r"}, {Run: "r"}}}
	b, err := convert(ds, UUIDv7Generator{})
	require.NoError(t, err)

	a, c := b.spectra[0].spectrum.ID, b.spectra[1].spectrum.ID
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, c)
}

func TestConvert_ChromatogramWithMz(t *testing.T) {
	ds := &Dataset{Chromatograms: []ChromatogramSpec{{
		ID:  "xic",
		Run: "r",
		Peaks: PeaksSpec{
			RtType:    "Float32",
			Mz:        []float64{445.3, 445.3},
			Rt:        []float64{1, 2},
			Intensity: []float64{3, 4},
		},
	}}}
	b, err := convert(ds, ingesttest.NewFixedGenerator())
	require.NoError(t, err)

	arr := b.chromatograms[0].peaks
	assert.Equal(t, model.DataTypeFloat32, arr.RtDataType)
	assert.Equal(t, model.CompressionNone, arr.CompressionType)
	assert.Equal(t, model.Peak2D{Mz: 445.3, Rt: 2, Intensity: 4}, arr.Peaks[1])
}

func TestConvert_Invalid(t *testing.T) {
	value := func(kind, lit string) *TypedValue {
		return &TypedValue{Type: kind, Value: Literal(lit)}
	}
	tests := []struct {
		name string
		ds   Dataset
	}{
		{"spectrum without run", Dataset{Spectra: []SpectrumSpec{{ID: "s"}}}},
		{"chromatogram without run", Dataset{Chromatograms: []ChromatogramSpec{{ID: "c"}}}},
		{"spectrum column lengths", Dataset{Spectra: []SpectrumSpec{{
			Run: "r", Peaks: PeaksSpec{Mz: []float64{1, 2}, Intensity: []float64{1}},
		}}}},
		{"spectrum with rt", Dataset{Spectra: []SpectrumSpec{{
			Run: "r", Peaks: PeaksSpec{Rt: []float64{1}},
		}}}},
		{"spectrum with rt type", Dataset{Spectra: []SpectrumSpec{{
			Run: "r", Peaks: PeaksSpec{RtType: "Float32"},
		}}}},
		{"chromatogram column lengths", Dataset{Chromatograms: []ChromatogramSpec{{
			Run: "r", Peaks: PeaksSpec{Rt: []float64{1}, Intensity: []float64{1, 2}},
		}}}},
		{"chromatogram mz length", Dataset{Chromatograms: []ChromatogramSpec{{
			Run: "r", Peaks: PeaksSpec{Mz: []float64{1, 2}, Rt: []float64{1}, Intensity: []float64{1}},
		}}}},
		{"unknown compression", Dataset{Spectra: []SpectrumSpec{{
			Run: "r", Peaks: PeaksSpec{Compression: "gzip"},
		}}}},
		{"unknown data type", Dataset{Spectra: []SpectrumSpec{{
			Run: "r", Peaks: PeaksSpec{MzType: "Float16"},
		}}}},
		{"unknown value type", Dataset{Params: Params{CV: []CvParamSpec{{
			Accession: "MS:1", Value: value("Int", "1"),
		}}}}},
		{"bad literal", Dataset{Params: Params{CV: []CvParamSpec{{
			Accession: "MS:1", Value: value("Int32", "x"),
		}}}}},
		{"int out of range", Dataset{Params: Params{CV: []CvParamSpec{{
			Accession: "MS:1", Value: value("Byte", "256"),
		}}}}},
		{"blank accession", Dataset{Params: Params{CV: []CvParamSpec{{Accession: " "}}}}},
		{"duplicate accession", Dataset{Params: Params{CV: []CvParamSpec{
			{Accession: "MS:1"}, {Accession: "ms:1"},
		}}}},
		{"duplicate user param", Dataset{Runs: []RunSpec{{ID: "r", Params: Params{User: []UserParamSpec{
			{Name: "a"}, {Name: "a"},
		}}}}}},
		{"step without name", Dataset{DataProcessings: []DataProcessingSpec{{
			ID: "dp", Steps: []ProcessingStepSpec{{Software: "sw"}},
		}}}},
		{"bad precursor param", Dataset{Spectra: []SpectrumSpec{{
			Run: "r", Precursors: []PrecursorSpec{{Activation: Params{CV: []CvParamSpec{{
				Accession: "MS:1", Value: value("Double", "fast"),
			}}}}},
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convert(&tt.ds, ingesttest.NewFixedGenerator("g1", "g2"))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestConvert_ErrorNamesLocation(t *testing.T) {
	ds := &Dataset{Spectra: []SpectrumSpec{{Run: "r"}, {ID: "s2"}}}
	_, err := convert(ds, ingesttest.NewFixedGenerator("g1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spectra[1]")
	assert.Contains(t, err.Error(), "run is required")
}
