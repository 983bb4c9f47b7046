package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZimmerD/MzLite/internal/model"
)

func TestInsertSpectrum_StoresRow(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	ms := createTestSpectrum(t, "scan=1")
	require.NoError(t, e.InsertSpectrum(ctx, "run1", ms, createTestPeaks1D()))

	var runID, desc, header string
	var blob []byte
	err := e.db.QueryRow(`
		SELECT RunID, Description, PeakArray, PeakData
		FROM Spectrum WHERE SpectrumID = ?
	`, "scan=1").Scan(&runID, &desc, &header, &blob)
	require.NoError(t, err)

	assert.Equal(t, "run1", runID)
	assert.JSONEq(t, `{
		"ID": "scan=1",
		"CvParams": [{"CvAccession": "MS:1000511", "Value": {"$tc": 9, "$val": 1}}],
		"UserParams": []
	}`, desc)

	var arr map[string]any
	require.NoError(t, json.Unmarshal([]byte(header), &arr))
	assert.Equal(t, "NoCompression", arr["CompressionType"])
	assert.NotContains(t, arr, "Peaks")
	assert.NotEmpty(t, blob)
}

func TestInsertSpectrum_DuplicateID(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.InsertSpectrum(ctx, "run1", createTestSpectrum(t, "dup"), createTestPeaks1D()))
	before := countRows(t, e, "Spectrum")

	err := e.InsertSpectrum(ctx, "run2", createTestSpectrum(t, "dup"), createTestPeaks1D())
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err), "got %v", err)
	assert.Equal(t, before, countRows(t, e, "Spectrum"))
}

func TestInsertSpectrum_DuplicateInScopeRollsBackAll(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, s.InsertSpectrum(ctx, "r", createTestSpectrum(t, "a"), createTestPeaks1D()))
	err = s.InsertSpectrum(ctx, "r", createTestSpectrum(t, "a"), createTestPeaks1D())
	assert.True(t, IsConstraintViolation(err))
	require.NoError(t, s.Close())

	assert.Equal(t, 0, countRows(t, e, "Spectrum"))
}

func TestInsertSpectrum_RequiresArguments(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	assert.Error(t, e.InsertSpectrum(ctx, "r", nil, createTestPeaks1D()))
	assert.Error(t, e.InsertSpectrum(ctx, "r", createTestSpectrum(t, "a"), nil))
	assert.Equal(t, 0, countRows(t, e, "Spectrum"))
}

func TestInsertChromatogram_LeavesModelUnchanged(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	var before string
	require.NoError(t, e.db.QueryRow("SELECT Content FROM Model").Scan(&before))
	m, err := e.GetModel()
	require.NoError(t, err)

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, s.InsertChromatogram(ctx, "run1", model.NewChromatogram("TIC"), model.NewPeak2DArray()))
	require.NoError(t, s.Commit())
	require.NoError(t, s.Close())

	got, err := e.GetModel()
	require.NoError(t, err)
	assert.Same(t, m, got)
	assert.Equal(t, 0, got.Runs.Len())

	var after string
	require.NoError(t, e.db.QueryRow("SELECT Content FROM Model").Scan(&after))
	assert.Equal(t, before, after)
	assert.Equal(t, 1, countRows(t, e, "Chromatogram"))
}

func TestInsertChromatogram_DuplicateID(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.InsertChromatogram(ctx, "r", model.NewChromatogram("TIC"), model.NewPeak2DArray()))
	err := e.InsertChromatogram(ctx, "r", model.NewChromatogram("TIC"), model.NewPeak2DArray())
	assert.True(t, IsConstraintViolation(err), "got %v", err)
	assert.Equal(t, 1, countRows(t, e, "Chromatogram"))
}

func TestSaveModel_ReplacesSingletonRow(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	m, err := e.GetModel()
	require.NoError(t, err)
	m.Name = "renamed"
	require.NoError(t, m.Runs.Add(model.NewRun("run1")))

	require.NoError(t, e.SaveModel(ctx))
	require.NoError(t, e.SaveModel(ctx))
	assert.Equal(t, 1, countRows(t, e, "Model"))

	var content string
	require.NoError(t, e.db.QueryRow("SELECT Content FROM Model").Scan(&content))
	var back model.Model
	require.NoError(t, json.Unmarshal([]byte(content), &back))
	assert.Equal(t, "renamed", back.Name)
	assert.True(t, back.Runs.Contains("run1"))
}

func TestSaveModel_RolledBackScopeKeepsStoredRow(t *testing.T) {
	e := createTestEngine(t)
	ctx := context.Background()

	var before string
	require.NoError(t, e.db.QueryRow("SELECT Content FROM Model").Scan(&before))

	m, _ := e.GetModel()
	m.Name = "draft"

	s, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SaveModel(ctx))
	require.NoError(t, s.Rollback())
	require.NoError(t, s.Close())

	var after string
	require.NoError(t, e.db.QueryRow("SELECT Content FROM Model").Scan(&after))
	assert.Equal(t, before, after)
}

type failingCodec struct{ PeakCodec }

func (failingCodec) Encode1D(*model.Peak1DArray) ([]byte, error) {
	return nil, assert.AnError
}

func TestInsertSpectrum_CodecFailure(t *testing.T) {
	path := t.TempDir() + "/codec.mzlite"
	e, err := Open(context.Background(), path, WithPeakCodec(failingCodec{}))
	require.NoError(t, err)
	defer e.Close()

	err = e.InsertSpectrum(context.Background(), "r", createTestSpectrum(t, "a"), createTestPeaks1D())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, countRows(t, e, "Spectrum"))
}
