package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ZimmerD/MzLite/internal/model"
)

// createTestEngine opens a fresh engine in a temp dir.
func createTestEngine(t *testing.T) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mzlite")
	e, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

// createTestSpectrum creates a spectrum with one cv param.
func createTestSpectrum(t *testing.T, id string) *model.MassSpectrum {
	t.Helper()
	ms := model.NewMassSpectrum(id)
	if _, err := ms.AddCvParam("MS:1000511", int32(1)); err != nil {
		t.Fatalf("AddCvParam() failed: %v", err)
	}
	return ms
}

func createTestPeaks1D() *model.Peak1DArray {
	return model.NewPeak1DArray(
		model.Peak1D{Mz: 100.5, Intensity: 10},
		model.Peak1D{Mz: 200.25, Intensity: 20},
	)
}

// countRows returns the row count of table outside any scope.
func countRows(t *testing.T, e *Engine, table string) int {
	t.Helper()
	var n int
	if err := e.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
