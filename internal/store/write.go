package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZimmerD/MzLite/internal/model"
)

// Cached command names.
const (
	cmdInsertSpectrum     = "insert_spectrum"
	cmdInsertChromatogram = "insert_chromatogram"
)

// SaveModel replaces the stored model row with the engine's cached model.
func (s *Scope) SaveModel(ctx context.Context) error {
	if err := s.usable(); err != nil {
		return err
	}
	content, err := marshalText("model", s.engine.model)
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	if _, err := s.tx.ExecContext(ctx, `DELETE FROM Model`); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if _, err := s.tx.ExecContext(ctx, `INSERT INTO Model (Lock, Content) VALUES (0, ?)`, content); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

// InsertSpectrum appends one spectrum row. It never updates an existing
// row: a duplicate ID fails with a constraint violation.
func (s *Scope) InsertSpectrum(ctx context.Context, runID string, spectrum *model.MassSpectrum, peaks *model.Peak1DArray) error {
	if spectrum == nil || peaks == nil {
		return errors.New("insert spectrum: spectrum and peak array are required")
	}
	cmd, err := s.command(ctx, cmdInsertSpectrum, `
		INSERT INTO Spectrum (RunID, SpectrumID, Description, PeakArray, PeakData)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("insert spectrum %q: %w", spectrum.ID, err)
	}

	desc, err := marshalText("spectrum", spectrum)
	if err != nil {
		return fmt.Errorf("insert spectrum %q: %w", spectrum.ID, err)
	}
	header, err := marshalText("peak array", peaks)
	if err != nil {
		return fmt.Errorf("insert spectrum %q: %w", spectrum.ID, err)
	}
	blob, err := s.engine.codec.Encode1D(peaks)
	if err != nil {
		return fmt.Errorf("insert spectrum %q: %w", spectrum.ID, err)
	}

	if _, err := cmd.Exec(ctx, runID, spectrum.ID, desc, header, blob); err != nil {
		return fmt.Errorf("insert spectrum %q: %w", spectrum.ID, err)
	}
	return nil
}

// InsertChromatogram appends one chromatogram row.
func (s *Scope) InsertChromatogram(ctx context.Context, runID string, chrom *model.Chromatogram, peaks *model.Peak2DArray) error {
	if chrom == nil || peaks == nil {
		return errors.New("insert chromatogram: chromatogram and peak array are required")
	}
	cmd, err := s.command(ctx, cmdInsertChromatogram, `
		INSERT INTO Chromatogram (RunID, ChromatogramID, Description, PeakArray, PeakData)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("insert chromatogram %q: %w", chrom.ID, err)
	}

	desc, err := marshalText("chromatogram", chrom)
	if err != nil {
		return fmt.Errorf("insert chromatogram %q: %w", chrom.ID, err)
	}
	header, err := marshalText("peak array", peaks)
	if err != nil {
		return fmt.Errorf("insert chromatogram %q: %w", chrom.ID, err)
	}
	blob, err := s.engine.codec.Encode2D(peaks)
	if err != nil {
		return fmt.Errorf("insert chromatogram %q: %w", chrom.ID, err)
	}

	if _, err := cmd.Exec(ctx, runID, chrom.ID, desc, header, blob); err != nil {
		return fmt.Errorf("insert chromatogram %q: %w", chrom.ID, err)
	}
	return nil
}
