package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ZimmerD/MzLite/internal/model"
)

// Stats summarizes the row-level content of a store.
type Stats struct {
	Spectra       int64    `json:"spectra"`
	Chromatograms int64    `json:"chromatograms"`
	RunIDs        []string `json:"run_ids"`
}

// loadModel reads the model row. Returns ErrNotFound if the table is empty.
func (s *Scope) loadModel(ctx context.Context) (*model.Model, error) {
	var content string
	err := s.tx.QueryRowContext(ctx, `SELECT Content FROM Model`).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	var m model.Model
	if err := unmarshalText("model", content, &m); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &m, nil
}

// ReadMassSpectrum returns the description of one spectrum.
func (s *Scope) ReadMassSpectrum(ctx context.Context, id string) (*model.MassSpectrum, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	var desc string
	err := s.tx.QueryRowContext(ctx, `SELECT Description FROM Spectrum WHERE SpectrumID = ?`, id).Scan(&desc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("spectrum %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read spectrum %q: %w", id, err)
	}

	var ms model.MassSpectrum
	if err := unmarshalText("spectrum", desc, &ms); err != nil {
		return nil, fmt.Errorf("read spectrum %q: %w", id, err)
	}
	return &ms, nil
}

// ReadMassSpectra returns every spectrum of a run in insertion order.
// Returns an empty slice (not nil) if the run has none.
func (s *Scope) ReadMassSpectra(ctx context.Context, runID string) ([]*model.MassSpectrum, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	rows, err := s.tx.QueryContext(ctx, `
		SELECT Description FROM Spectrum
		WHERE RunID = ?
		ORDER BY rowid ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query spectra: %w", err)
	}
	defer rows.Close()

	spectra := []*model.MassSpectrum{}
	for rows.Next() {
		var desc string
		if err := rows.Scan(&desc); err != nil {
			return nil, fmt.Errorf("scan spectrum: %w", err)
		}
		ms := new(model.MassSpectrum)
		if err := unmarshalText("spectrum", desc, ms); err != nil {
			return nil, err
		}
		spectra = append(spectra, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spectra: %w", err)
	}
	return spectra, nil
}

// ReadSpectrumPeaks returns the peak array of one spectrum, peaks included.
func (s *Scope) ReadSpectrumPeaks(ctx context.Context, id string) (*model.Peak1DArray, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	var (
		header string
		blob   []byte
	)
	err := s.tx.QueryRowContext(ctx, `SELECT PeakArray, PeakData FROM Spectrum WHERE SpectrumID = ?`, id).Scan(&header, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("spectrum %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read spectrum peaks %q: %w", id, err)
	}

	var arr model.Peak1DArray
	if err := unmarshalText("peak array", header, &arr); err != nil {
		return nil, fmt.Errorf("read spectrum peaks %q: %w", id, err)
	}
	if err := s.engine.codec.Decode1D(&arr, blob); err != nil {
		return nil, fmt.Errorf("read spectrum peaks %q: %w", id, err)
	}
	return &arr, nil
}

// ReadChromatogram returns the description of one chromatogram.
func (s *Scope) ReadChromatogram(ctx context.Context, id string) (*model.Chromatogram, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	var desc string
	err := s.tx.QueryRowContext(ctx, `SELECT Description FROM Chromatogram WHERE ChromatogramID = ?`, id).Scan(&desc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chromatogram %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read chromatogram %q: %w", id, err)
	}

	var c model.Chromatogram
	if err := unmarshalText("chromatogram", desc, &c); err != nil {
		return nil, fmt.Errorf("read chromatogram %q: %w", id, err)
	}
	return &c, nil
}

// ReadChromatograms returns every chromatogram of a run in insertion order.
func (s *Scope) ReadChromatograms(ctx context.Context, runID string) ([]*model.Chromatogram, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	rows, err := s.tx.QueryContext(ctx, `
		SELECT Description FROM Chromatogram
		WHERE RunID = ?
		ORDER BY rowid ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query chromatograms: %w", err)
	}
	defer rows.Close()

	chroms := []*model.Chromatogram{}
	for rows.Next() {
		var desc string
		if err := rows.Scan(&desc); err != nil {
			return nil, fmt.Errorf("scan chromatogram: %w", err)
		}
		c := new(model.Chromatogram)
		if err := unmarshalText("chromatogram", desc, c); err != nil {
			return nil, err
		}
		chroms = append(chroms, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chromatograms: %w", err)
	}
	return chroms, nil
}

// ReadChromatogramPeaks returns the peak array of one chromatogram.
func (s *Scope) ReadChromatogramPeaks(ctx context.Context, id string) (*model.Peak2DArray, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	var (
		header string
		blob   []byte
	)
	err := s.tx.QueryRowContext(ctx, `SELECT PeakArray, PeakData FROM Chromatogram WHERE ChromatogramID = ?`, id).Scan(&header, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chromatogram %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read chromatogram peaks %q: %w", id, err)
	}

	var arr model.Peak2DArray
	if err := unmarshalText("peak array", header, &arr); err != nil {
		return nil, fmt.Errorf("read chromatogram peaks %q: %w", id, err)
	}
	if err := s.engine.codec.Decode2D(&arr, blob); err != nil {
		return nil, fmt.Errorf("read chromatogram peaks %q: %w", id, err)
	}
	return &arr, nil
}

// Stats counts the stored rows and lists the distinct run IDs in
// ascending order.
func (s *Scope) Stats(ctx context.Context) (Stats, error) {
	if err := s.usable(); err != nil {
		return Stats{}, err
	}
	var st Stats
	if err := s.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM Spectrum`).Scan(&st.Spectra); err != nil {
		return Stats{}, fmt.Errorf("count spectra: %w", err)
	}
	if err := s.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM Chromatogram`).Scan(&st.Chromatograms); err != nil {
		return Stats{}, fmt.Errorf("count chromatograms: %w", err)
	}

	rows, err := s.tx.QueryContext(ctx, `
		SELECT RunID FROM Spectrum
		UNION
		SELECT RunID FROM Chromatogram
		ORDER BY RunID COLLATE BINARY ASC
	`)
	if err != nil {
		return Stats{}, fmt.Errorf("query run ids: %w", err)
	}
	defer rows.Close()

	st.RunIDs = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return Stats{}, fmt.Errorf("scan run id: %w", err)
		}
		st.RunIDs = append(st.RunIDs, id)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate run ids: %w", err)
	}
	return st, nil
}

// The Engine forms below run in the open scope, or in an implicit one.

// ReadMassSpectrum returns the description of one spectrum.
func (e *Engine) ReadMassSpectrum(ctx context.Context, id string) (ms *model.MassSpectrum, err error) {
	err = e.ambient(ctx, func(s *Scope) error {
		ms, err = s.ReadMassSpectrum(ctx, id)
		return err
	})
	return ms, err
}

// ReadMassSpectra returns every spectrum of a run in insertion order.
func (e *Engine) ReadMassSpectra(ctx context.Context, runID string) (spectra []*model.MassSpectrum, err error) {
	err = e.ambient(ctx, func(s *Scope) error {
		spectra, err = s.ReadMassSpectra(ctx, runID)
		return err
	})
	return spectra, err
}

// ReadSpectrumPeaks returns the peak array of one spectrum.
func (e *Engine) ReadSpectrumPeaks(ctx context.Context, id string) (arr *model.Peak1DArray, err error) {
	err = e.ambient(ctx, func(s *Scope) error {
		arr, err = s.ReadSpectrumPeaks(ctx, id)
		return err
	})
	return arr, err
}

// ReadChromatogram returns the description of one chromatogram.
func (e *Engine) ReadChromatogram(ctx context.Context, id string) (c *model.Chromatogram, err error) {
	err = e.ambient(ctx, func(s *Scope) error {
		c, err = s.ReadChromatogram(ctx, id)
		return err
	})
	return c, err
}

// ReadChromatograms returns every chromatogram of a run in insertion order.
func (e *Engine) ReadChromatograms(ctx context.Context, runID string) (chroms []*model.Chromatogram, err error) {
	err = e.ambient(ctx, func(s *Scope) error {
		chroms, err = s.ReadChromatograms(ctx, runID)
		return err
	})
	return chroms, err
}

// ReadChromatogramPeaks returns the peak array of one chromatogram.
func (e *Engine) ReadChromatogramPeaks(ctx context.Context, id string) (arr *model.Peak2DArray, err error) {
	err = e.ambient(ctx, func(s *Scope) error {
		arr, err = s.ReadChromatogramPeaks(ctx, id)
		return err
	})
	return arr, err
}

// Stats counts the stored rows.
func (e *Engine) Stats(ctx context.Context) (st Stats, err error) {
	err = e.ambient(ctx, func(s *Scope) error {
		st, err = s.Stats(ctx)
		return err
	})
	return st, err
}
