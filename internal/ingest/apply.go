package ingest

import (
	"context"
	"log/slog"

	"github.com/ZimmerD/MzLite/internal/model"
	"github.com/ZimmerD/MzLite/internal/store"
)

// Result summarizes an applied dataset.
type Result struct {
	Model         string   `json:"model"`
	Runs          int      `json:"runs"`
	Spectra       []string `json:"spectra"`
	Chromatograms []string `json:"chromatograms"`
}

type options struct {
	ids    IDGenerator
	logger *slog.Logger
}

// Option configures Apply.
type Option func(*options)

// WithIDGenerator sets the generator for missing spectrum and chromatogram
// IDs. The default is UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Apply writes ds to the engine in one transaction: all rows are inserted,
// the model additions are merged into the engine's model and saved, and the
// transaction is committed once. On the first failure the transaction is
// rolled back and the in-memory model is restored.
//
// Apply opens its own scope, so it fails with store.ErrReentrancy while the
// caller holds one.
func Apply(ctx context.Context, e *store.Engine, ds *Dataset, opts ...Option) (*Result, error) {
	o := options{ids: UUIDv7Generator{}, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	b, err := convert(ds, o.ids)
	if err != nil {
		return nil, err
	}
	m, err := e.GetModel()
	if err != nil {
		return nil, err
	}

	scope, err := e.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}
	defer scope.Close()

	res := &Result{Spectra: []string{}, Chromatograms: []string{}}
	for _, row := range b.spectra {
		if err := scope.InsertSpectrum(ctx, row.runID, row.spectrum, row.peaks); err != nil {
			return nil, err
		}
		res.Spectra = append(res.Spectra, row.spectrum.ID)
	}
	for _, row := range b.chromatograms {
		if err := scope.InsertChromatogram(ctx, row.runID, row.chrom, row.peaks); err != nil {
			return nil, err
		}
		res.Chromatograms = append(res.Chromatograms, row.chrom.ID)
	}

	undo, err := merge(m, b)
	if err != nil {
		undo()
		return nil, invalid("model", err)
	}
	if err := scope.SaveModel(ctx); err != nil {
		undo()
		return nil, err
	}
	if err := scope.Commit(); err != nil {
		undo()
		return nil, err
	}

	res.Model = m.Name
	res.Runs = len(b.runs)
	o.logger.Info("dataset applied",
		"model", res.Model,
		"runs", res.Runs,
		"spectra", len(res.Spectra),
		"chromatograms", len(res.Chromatograms),
	)
	return res, nil
}

// merge adds the batch's model entities to m. The returned func reverts
// every change made, including those made before a failure.
func merge(m *model.Model, b *batch) (undo func(), err error) {
	var steps []func()
	undo = func() {
		for i := len(steps) - 1; i >= 0; i-- {
			steps[i]()
		}
	}

	if b.name != "" {
		old := m.Name
		m.Name = b.name
		steps = append(steps, func() { m.Name = old })
	}
	if err := addAll(&m.CvParams, b.params.CvParams.Items(), &steps); err != nil {
		return undo, err
	}
	if err := addAll(&m.UserParams, b.params.UserParams.Items(), &steps); err != nil {
		return undo, err
	}
	if err := addAll(&m.FileDescription.SourceFiles, b.sourceFiles, &steps); err != nil {
		return undo, err
	}
	if err := addAll(&m.Samples, b.samples, &steps); err != nil {
		return undo, err
	}
	if err := addAll(&m.Softwares, b.softwares, &steps); err != nil {
		return undo, err
	}
	if err := addAll(&m.Instruments, b.instruments, &steps); err != nil {
		return undo, err
	}
	if err := addAll(&m.DataProcessings, b.dataProcessings, &steps); err != nil {
		return undo, err
	}
	if err := addAll(&m.Runs, b.runs, &steps); err != nil {
		return undo, err
	}
	return undo, nil
}

func addAll[T model.Keyed, R model.KeyRule](c *model.KeyedCollection[T, R], items []T, steps *[]func()) error {
	for _, item := range items {
		key := item.Key()
		if err := c.Add(item); err != nil {
			return err
		}
		*steps = append(*steps, func() { c.Remove(key) })
	}
	return nil
}
