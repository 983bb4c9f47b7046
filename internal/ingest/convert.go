package ingest

import (
	"fmt"

	"github.com/ZimmerD/MzLite/internal/model"
	"github.com/ZimmerD/MzLite/internal/scalar"
)

// spectrumRow is a converted spectrum ready for insertion.
type spectrumRow struct {
	runID    string
	spectrum *model.MassSpectrum
	peaks    *model.Peak1DArray
}

type chromatogramRow struct {
	runID string
	chrom *model.Chromatogram
	peaks *model.Peak2DArray
}

// batch is a dataset converted to model entities.
type batch struct {
	name            string
	params          model.ParamContainer
	sourceFiles     []*model.SourceFile
	samples         []*model.Sample
	softwares       []*model.Software
	instruments     []*model.Instrument
	dataProcessings []*model.DataProcessing
	runs            []*model.Run
	spectra         []spectrumRow
	chromatograms   []chromatogramRow
}

// convert validates ds and builds the model entities it describes.
// Every error wraps ErrInvalid.
func convert(ds *Dataset, ids IDGenerator) (*batch, error) {
	b := &batch{name: ds.Name}
	if err := fillParams(&b.params, ds.Params); err != nil {
		return nil, invalid("params", err)
	}

	for i, f := range ds.SourceFiles {
		sf := model.NewSourceFile(f.ID, f.Name, f.Location)
		if err := fillParams(&sf.ParamContainer, f.Params); err != nil {
			return nil, invalid(fmt.Sprintf("source_files[%d]", i), err)
		}
		b.sourceFiles = append(b.sourceFiles, sf)
	}
	for i, s := range ds.Samples {
		sample := model.NewSample(s.ID, s.Name)
		if err := fillParams(&sample.ParamContainer, s.Params); err != nil {
			return nil, invalid(fmt.Sprintf("samples[%d]", i), err)
		}
		b.samples = append(b.samples, sample)
	}
	for i, s := range ds.Softwares {
		sw := model.NewSoftware(s.ID)
		if err := fillParams(&sw.ParamContainer, s.Params); err != nil {
			return nil, invalid(fmt.Sprintf("softwares[%d]", i), err)
		}
		b.softwares = append(b.softwares, sw)
	}
	for i, s := range ds.Instruments {
		inst := model.NewInstrument(s.ID)
		inst.SoftwareReference = s.Software
		if err := fillParams(&inst.ParamContainer, s.Params); err != nil {
			return nil, invalid(fmt.Sprintf("instruments[%d]", i), err)
		}
		b.instruments = append(b.instruments, inst)
	}
	for i, s := range ds.DataProcessings {
		dp := model.NewDataProcessing(s.ID)
		for j, st := range s.Steps {
			if st.Name == "" {
				return nil, invalid(fmt.Sprintf("data_processings[%d].steps[%d]", i, j), fmt.Errorf("name is required"))
			}
			step := &model.DataProcessingStep{Name: st.Name, SoftwareReference: st.Software}
			if err := fillParams(&step.ParamContainer, st.Params); err != nil {
				return nil, invalid(fmt.Sprintf("data_processings[%d].steps[%d]", i, j), err)
			}
			dp.ProcessingSteps = append(dp.ProcessingSteps, step)
		}
		b.dataProcessings = append(b.dataProcessings, dp)
	}
	for i, r := range ds.Runs {
		run := model.NewRun(r.ID)
		run.SampleReference = r.Sample
		run.DefaultInstrumentReference = r.Instrument
		run.DefaultSpectrumProcessingReference = r.SpectrumProcessing
		run.DefaultChromatogramProcessingReference = r.ChromatogramProcessing
		if err := fillParams(&run.ParamContainer, r.Params); err != nil {
			return nil, invalid(fmt.Sprintf("runs[%d]", i), err)
		}
		b.runs = append(b.runs, run)
	}

	for i, s := range ds.Spectra {
		row, err := convertSpectrum(s, ids)
		if err != nil {
			return nil, invalid(fmt.Sprintf("spectra[%d]", i), err)
		}
		b.spectra = append(b.spectra, row)
	}
	for i, c := range ds.Chromatograms {
		row, err := convertChromatogram(c, ids)
		if err != nil {
			return nil, invalid(fmt.Sprintf("chromatograms[%d]", i), err)
		}
		b.chromatograms = append(b.chromatograms, row)
	}
	return b, nil
}

func invalid(where string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalid, where, err)
}

func convertSpectrum(s SpectrumSpec, ids IDGenerator) (spectrumRow, error) {
	if s.Run == "" {
		return spectrumRow{}, fmt.Errorf("run is required")
	}
	id := s.ID
	if id == "" {
		id = ids.Generate()
	}
	ms := model.NewMassSpectrum(id)
	ms.DataProcessingReference = s.DataProcessing
	ms.SourceFileReference = s.SourceFile
	if err := fillParams(&ms.ParamContainer, s.Params); err != nil {
		return spectrumRow{}, err
	}
	for j, p := range s.Precursors {
		pre := &model.Precursor{SpectrumReference: p.Spectrum}
		if err := fillParams(&pre.IsolationWindow, p.IsolationWindow); err != nil {
			return spectrumRow{}, fmt.Errorf("precursors[%d].isolation_window: %w", j, err)
		}
		if err := fillParams(&pre.Activation, p.Activation); err != nil {
			return spectrumRow{}, fmt.Errorf("precursors[%d].activation: %w", j, err)
		}
		if err := fillParams(&pre.ParamContainer, p.Params); err != nil {
			return spectrumRow{}, fmt.Errorf("precursors[%d]: %w", j, err)
		}
		ms.Precursors = append(ms.Precursors, pre)
	}

	pk := s.Peaks
	if len(pk.Rt) > 0 {
		return spectrumRow{}, fmt.Errorf("peaks: rt is not allowed for spectra")
	}
	if len(pk.Mz) != len(pk.Intensity) {
		return spectrumRow{}, fmt.Errorf("peaks: %d mz values but %d intensities", len(pk.Mz), len(pk.Intensity))
	}
	arr := model.NewPeak1DArray()
	if err := parseEnums(pk, &arr.CompressionType, &arr.MzDataType, nil, &arr.IntensityDataType); err != nil {
		return spectrumRow{}, err
	}
	if err := fillParams(&arr.ParamContainer, pk.Params); err != nil {
		return spectrumRow{}, fmt.Errorf("peaks: %w", err)
	}
	arr.Peaks = make([]model.Peak1D, len(pk.Mz))
	for i := range pk.Mz {
		arr.Peaks[i] = model.Peak1D{Mz: pk.Mz[i], Intensity: pk.Intensity[i]}
	}
	return spectrumRow{runID: s.Run, spectrum: ms, peaks: arr}, nil
}

func convertChromatogram(c ChromatogramSpec, ids IDGenerator) (chromatogramRow, error) {
	if c.Run == "" {
		return chromatogramRow{}, fmt.Errorf("run is required")
	}
	id := c.ID
	if id == "" {
		id = ids.Generate()
	}
	chrom := model.NewChromatogram(id)
	chrom.DataProcessingReference = c.DataProcessing
	if err := fillParams(&chrom.ParamContainer, c.Params); err != nil {
		return chromatogramRow{}, err
	}

	pk := c.Peaks
	if len(pk.Rt) != len(pk.Intensity) {
		return chromatogramRow{}, fmt.Errorf("peaks: %d rt values but %d intensities", len(pk.Rt), len(pk.Intensity))
	}
	if len(pk.Mz) != 0 && len(pk.Mz) != len(pk.Rt) {
		return chromatogramRow{}, fmt.Errorf("peaks: %d mz values but %d rt values", len(pk.Mz), len(pk.Rt))
	}
	arr := model.NewPeak2DArray()
	if err := parseEnums(pk, &arr.CompressionType, &arr.MzDataType, &arr.RtDataType, &arr.IntensityDataType); err != nil {
		return chromatogramRow{}, err
	}
	if err := fillParams(&arr.ParamContainer, pk.Params); err != nil {
		return chromatogramRow{}, fmt.Errorf("peaks: %w", err)
	}
	arr.Peaks = make([]model.Peak2D, len(pk.Rt))
	for i := range pk.Rt {
		p := model.Peak2D{Rt: pk.Rt[i], Intensity: pk.Intensity[i]}
		if len(pk.Mz) > 0 {
			p.Mz = pk.Mz[i]
		}
		arr.Peaks[i] = p
	}
	return chromatogramRow{runID: c.Run, chrom: chrom, peaks: arr}, nil
}

// parseEnums resolves the named compression and column types. rt may be
// nil for spectra.
func parseEnums(pk PeaksSpec, ct *model.CompressionType, mz, rt, intensity *model.BinaryDataType) error {
	if pk.Compression != "" {
		if err := ct.UnmarshalText([]byte(pk.Compression)); err != nil {
			return fmt.Errorf("peaks.compression: %w", err)
		}
	}
	cols := []struct {
		field string
		name  string
		dst   *model.BinaryDataType
	}{
		{"mz_type", pk.MzType, mz},
		{"rt_type", pk.RtType, rt},
		{"intensity_type", pk.IntensityType, intensity},
	}
	for _, c := range cols {
		if c.name == "" {
			continue
		}
		if c.dst == nil {
			return fmt.Errorf("peaks.%s is not allowed here", c.field)
		}
		if err := c.dst.UnmarshalText([]byte(c.name)); err != nil {
			return fmt.Errorf("peaks.%s: %w", c.field, err)
		}
	}
	return nil
}

// fillParams adds the listed params to pc.
func fillParams(pc *model.ParamContainer, ps Params) error {
	for i, spec := range ps.CV {
		v, err := spec.Value.scalar()
		if err != nil {
			return fmt.Errorf("cv[%d] %q: %w", i, spec.Accession, err)
		}
		p, err := pc.AddCvParam(spec.Accession, v)
		if err != nil {
			return fmt.Errorf("cv[%d]: %w", i, err)
		}
		p.SetUnit(spec.Unit)
	}
	for i, spec := range ps.User {
		v, err := spec.Value.scalar()
		if err != nil {
			return fmt.Errorf("user[%d] %q: %w", i, spec.Name, err)
		}
		p, err := pc.AddUserParam(spec.Name, v)
		if err != nil {
			return fmt.Errorf("user[%d]: %w", i, err)
		}
		p.SetUnit(spec.Unit)
	}
	return nil
}

// scalar converts the typed value. A nil receiver means no value.
func (tv *TypedValue) scalar() (scalar.Value, error) {
	if tv == nil {
		return nil, nil
	}
	kind, ok := scalar.ParseKind(tv.Type)
	if !ok {
		return nil, fmt.Errorf("unknown value type %q", tv.Type)
	}
	return scalar.Parse(kind, string(tv.Value))
}
