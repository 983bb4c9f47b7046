package model

// Model is the aggregate root of a dataset: one mutable metadata document
// per store, persisted as a single record and replaced wholesale.
type Model struct {
	Name string `json:"Name"`
	ParamContainer
	FileDescription FileDescription                             `json:"FileDescription"`
	Samples         KeyedCollection[*Sample, ExactKeys]         `json:"Samples"`
	Softwares       KeyedCollection[*Software, ExactKeys]       `json:"Softwares"`
	DataProcessings KeyedCollection[*DataProcessing, ExactKeys] `json:"DataProcessings"`
	Instruments     KeyedCollection[*Instrument, ExactKeys]     `json:"Instruments"`
	Runs            KeyedCollection[*Run, ExactKeys]            `json:"Runs"`
}

// NewModel returns an empty model with the given name.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// FileDescription describes the content and provenance of the dataset.
type FileDescription struct {
	ParamContainer
	SourceFiles KeyedCollection[*SourceFile, ExactKeys] `json:"SourceFiles"`
}

// SourceFile is a raw input file the dataset was derived from.
type SourceFile struct {
	ID       string `json:"ID"`
	Name     string `json:"Name"`
	Location string `json:"Location"`
	ParamContainer
}

func NewSourceFile(id, name, location string) *SourceFile {
	return &SourceFile{ID: id, Name: name, Location: location}
}

func (s *SourceFile) Key() string {
	if s == nil {
		return ""
	}
	return s.ID
}

// Sample is a measured sample.
type Sample struct {
	ID   string `json:"ID"`
	Name string `json:"Name,omitempty"`
	ParamContainer
}

func NewSample(id, name string) *Sample {
	return &Sample{ID: id, Name: name}
}

func (s *Sample) Key() string {
	if s == nil {
		return ""
	}
	return s.ID
}

// Software is a program used to acquire or process the data.
type Software struct {
	ID string `json:"ID"`
	ParamContainer
}

func NewSoftware(id string) *Software {
	return &Software{ID: id}
}

func (s *Software) Key() string {
	if s == nil {
		return ""
	}
	return s.ID
}

// DataProcessing is an ordered list of processing steps.
type DataProcessing struct {
	ID              string                `json:"ID"`
	ProcessingSteps []*DataProcessingStep `json:"ProcessingSteps,omitempty"`
}

func NewDataProcessing(id string) *DataProcessing {
	return &DataProcessing{ID: id}
}

func (d *DataProcessing) Key() string {
	if d == nil {
		return ""
	}
	return d.ID
}

// DataProcessingStep is one step of a DataProcessing.
type DataProcessingStep struct {
	Name              string `json:"Name"`
	SoftwareReference string `json:"SoftwareReference,omitempty"`
	ParamContainer
}

// Instrument describes an instrument configuration.
type Instrument struct {
	ID                string `json:"ID"`
	SoftwareReference string `json:"SoftwareReference,omitempty"`
	ParamContainer
}

func NewInstrument(id string) *Instrument {
	return &Instrument{ID: id}
}

func (i *Instrument) Key() string {
	if i == nil {
		return ""
	}
	return i.ID
}

// Run is one acquisition. Spectra and chromatograms refer to a run by ID
// only; the store does not enforce the reference.
type Run struct {
	ID                                     string `json:"ID"`
	SampleReference                        string `json:"SampleReference,omitempty"`
	DefaultInstrumentReference             string `json:"DefaultInstrumentReference,omitempty"`
	DefaultSpectrumProcessingReference     string `json:"DefaultSpectrumProcessingReference,omitempty"`
	DefaultChromatogramProcessingReference string `json:"DefaultChromatogramProcessingReference,omitempty"`
	ParamContainer
}

func NewRun(id string) *Run {
	return &Run{ID: id}
}

func (r *Run) Key() string {
	if r == nil {
		return ""
	}
	return r.ID
}

// MassSpectrum is the descriptive part of a spectrum; its peaks are stored
// separately as a Peak1DArray.
type MassSpectrum struct {
	ID                      string       `json:"ID"`
	DataProcessingReference string       `json:"DataProcessingReference,omitempty"`
	SourceFileReference     string       `json:"SourceFileReference,omitempty"`
	Precursors              []*Precursor `json:"Precursors,omitempty"`
	Scans                   []*Scan      `json:"Scans,omitempty"`
	ParamContainer
}

func NewMassSpectrum(id string) *MassSpectrum {
	return &MassSpectrum{ID: id}
}

func (s *MassSpectrum) Key() string {
	if s == nil {
		return ""
	}
	return s.ID
}

// Precursor describes the ion selected to produce a spectrum.
type Precursor struct {
	SpectrumReference string         `json:"SpectrumReference,omitempty"`
	IsolationWindow   ParamContainer `json:"IsolationWindow"`
	Activation        ParamContainer `json:"Activation"`
	ParamContainer
}

// Scan describes one scan contributing to a spectrum.
type Scan struct {
	ScanWindows []*ParamContainer `json:"ScanWindows,omitempty"`
	ParamContainer
}

// Chromatogram is the descriptive part of a chromatogram; its peaks are
// stored separately as a Peak2DArray.
type Chromatogram struct {
	ID                      string `json:"ID"`
	DataProcessingReference string `json:"DataProcessingReference,omitempty"`
	ParamContainer
}

func NewChromatogram(id string) *Chromatogram {
	return &Chromatogram{ID: id}
}

func (c *Chromatogram) Key() string {
	if c == nil {
		return ""
	}
	return c.ID
}
