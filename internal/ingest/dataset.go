package ingest

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for dataset files that cannot be parsed or do not
// describe a valid dataset.
var ErrInvalid = errors.New("ingest: invalid dataset")

// Dataset is the file form of a batch of MzLite content: additions to the
// model plus the spectra and chromatograms to insert.
type Dataset struct {
	// Name renames the model when set.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Params are added to the model's own container.
	Params Params `yaml:"params,omitempty" json:"params,omitempty"`

	SourceFiles     []SourceFileSpec     `yaml:"source_files,omitempty" json:"source_files,omitempty"`
	Samples         []SampleSpec         `yaml:"samples,omitempty" json:"samples,omitempty"`
	Softwares       []SoftwareSpec       `yaml:"softwares,omitempty" json:"softwares,omitempty"`
	Instruments     []InstrumentSpec     `yaml:"instruments,omitempty" json:"instruments,omitempty"`
	DataProcessings []DataProcessingSpec `yaml:"data_processings,omitempty" json:"data_processings,omitempty"`
	Runs            []RunSpec            `yaml:"runs,omitempty" json:"runs,omitempty"`

	Spectra       []SpectrumSpec     `yaml:"spectra,omitempty" json:"spectra,omitempty"`
	Chromatograms []ChromatogramSpec `yaml:"chromatograms,omitempty" json:"chromatograms,omitempty"`
}

// Params lists the parameters of one container.
type Params struct {
	CV   []CvParamSpec   `yaml:"cv,omitempty" json:"cv,omitempty"`
	User []UserParamSpec `yaml:"user,omitempty" json:"user,omitempty"`
}

// CvParamSpec is one controlled-vocabulary parameter.
type CvParamSpec struct {
	Accession string      `yaml:"accession" json:"accession"`
	Unit      string      `yaml:"unit,omitempty" json:"unit,omitempty"`
	Value     *TypedValue `yaml:"value,omitempty" json:"value,omitempty"`
}

// UserParamSpec is one free-text parameter.
type UserParamSpec struct {
	Name  string      `yaml:"name" json:"name"`
	Unit  string      `yaml:"unit,omitempty" json:"unit,omitempty"`
	Value *TypedValue `yaml:"value,omitempty" json:"value,omitempty"`
}

// TypedValue is a parameter value with an explicit kind, e.g.
// {type: Int32, value: 2}. Type takes the scalar kind names.
type TypedValue struct {
	Type  string  `yaml:"type" json:"type"`
	Value Literal `yaml:"value,omitempty" json:"value,omitempty"`
}

// Literal is the textual form of a scalar. It accepts any YAML or JSON
// scalar (string, number, boolean) and keeps its spelling.
type Literal string

// UnmarshalYAML keeps the source text of a scalar node.
func (l *Literal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: value must be a scalar", node.Line)
	}
	*l = Literal(node.Value)
	return nil
}

// UnmarshalJSON keeps numbers and booleans as written and unquotes strings.
func (l *Literal) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty value")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Literal(s)
	case '{', '[':
		return errors.New("value must be a scalar")
	default:
		if string(data) == "null" {
			*l = ""
			return nil
		}
		*l = Literal(data)
	}
	return nil
}

// SourceFileSpec describes a raw input file.
type SourceFileSpec struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
	Params   Params `yaml:"params,omitempty" json:"params,omitempty"`
}

// SampleSpec describes a measured sample.
type SampleSpec struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
	Params Params `yaml:"params,omitempty" json:"params,omitempty"`
}

// SoftwareSpec describes a piece of software.
type SoftwareSpec struct {
	ID     string `yaml:"id" json:"id"`
	Params Params `yaml:"params,omitempty" json:"params,omitempty"`
}

// InstrumentSpec describes an instrument configuration.
type InstrumentSpec struct {
	ID       string `yaml:"id" json:"id"`
	Software string `yaml:"software,omitempty" json:"software,omitempty"`
	Params   Params `yaml:"params,omitempty" json:"params,omitempty"`
}

// DataProcessingSpec describes a processing pipeline.
type DataProcessingSpec struct {
	ID    string               `yaml:"id" json:"id"`
	Steps []ProcessingStepSpec `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// ProcessingStepSpec is one step of a DataProcessingSpec.
type ProcessingStepSpec struct {
	Name     string `yaml:"name" json:"name"`
	Software string `yaml:"software,omitempty" json:"software,omitempty"`
	Params   Params `yaml:"params,omitempty" json:"params,omitempty"`
}

// RunSpec describes one acquisition.
type RunSpec struct {
	ID                     string `yaml:"id" json:"id"`
	Sample                 string `yaml:"sample,omitempty" json:"sample,omitempty"`
	Instrument             string `yaml:"instrument,omitempty" json:"instrument,omitempty"`
	SpectrumProcessing     string `yaml:"spectrum_processing,omitempty" json:"spectrum_processing,omitempty"`
	ChromatogramProcessing string `yaml:"chromatogram_processing,omitempty" json:"chromatogram_processing,omitempty"`
	Params                 Params `yaml:"params,omitempty" json:"params,omitempty"`
}

// SpectrumSpec is one spectrum row. An empty ID is generated.
type SpectrumSpec struct {
	ID             string          `yaml:"id,omitempty" json:"id,omitempty"`
	Run            string          `yaml:"run" json:"run"`
	DataProcessing string          `yaml:"data_processing,omitempty" json:"data_processing,omitempty"`
	SourceFile     string          `yaml:"source_file,omitempty" json:"source_file,omitempty"`
	Precursors     []PrecursorSpec `yaml:"precursors,omitempty" json:"precursors,omitempty"`
	Params         Params          `yaml:"params,omitempty" json:"params,omitempty"`
	Peaks          PeaksSpec       `yaml:"peaks,omitempty" json:"peaks,omitempty"`
}

// PrecursorSpec describes the precursor ion of a spectrum.
type PrecursorSpec struct {
	Spectrum        string `yaml:"spectrum,omitempty" json:"spectrum,omitempty"`
	IsolationWindow Params `yaml:"isolation_window,omitempty" json:"isolation_window,omitempty"`
	Activation      Params `yaml:"activation,omitempty" json:"activation,omitempty"`
	Params          Params `yaml:"params,omitempty" json:"params,omitempty"`
}

// ChromatogramSpec is one chromatogram row. An empty ID is generated.
type ChromatogramSpec struct {
	ID             string    `yaml:"id,omitempty" json:"id,omitempty"`
	Run            string    `yaml:"run" json:"run"`
	DataProcessing string    `yaml:"data_processing,omitempty" json:"data_processing,omitempty"`
	Params         Params    `yaml:"params,omitempty" json:"params,omitempty"`
	Peaks          PeaksSpec `yaml:"peaks,omitempty" json:"peaks,omitempty"`
}

// PeaksSpec holds a peak array column by column. Spectra use Mz and
// Intensity; chromatograms use Rt and Intensity, with Mz optional.
// Empty type and compression names select Float64 and NoCompression.
type PeaksSpec struct {
	Compression   string    `yaml:"compression,omitempty" json:"compression,omitempty"`
	MzType        string    `yaml:"mz_type,omitempty" json:"mz_type,omitempty"`
	RtType        string    `yaml:"rt_type,omitempty" json:"rt_type,omitempty"`
	IntensityType string    `yaml:"intensity_type,omitempty" json:"intensity_type,omitempty"`
	Mz            []float64 `yaml:"mz,omitempty" json:"mz,omitempty"`
	Rt            []float64 `yaml:"rt,omitempty" json:"rt,omitempty"`
	Intensity     []float64 `yaml:"intensity,omitempty" json:"intensity,omitempty"`
	Params        Params    `yaml:"params,omitempty" json:"params,omitempty"`
}
