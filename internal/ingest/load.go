package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Format is a dataset file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", ErrInvalid, filepath.Ext(path))
	}
}

// Load reads and parses the dataset file at path.
func Load(path string) (*Dataset, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	return Parse(data, format, filepath.Base(path))
}

// Parse decodes a dataset. Unknown fields are rejected in every format.
// name labels CUE positions in error messages.
func Parse(data []byte, format Format, name string) (*Dataset, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON:
		return parseJSON(data)
	case FormatCUE:
		return parseCUE(data, name)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalid, format)
	}
}

func parseYAML(data []byte) (*Dataset, error) {
	var ds Dataset
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("%w: parse YAML: %w", ErrInvalid, err)
	}
	return &ds, nil
}

func parseJSON(data []byte) (*Dataset, error) {
	var ds Dataset
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("%w: parse JSON: %w", ErrInvalid, err)
	}
	return &ds, nil
}

// parseCUE evaluates the file, requires every field to be concrete, and
// decodes the result through its JSON export.
func parseCUE(data []byte, name string) (*Dataset, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("%w: building CUE value: %w", ErrInvalid, err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%w: validating CUE value: %w", ErrInvalid, err)
	}
	exported, err := value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: exporting CUE value: %w", ErrInvalid, err)
	}
	return parseJSON(exported)
}
