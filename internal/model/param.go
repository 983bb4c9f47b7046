package model

import (
	"encoding/json"
	"fmt"

	"github.com/ZimmerD/MzLite/internal/scalar"
)

// ChangePhase tells observers whether an edit is about to happen or has
// happened.
type ChangePhase int

const (
	// Changing is delivered before the field is written.
	Changing ChangePhase = iota
	// Changed is delivered after the field is written.
	Changed
)

func (p ChangePhase) String() string {
	if p == Changing {
		return "changing"
	}
	return "changed"
}

// Field names reported in ParamChange.
const (
	FieldUnit  = "CvUnitAccession"
	FieldValue = "Value"
)

// ParamChange describes one edit of a parameter's optional fields.
// Old and New are a string for FieldUnit and a scalar.Value (possibly nil)
// for FieldValue.
type ParamChange struct {
	Phase ChangePhase
	Key   string
	Field string
	Old   any
	New   any
}

type observer struct {
	id int
	fn func(ParamChange)
}

// paramFields holds the mutable part shared by CvParam and UserParam.
type paramFields struct {
	key       string
	unit      string
	value     scalar.Value
	observers []observer
	nextID    int
}

// Unit returns the unit accession, or "" if none is set.
func (p *paramFields) Unit() string { return p.unit }

// SetUnit replaces the unit accession and returns the previous one.
// Observers are notified only when the value actually changes.
func (p *paramFields) SetUnit(unit string) (previous string) {
	previous = p.unit
	if previous == unit {
		return previous
	}
	p.notify(ParamChange{Phase: Changing, Key: p.key, Field: FieldUnit, Old: previous, New: unit})
	p.unit = unit
	p.notify(ParamChange{Phase: Changed, Key: p.key, Field: FieldUnit, Old: previous, New: unit})
	return previous
}

// Value returns the scalar value; nil means no value is set.
func (p *paramFields) Value() scalar.Value { return p.value }

// SetValue replaces the value and returns the previous one. v may be a
// scalar.Value or any Go value accepted by scalar.Of; nil clears the value.
func (p *paramFields) SetValue(v any) (previous scalar.Value, err error) {
	var next scalar.Value
	if v != nil {
		if next, err = scalar.Of(v); err != nil {
			return p.value, err
		}
	}
	previous = p.value
	if scalar.Equal(previous, next) {
		return previous, nil
	}
	p.notify(ParamChange{Phase: Changing, Key: p.key, Field: FieldValue, Old: previous, New: next})
	p.value = next
	p.notify(ParamChange{Phase: Changed, Key: p.key, Field: FieldValue, Old: previous, New: next})
	return previous, nil
}

// OnChange registers fn for change notifications and returns a function
// that unregisters it.
func (p *paramFields) OnChange(fn func(ParamChange)) (cancel func()) {
	p.nextID++
	id := p.nextID
	p.observers = append(p.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range p.observers {
			if o.id == id {
				p.observers = append(p.observers[:i], p.observers[i+1:]...)
				return
			}
		}
	}
}

func (p *paramFields) notify(ev ParamChange) {
	for _, o := range p.observers {
		o.fn(ev)
	}
}

// CvParam is a controlled-vocabulary parameter identified by its accession.
type CvParam struct {
	paramFields
}

// NewCvParam creates a parameter for the given accession, e.g. "MS:1000511".
func NewCvParam(accession string) (*CvParam, error) {
	if isBlank(accession) {
		return nil, fmt.Errorf("%w: cv accession", ErrEmptyIdentity)
	}
	return &CvParam{paramFields{key: accession}}, nil
}

// MustCvParam is NewCvParam for literals; it panics on a blank accession.
func MustCvParam(accession string) *CvParam {
	p, err := NewCvParam(accession)
	if err != nil {
		panic(err)
	}
	return p
}

// CvAccession returns the parameter's identity.
func (p *CvParam) CvAccession() string { return p.key }

// Key implements Keyed.
func (p *CvParam) Key() string {
	if p == nil {
		return ""
	}
	return p.key
}

func (p *CvParam) String() string {
	return formatParam(p.key, &p.paramFields)
}

// UserParam is a free-text parameter identified by its name.
type UserParam struct {
	paramFields
}

// NewUserParam creates a parameter with the given name.
func NewUserParam(name string) (*UserParam, error) {
	if isBlank(name) {
		return nil, fmt.Errorf("%w: user param name", ErrEmptyIdentity)
	}
	return &UserParam{paramFields{key: name}}, nil
}

// MustUserParam is NewUserParam for literals; it panics on a blank name.
func MustUserParam(name string) *UserParam {
	p, err := NewUserParam(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the parameter's identity.
func (p *UserParam) Name() string { return p.key }

// Key implements Keyed.
func (p *UserParam) Key() string {
	if p == nil {
		return ""
	}
	return p.key
}

func (p *UserParam) String() string {
	return formatParam(p.key, &p.paramFields)
}

func formatParam(key string, f *paramFields) string {
	val := "null"
	if f.value != nil {
		val = f.value.String()
	}
	if f.unit == "" {
		return fmt.Sprintf("'%s','%s'", key, val)
	}
	return fmt.Sprintf("'%s','%s','%s'", key, val, f.unit)
}

type cvParamWire struct {
	CvAccession     string          `json:"CvAccession"`
	CvUnitAccession string          `json:"CvUnitAccession,omitempty"`
	Value           json.RawMessage `json:"Value,omitempty"`
}

type userParamWire struct {
	Name            string          `json:"Name"`
	CvUnitAccession string          `json:"CvUnitAccession,omitempty"`
	Value           json.RawMessage `json:"Value,omitempty"`
}

func (p *CvParam) MarshalJSON() ([]byte, error) {
	val, err := encodeValue(p.value)
	if err != nil {
		return nil, fmt.Errorf("cv param %q: %w", p.key, err)
	}
	return json.Marshal(cvParamWire{CvAccession: p.key, CvUnitAccession: p.unit, Value: val})
}

func (p *CvParam) UnmarshalJSON(data []byte) error {
	var w cvParamWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if isBlank(w.CvAccession) {
		return fmt.Errorf("%w: cv accession", ErrEmptyIdentity)
	}
	val, err := decodeValue(w.Value)
	if err != nil {
		return fmt.Errorf("cv param %q: %w", w.CvAccession, err)
	}
	*p = CvParam{paramFields{key: w.CvAccession, unit: w.CvUnitAccession, value: val}}
	return nil
}

func (p *UserParam) MarshalJSON() ([]byte, error) {
	val, err := encodeValue(p.value)
	if err != nil {
		return nil, fmt.Errorf("user param %q: %w", p.key, err)
	}
	return json.Marshal(userParamWire{Name: p.key, CvUnitAccession: p.unit, Value: val})
}

func (p *UserParam) UnmarshalJSON(data []byte) error {
	var w userParamWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if isBlank(w.Name) {
		return fmt.Errorf("%w: user param name", ErrEmptyIdentity)
	}
	val, err := decodeValue(w.Value)
	if err != nil {
		return fmt.Errorf("user param %q: %w", w.Name, err)
	}
	*p = UserParam{paramFields{key: w.Name, unit: w.CvUnitAccession, value: val}}
	return nil
}

// encodeValue leaves an absent value absent; an explicit scalar.Null is
// written as null.
func encodeValue(v scalar.Value) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return scalar.Encode(v)
}

func decodeValue(raw json.RawMessage) (scalar.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	return scalar.Decode(raw)
}
