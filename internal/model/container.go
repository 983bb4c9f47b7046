package model

import "fmt"

// CvParamCollection keys CvParams by accession, case-insensitively.
type CvParamCollection = KeyedCollection[*CvParam, FoldedKeys]

// UserParamCollection keys UserParams by name, case-sensitively.
type UserParamCollection = KeyedCollection[*UserParam, ExactKeys]

// ParamContainer is the extensible metadata bundle carried by every
// descriptive entity. Entities embed their own container value; containers
// are never shared between entities.
type ParamContainer struct {
	CvParams         CvParamCollection   `json:"CvParams"`
	UserParams       UserParamCollection `json:"UserParams"`
	UserDescriptions []*UserDescription  `json:"UserDescriptions,omitempty"`
}

// AddCvParam creates a CvParam with an optional value and adds it.
// value may be nil; otherwise it is converted with scalar.Of.
func (pc *ParamContainer) AddCvParam(accession string, value any) (*CvParam, error) {
	p, err := NewCvParam(accession)
	if err != nil {
		return nil, err
	}
	if value != nil {
		if _, err := p.SetValue(value); err != nil {
			return nil, err
		}
	}
	if err := pc.CvParams.Add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddUserParam creates a UserParam with an optional value and adds it.
func (pc *ParamContainer) AddUserParam(name string, value any) (*UserParam, error) {
	p, err := NewUserParam(name)
	if err != nil {
		return nil, err
	}
	if value != nil {
		if _, err := p.SetValue(value); err != nil {
			return nil, err
		}
	}
	if err := pc.UserParams.Add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddUserDescription appends a descriptive block.
func (pc *ParamContainer) AddUserDescription(d *UserDescription) {
	pc.UserDescriptions = append(pc.UserDescriptions, d)
}

// IsEmpty reports whether the container holds nothing.
func (pc *ParamContainer) IsEmpty() bool {
	return pc.CvParams.Len() == 0 && pc.UserParams.Len() == 0 && len(pc.UserDescriptions) == 0
}

// UserDescription is a named, free-form block of parameters.
type UserDescription struct {
	Name string `json:"Name"`
	ParamContainer
}

// NewUserDescription creates an empty block with the given name.
func NewUserDescription(name string) (*UserDescription, error) {
	if isBlank(name) {
		return nil, fmt.Errorf("%w: user description name", ErrEmptyIdentity)
	}
	return &UserDescription{Name: name}, nil
}
