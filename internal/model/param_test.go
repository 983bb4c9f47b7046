package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZimmerD/MzLite/internal/scalar"
)

func TestNewParam_BlankIdentity(t *testing.T) {
	for _, id := range []string{"", " ", "\t\n"} {
		_, err := NewCvParam(id)
		assert.ErrorIs(t, err, ErrEmptyIdentity)

		_, err = NewUserParam(id)
		assert.ErrorIs(t, err, ErrEmptyIdentity)
	}
	assert.Panics(t, func() { MustCvParam("") })
	assert.Panics(t, func() { MustUserParam("") })
}

func TestSetValue_ReturnsPrevious(t *testing.T) {
	p := MustCvParam("MS:1000511")

	prev, err := p.SetValue(int32(2))
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = p.SetValue(int32(3))
	require.NoError(t, err)
	assert.Equal(t, scalar.Int32(2), prev)
	assert.Equal(t, scalar.Int32(3), p.Value())

	prev, err = p.SetValue(nil)
	require.NoError(t, err)
	assert.Equal(t, scalar.Int32(3), prev)
	assert.Nil(t, p.Value())
}

func TestSetValue_RejectsUnsupported(t *testing.T) {
	p := MustUserParam("x")
	_, err := p.SetValue(int32(1))
	require.NoError(t, err)

	prev, err := p.SetValue([]byte("raw"))
	assert.ErrorIs(t, err, scalar.ErrSerialization)
	assert.Equal(t, scalar.Int32(1), prev)
	assert.Equal(t, scalar.Int32(1), p.Value(), "failed set leaves value unchanged")
}

func TestOnChange_PairedNotifications(t *testing.T) {
	p := MustCvParam("MS:1000504")
	var events []ParamChange
	cancel := p.OnChange(func(ev ParamChange) {
		// During Changing the old value is still visible.
		if ev.Phase == Changing && ev.Field == FieldValue {
			assert.Equal(t, ev.Old, p.Value())
		}
		events = append(events, ev)
	})

	_, err := p.SetValue(float64(445.34))
	require.NoError(t, err)
	prevUnit := p.SetUnit("MS:1000040")
	assert.Equal(t, "", prevUnit)

	require.Len(t, events, 4)
	assert.Equal(t, Changing, events[0].Phase)
	assert.Equal(t, Changed, events[1].Phase)
	assert.Equal(t, FieldValue, events[1].Field)
	assert.Equal(t, "MS:1000504", events[1].Key)
	assert.Equal(t, scalar.Float64(445.34), events[1].New)
	assert.Equal(t, FieldUnit, events[3].Field)
	assert.Equal(t, "MS:1000040", events[3].New)

	// No-op edits do not notify.
	_, err = p.SetValue(float64(445.34))
	require.NoError(t, err)
	p.SetUnit("MS:1000040")
	assert.Len(t, events, 4)

	cancel()
	p.SetUnit("")
	assert.Len(t, events, 4, "cancelled observer must not be called")
	assert.Equal(t, "", p.Unit())
}

func TestOnChange_MultipleObservers(t *testing.T) {
	p := MustUserParam("x")
	var a, b int
	cancelA := p.OnChange(func(ParamChange) { a++ })
	p.OnChange(func(ParamChange) { b++ })

	p.SetUnit("UO:1")
	cancelA()
	p.SetUnit("UO:2")

	assert.Equal(t, 2, a)
	assert.Equal(t, 4, b)
}

func TestParamString(t *testing.T) {
	p := MustCvParam("MS:1000504")
	assert.Equal(t, "'MS:1000504','null'", p.String())

	_, _ = p.SetValue(float64(1.5))
	p.SetUnit("MS:1000040")
	assert.Equal(t, "'MS:1000504','1.5','MS:1000040'", p.String())
}

func TestCvParamJSON_ValueKindSurvives(t *testing.T) {
	p := MustCvParam("MS:1000511")
	_, err := p.SetValue(int32(2))
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"CvAccession":"MS:1000511","Value":{"$tc":9,"$val":2}}`, string(data))

	var back CvParam
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "MS:1000511", back.CvAccession())
	v, ok := back.Value().(scalar.Int32)
	require.True(t, ok, "expected Int32, got %T", back.Value())
	assert.Equal(t, scalar.Int32(2), v)
}

func TestParamJSON_AbsentVersusNull(t *testing.T) {
	var absent UserParam
	require.NoError(t, json.Unmarshal([]byte(`{"Name":"a"}`), &absent))
	assert.Nil(t, absent.Value())

	var null UserParam
	require.NoError(t, json.Unmarshal([]byte(`{"Name":"a","Value":null}`), &null))
	assert.Equal(t, scalar.Null{}, null.Value())

	data, err := json.Marshal(&absent)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Name":"a"}`, string(data))

	data, err = json.Marshal(&null)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Name":"a","Value":null}`, string(data))
}

func TestParamJSON_Errors(t *testing.T) {
	var cv CvParam
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"CvAccession":""}`), &cv), ErrEmptyIdentity)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"Value":{"$tc":9,"$val":1}}`), &cv), ErrEmptyIdentity)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"CvAccession":"MS:1","Value":{"$tc":99,"$val":1}}`), &cv), scalar.ErrSerialization)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"CvAccession":"MS:1","Value":2}`), &cv), scalar.ErrSerialization)

	var up UserParam
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"Name":" "}`), &up), ErrEmptyIdentity)
}
