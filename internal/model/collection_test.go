package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cvKeys(c *CvParamCollection) []string {
	var keys []string
	for p := range c.All() {
		keys = append(keys, p.CvAccession())
	}
	return keys
}

func TestKeyedCollection_ZeroValueUsable(t *testing.T) {
	var c CvParamCollection
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Contains("MS:1"))

	_, ok := c.Get("MS:1")
	assert.False(t, ok)
	assert.False(t, c.Remove("MS:1"))
}

func TestKeyedCollection_InsertionOrder(t *testing.T) {
	var c CvParamCollection
	for _, acc := range []string{"MS:3", "MS:1", "MS:2"} {
		require.NoError(t, c.Add(MustCvParam(acc)))
	}
	assert.Equal(t, []string{"MS:3", "MS:1", "MS:2"}, cvKeys(&c))
	assert.Equal(t, "MS:1", c.At(1).CvAccession())
}

func TestKeyedCollection_CvKeysFoldCase(t *testing.T) {
	var c CvParamCollection
	require.NoError(t, c.Add(MustCvParam("ms:1000511")))

	err := c.Add(MustCvParam("MS:1000511"))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	p, ok := c.Get("Ms:1000511")
	require.True(t, ok)
	assert.Equal(t, "ms:1000511", p.CvAccession(), "original spelling is kept")
}

func TestKeyedCollection_UserKeysExactCase(t *testing.T) {
	var c UserParamCollection
	require.NoError(t, c.Add(MustUserParam("Operator")))
	require.NoError(t, c.Add(MustUserParam("operator")))
	assert.Equal(t, 2, c.Len())

	err := c.Add(MustUserParam("Operator"))
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestKeyedCollection_DuplicateLeavesContentsUnchanged(t *testing.T) {
	var c CvParamCollection
	first := MustCvParam("MS:1")
	_, err := first.SetValue(int32(1))
	require.NoError(t, err)
	require.NoError(t, c.Add(first))
	require.NoError(t, c.Add(MustCvParam("MS:2")))

	dup := MustCvParam("ms:1")
	_, err = dup.SetValue(int32(99))
	require.NoError(t, err)

	err = c.Add(dup)
	require.ErrorIs(t, err, ErrDuplicateKey)

	assert.Equal(t, []string{"MS:1", "MS:2"}, cvKeys(&c))
	got, _ := c.Get("MS:1")
	assert.Same(t, first, got, "existing entry must not be overwritten")
}

func TestKeyedCollection_RejectsNilAndBlank(t *testing.T) {
	var c CvParamCollection
	assert.ErrorIs(t, c.Add(nil), ErrEmptyIdentity)

	var runs KeyedCollection[*Run, ExactKeys]
	assert.ErrorIs(t, runs.Add(NewRun("  ")), ErrEmptyIdentity)
	assert.Equal(t, 0, runs.Len())
}

func TestKeyedCollection_Remove(t *testing.T) {
	var c CvParamCollection
	for _, acc := range []string{"MS:1", "MS:2", "MS:3", "MS:4"} {
		require.NoError(t, c.Add(MustCvParam(acc)))
	}

	assert.True(t, c.Remove("ms:2"))
	assert.Equal(t, []string{"MS:1", "MS:3", "MS:4"}, cvKeys(&c))

	// Index stays consistent after the shift.
	p, ok := c.Get("MS:4")
	require.True(t, ok)
	assert.Equal(t, "MS:4", p.CvAccession())

	// A removed key can be added again, at the end.
	require.NoError(t, c.Add(MustCvParam("MS:2")))
	assert.Equal(t, []string{"MS:1", "MS:3", "MS:4", "MS:2"}, cvKeys(&c))
}

func TestKeyedCollection_ItemsIsCopy(t *testing.T) {
	var c UserParamCollection
	require.NoError(t, c.Add(MustUserParam("a")))
	items := c.Items()
	items[0] = MustUserParam("b")

	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))
}

func TestKeyedCollection_AllStopsEarly(t *testing.T) {
	var c UserParamCollection
	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, c.Add(MustUserParam(n)))
	}
	var seen []string
	for p := range c.All() {
		seen = append(seen, p.Name())
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestKeyedCollection_Clear(t *testing.T) {
	var c UserParamCollection
	require.NoError(t, c.Add(MustUserParam("a")))
	c.Clear()
	assert.Equal(t, 0, c.Len())
	require.NoError(t, c.Add(MustUserParam("a")))
}

func TestKeyedCollection_JSON(t *testing.T) {
	var c UserParamCollection
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	require.NoError(t, json.Unmarshal([]byte(`[{"Name":"b"},{"Name":"a"}]`), &c))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "b", c.At(0).Name())

	err = json.Unmarshal([]byte(`[{"Name":"x"},{"Name":"x"}]`), &c)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, 2, c.Len(), "failed decode leaves previous contents")
}
