package model_test

import (
	"testing"

	"skyvault/drive-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSliceValue(t *testing.T) {
	v, err := model.StringSlice{"a", "b", "c"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", v)

	v, err = model.StringSlice{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestStringSliceValueRejectsComma(t *testing.T) {
	_, err := model.StringSlice{"a", "b,c"}.Value()
	assert.Error(t, err)
}

func TestStringSliceScan(t *testing.T) {
	var s model.StringSlice
	require.NoError(t, s.Scan("a,b"))
	assert.Equal(t, model.StringSlice{"a", "b"}, s)

	require.NoError(t, s.Scan([]byte("x")))
	assert.Equal(t, model.StringSlice{"x"}, s)

	require.NoError(t, s.Scan(""))
	assert.Empty(t, s)

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)

	assert.Error(t, s.Scan(42))
}

func TestStringSliceContains(t *testing.T) {
	s := model.StringSlice{"u1", "u2"}
	assert.True(t, s.Contains("u2"))
	assert.False(t, s.Contains("u3"))
	assert.False(t, model.StringSlice{}.Contains("u1"))
}
