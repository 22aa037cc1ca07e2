package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSome_RejectsNonFinite(t *testing.T) {
	assert.False(t, Some(math.NaN()).Valid())
	assert.False(t, Some(math.Inf(1)).Valid())
	assert.False(t, Some(math.Inf(-1)).Valid())
	assert.True(t, Some(0).Valid())
}

func TestOptional_Or(t *testing.T) {
	assert.Equal(t, 1.5, Some(1.5).Or(9))
	assert.Equal(t, 9.0, None().Or(9))
	assert.Equal(t, 0.0, None().Value())
}

func TestOptional_Map(t *testing.T) {
	assert.Equal(t, 3.0, Some(1.5).Map(func(v float64) float64 { return v * 2 }).Value())
	assert.False(t, None().Map(func(v float64) float64 { return v * 2 }).Valid())
	assert.False(t, Some(1).Map(func(v float64) float64 { return v / 0 }).Valid())
}

func TestOptional_JSON(t *testing.T) {
	type wrapper struct {
		A Optional `json:"a"`
		B Optional `json:"b"`
	}

	data, err := json.Marshal(wrapper{A: Some(2.5), B: None()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2.5,"b":null}`, string(data))

	var back wrapper
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.A.Valid())
	assert.Equal(t, 2.5, back.A.Value())
	assert.False(t, back.B.Valid())
}
