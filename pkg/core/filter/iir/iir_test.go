package iir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SinglePole_ConvergesToConstantInput(t *testing.T) {
	f := NewSinglePole(0.2)
	var out float32
	for i := 0; i < 500; i++ {
		out = f.Process(3.0)
	}
	assert.InDelta(t, 3.0, out, 1e-4)
}

func Test_CascadeSinglePole_ConvergesToConstantInput(t *testing.T) {
	f := CascadeSinglePole(3, 0.3)
	require.Equal(t, 3, f.Order())
	var out float32
	for i := 0; i < 2000; i++ {
		out = f.Process(-1.5)
	}
	assert.InDelta(t, -1.5, out, 1e-3)
}

func Test_ZeroOrder_IsPassThrough(t *testing.T) {
	f := CascadeSinglePole(0, 0.5)
	assert.Equal(t, float32(7), f.Process(7))
}

func Test_Reset_ZeroesHistory(t *testing.T) {
	f := NewSinglePole(0.5)
	for i := 0; i < 10; i++ {
		f.Process(10)
	}
	f.Reset()
	assert.NotEqual(t, float32(10), f.Process(10))
}
