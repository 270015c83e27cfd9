package accelfilter

import (
	"testing"

	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_New_RejectsBadParameters(t *testing.T) {
	_, err := New(-1, 0.2)
	require.Error(t, err)

	_, err = New(2, 0)
	require.Error(t, err)

	_, err = New(2, 1.5)
	require.Error(t, err)
}

func Test_Process_ConvergesPerAxis(t *testing.T) {
	f, err := New(2, 0.3)
	require.NoError(t, err)

	c := vec.Vector3D{1, -2, 0.5}
	var out vec.Vector3D
	for i := 0; i < 2000; i++ {
		out = f.Process(c, 0.004)
	}
	assert.InDelta(t, c[0], out[0], 1e-3)
	assert.InDelta(t, c[1], out[1], 1e-3)
	assert.InDelta(t, c[2], out[2], 1e-3)
}

func Test_ZeroOrder_IsPassThrough(t *testing.T) {
	f, err := New(0, 0.5)
	require.NoError(t, err)
	sample := vec.Vector3D{3, 4, 5}
	assert.Equal(t, sample, f.Process(sample, 0.004))
}
