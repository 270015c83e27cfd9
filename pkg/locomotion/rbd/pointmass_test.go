package rbd

import (
	"testing"

	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locotypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOracle() *PointMassOracle {
	offsets := map[locotypes.FootID]vec.Vector3D{
		locotypes.LF: {0.2, 0.15, -0.4},
		locotypes.RF: {0.2, -0.15, -0.4},
		locotypes.LH: {-0.2, 0.15, -0.4},
		locotypes.RH: {-0.2, -0.15, -0.4},
	}
	return NewPointMassOracle(10, vec.Vector3D{0.1, 0.2, 0.15}, offsets, 0, 0)
}

func testOracleWithJoints(numJoints int) *PointMassOracle {
	offsets := map[locotypes.FootID]vec.Vector3D{
		locotypes.LF: {0.2, 0.15, -0.4},
		locotypes.RF: {0.2, -0.15, -0.4},
		locotypes.LH: {-0.2, 0.15, -0.4},
		locotypes.RH: {-0.2, -0.15, -0.4},
	}
	return NewPointMassOracle(10, vec.Vector3D{0.1, 0.2, 0.15}, offsets, numJoints, 0.05)
}

func Test_ComputeEOM_AllContact_ProducesFullJc(t *testing.T) {
	o := testOracle()
	require.NoError(t, o.SetContactFeet(locotypes.CanonicalFeet()))
	q := []float32{0, 0, 0.4, 0, 0, 0, 1}
	v := make([]float32, 6)
	require.NoError(t, o.ComputeEOM(q, v))

	assert.Len(t, o.ContactJacobian(), 12)
	assert.Len(t, o.SwingJacobian(), 0)
	assert.Equal(t, 6, o.NV())
}

func Test_ComputeEOM_PartialContact_SplitsJacobians(t *testing.T) {
	o := testOracle()
	require.NoError(t, o.SetContactFeet([]locotypes.FootID{locotypes.LF, locotypes.RH}))
	q := []float32{0, 0, 0.4, 0, 0, 0, 1}
	v := make([]float32, 6)
	require.NoError(t, o.ComputeEOM(q, v))

	assert.Len(t, o.ContactJacobian(), 6)
	assert.Len(t, o.SwingJacobian(), 6)
	assert.Len(t, o.SwingFootPositions(), 2)
}

func Test_ComputeEOM_RejectsBadDimensions(t *testing.T) {
	o := testOracle()
	err := o.ComputeEOM([]float32{0, 0, 0}, make([]float32, 6))
	require.Error(t, err)
}

func Test_ComputeSecondOrderFK_ZeroVelocity_ZeroJdotV(t *testing.T) {
	o := testOracle()
	require.NoError(t, o.SetContactFeet(locotypes.CanonicalFeet()))
	q := []float32{0, 0, 0.4, 0, 0, 0, 1}
	v := make([]float32, 6)
	require.NoError(t, o.ComputeEOM(q, v))
	require.NoError(t, o.ComputeSecondOrderFK(q, v))

	for _, x := range o.ContactJdotV() {
		assert.Equal(t, float32(0), x)
	}
}

func Test_Bias_EqualsWeightOnZAxis(t *testing.T) {
	o := testOracle()
	require.NoError(t, o.SetContactFeet(locotypes.CanonicalFeet()))
	q := []float32{0, 0, 0.4, 0, 0, 0, 1}
	v := make([]float32, 6)
	require.NoError(t, o.ComputeEOM(q, v))

	assert.InDelta(t, 10*gravity, o.Bias()[2], 1e-5)
}

func Test_NewPointMassOracle_ActuatedJoints_WidenShapes(t *testing.T) {
	o := testOracleWithJoints(2)
	require.NoError(t, o.SetContactFeet(locotypes.CanonicalFeet()))

	assert.Equal(t, 8, o.NV())

	q := []float32{0, 0, 0.4, 0, 0, 0, 1, 0.3, -0.2}
	v := []float32{0, 0, 0, 0, 0, 0, 0.1, 0.1}
	require.NoError(t, o.ComputeEOM(q, v))
	require.NoError(t, o.ComputeSecondOrderFK(q, v))

	M := o.MassMatrix()
	require.Len(t, M, 8)
	assert.Equal(t, float32(0.05), M[6][6])
	assert.Equal(t, float32(0.05), M[7][7])

	h := o.Bias()
	require.Len(t, h, 8)
	assert.Equal(t, float32(0), h[6])
	assert.Equal(t, float32(0), h[7])

	Jc := o.ContactJacobian()
	require.Len(t, Jc, 12)
	for _, row := range Jc {
		require.Len(t, row, 8)
		assert.Equal(t, float32(0), row[6])
		assert.Equal(t, float32(0), row[7])
	}
}

func Test_NewPointMassOracle_RejectsMismatchedDims_WithJoints(t *testing.T) {
	o := testOracleWithJoints(2)
	require.NoError(t, o.SetContactFeet(locotypes.CanonicalFeet()))
	err := o.ComputeEOM([]float32{0, 0, 0.4, 0, 0, 0, 1}, make([]float32, 6))
	require.Error(t, err)
}
