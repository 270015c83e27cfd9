package planner

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locotypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOffsets() map[locotypes.FootID]vec.Vector3D {
	return map[locotypes.FootID]vec.Vector3D{
		locotypes.LF: {0.2, 0.15, -0.5},
		locotypes.RF: {0.2, -0.15, -0.5},
		locotypes.LH: {-0.2, 0.15, -0.5},
		locotypes.RH: {-0.2, -0.15, -0.5},
	}
}

func flatInputs() Inputs {
	return Inputs{
		ComPos:           vec.Vector3D{0, 0, 0.5},
		BaseQuatMeasured: vec.Quaternion{0, 0, 0, 1},
		Plane:            [3]float32{0, 0, 0},
		FeetPosMeasured: map[locotypes.FootID]vec.Vector3D{
			locotypes.LF: {0.2, 0.15, 0},
			locotypes.RF: {0.2, -0.15, 0},
			locotypes.LH: {-0.2, 0.15, 0},
			locotypes.RH: {-0.2, -0.15, 0},
		},
	}
}

func runTicks(t *testing.T, p *Planner, n int, in Inputs) locotypes.GeneralizedPose {
	t.Helper()
	var pose locotypes.GeneralizedPose
	var err error
	for i := 0; i < n; i++ {
		pose, err = p.Update(in)
		require.NoError(t, err)
	}
	return pose
}

func Test_New_RejectsBadAccelFilterParams(t *testing.T) {
	_, err := New(testOffsets(), WithAccFilter(2, 0))
	require.Error(t, err)
}

func Test_Update_RejectsNonFiniteInputs(t *testing.T) {
	p, err := New(testOffsets(), WithSampleTime(0.004))
	require.NoError(t, err)

	bad := flatInputs()
	bad.ComPos[0] = math32.NaN()
	_, err = p.Update(bad)
	require.Error(t, err)
}

func Test_Update_ZeroCommand_HoldsComInPlace(t *testing.T) {
	p, err := New(testOffsets(), WithSampleTime(0.004), WithWarmup(0.02, 0.04))
	require.NoError(t, err)

	in := flatInputs()
	steps := int((0.02 + 0.04) / 0.004) + 1
	for i := 0; i < steps; i++ {
		_, err = p.Update(in)
		require.NoError(t, err)
	}
	require.True(t, !p.WarmingUp(), "planner should have entered normal phase")

	var last locotypes.GeneralizedPose
	for i := 0; i < 500; i++ {
		last, err = p.Update(in)
		require.NoError(t, err)
	}

	assert.InDelta(t, 0, last.BasePos[0], 1e-4)
	assert.InDelta(t, 0, last.BasePos[1], 1e-4)
	assert.InDelta(t, 0.5, last.BasePos[2], 1e-3)
	assert.Len(t, last.SwingFeet(), 2)
	assert.Len(t, last.FeetPos, 2)
}

func Test_Update_WarmupThenNormal_TransitionsPhases(t *testing.T) {
	p, err := New(testOffsets(), WithSampleTime(0.01), WithWarmup(0.02, 0.03))
	require.NoError(t, err)

	in := flatInputs()
	for p.WarmingUp() {
		_, err := p.Update(in)
		require.NoError(t, err)
	}
	assert.False(t, p.WarmingUp())
}

func Test_SampleTrajectories_EmptyDuringWarmup(t *testing.T) {
	p, err := New(testOffsets(), WithSampleTime(0.004))
	require.NoError(t, err)
	assert.Nil(t, p.SampleTrajectories(5))
}

func Test_SampleTrajectories_ReturnsSwingFeetDuringNormal(t *testing.T) {
	p, err := New(testOffsets(), WithSampleTime(0.004), WithWarmup(0.01, 0.01))
	require.NoError(t, err)

	in := flatInputs()
	for p.WarmingUp() {
		_, err := p.Update(in)
		require.NoError(t, err)
	}

	samples := p.SampleTrajectories(5)
	require.Len(t, samples, 5)
	for _, s := range samples {
		assert.Len(t, s.Positions, 2)
	}
}

func Test_SetStepDuration_RejectsNonPositive(t *testing.T) {
	p, err := New(testOffsets())
	require.NoError(t, err)
	require.Error(t, p.SetStepDuration(0))
	require.Error(t, p.SetStepDuration(-1))
	require.NoError(t, p.SetStepDuration(0.3))
}
