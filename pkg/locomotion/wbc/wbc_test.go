package wbc

import (
	"testing"

	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locomotion/planner"
	"github.com/itohio/legged-wbc/pkg/locomotion/rbd"
	"github.com/itohio/legged-wbc/pkg/locotypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snap SensorSnapshot
}

func (f fakeSource) Latest() (SensorSnapshot, bool) { return f.snap, true }

type fakeSink struct {
	published [][]float32
}

func (f *fakeSink) Publish(torques []float32) error {
	f.published = append(f.published, torques)
	return nil
}

func testSnapshot() SensorSnapshot {
	return SensorSnapshot{
		Q:                  []float32{0, 0, 0.4, 0, 0, 0, 1, 0.1, -0.1},
		V:                  make([]float32, 8),
		BaseQuatMeasured:   vec.Quaternion{0, 0, 0, 1},
		BaseAngVelMeasured: vec.Vector3D{},
		BaseAccMeasured:    vec.Vector3D{},
		FeetPosMeasured: map[locotypes.FootID]vec.Vector3D{
			locotypes.LF: {0.2, 0.15, 0},
			locotypes.RF: {0.2, -0.15, 0},
			locotypes.LH: {-0.2, 0.15, 0},
			locotypes.RH: {-0.2, -0.15, 0},
		},
		FeetVelMeasured: map[locotypes.FootID]vec.Vector3D{},
		ContactEstimate: locotypes.CanonicalFeet(),
		Plane:           [3]float32{0, 0, 0},
		StalenessSeconds: 0,
	}
}

// testOracle carries two actuated joints (beyond the 6-DoF floating base)
// so that both holdTorques and jointTorques exercise their actuated-joint
// path rather than always short-circuiting to nil.
func testOracle() rbd.Oracle {
	offsets := map[locotypes.FootID]vec.Vector3D{
		locotypes.LF: {0.2, 0.15, -0.4},
		locotypes.RF: {0.2, -0.15, -0.4},
		locotypes.LH: {-0.2, 0.15, -0.4},
		locotypes.RH: {-0.2, -0.15, -0.4},
	}
	return rbd.NewPointMassOracle(10, vec.Vector3D{0.1, 0.2, 0.15}, offsets, 2, 0.05)
}

func Test_Step_RejectsStaleSnapshot(t *testing.T) {
	c, err := New(testOracle(), DefaultConfig(), map[locotypes.FootID]vec.Vector3D{
		locotypes.LF: {0.2, 0.15, -0.4}, locotypes.RF: {0.2, -0.15, -0.4},
		locotypes.LH: {-0.2, 0.15, -0.4}, locotypes.RH: {-0.2, -0.15, -0.4},
	})
	require.NoError(t, err)

	snap := testSnapshot()
	snap.StalenessSeconds = 1.0
	sink := &fakeSink{}
	err = c.Step(fakeSource{snap: snap}, sink, 0)
	require.Error(t, err)
}

func Test_Step_HoldsDuringWarmupThenSolvesOnceNormal(t *testing.T) {
	offsets := map[locotypes.FootID]vec.Vector3D{
		locotypes.LF: {0.2, 0.15, -0.4}, locotypes.RF: {0.2, -0.15, -0.4},
		locotypes.LH: {-0.2, 0.15, -0.4}, locotypes.RH: {-0.2, -0.15, -0.4},
	}
	c, err := New(testOracle(), DefaultConfig(), offsets,
		planner.WithSampleTime(0.01), planner.WithWarmup(0.01, 0.01))
	require.NoError(t, err)

	snap := testSnapshot()
	sink := &fakeSink{}
	for c.WarmingUp() {
		require.NoError(t, c.Step(fakeSource{snap: snap}, sink, 0))
		require.NotEmpty(t, sink.published)
		assert.Len(t, sink.published[len(sink.published)-1], 2, "holdTorques should emit one PD torque per actuated joint")
	}

	require.NoError(t, c.Step(fakeSource{snap: snap}, sink, 0))
	sol := c.LastSolution()
	assert.NotEmpty(t, sol.X)
	assert.Len(t, sol.Diagnostics, 5)
	assert.Len(t, sink.published[len(sink.published)-1], 2, "jointTorques should recover one torque per actuated joint")
}

func Test_Step_CountsOverrun(t *testing.T) {
	offsets := map[locotypes.FootID]vec.Vector3D{
		locotypes.LF: {0.2, 0.15, -0.4}, locotypes.RF: {0.2, -0.15, -0.4},
		locotypes.LH: {-0.2, 0.15, -0.4}, locotypes.RH: {-0.2, -0.15, -0.4},
	}
	cfg := DefaultConfig()
	cfg.SampleTime = 0.004
	c, err := New(testOracle(), cfg, offsets)
	require.NoError(t, err)

	snap := testSnapshot()
	sink := &fakeSink{}
	require.NoError(t, c.Step(fakeSource{snap: snap}, sink, 0.001))
	assert.Equal(t, uint64(0), c.OverrunCount())

	require.NoError(t, c.Step(fakeSource{snap: snap}, sink, 0.010))
	assert.Equal(t, uint64(1), c.OverrunCount())
}
