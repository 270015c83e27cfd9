package hqp

import (
	"testing"

	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locomotion/deformation"
	"github.com/itohio/legged-wbc/pkg/locomotion/prioritized"
	"github.com/itohio/legged-wbc/pkg/locomotion/rbd"
	"github.com/itohio/legged-wbc/pkg/locomotion/tasks"
	"github.com/itohio/legged-wbc/pkg/locotypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) tasks.Context {
	t.Helper()
	offsets := map[locotypes.FootID]vec.Vector3D{
		locotypes.LF: {0.2, 0.15, -0.4},
		locotypes.RF: {0.2, -0.15, -0.4},
		locotypes.LH: {-0.2, 0.15, -0.4},
		locotypes.RH: {-0.2, -0.15, -0.4},
	}
	contact := locotypes.CanonicalFeet()
	o := rbd.NewPointMassOracle(10, vec.Vector3D{0.1, 0.2, 0.15}, offsets, 0, 0)
	require.NoError(t, o.SetContactFeet(contact))
	q := []float32{0, 0, 0.4, 0, 0, 0, 1}
	v := make([]float32, 6)
	require.NoError(t, o.ComputeEOM(q, v))
	require.NoError(t, o.ComputeSecondOrderFK(q, v))

	pose := locotypes.DefaultGeneralizedPose()
	pose.BasePos = vec.Vector3D{0, 0, 0.4}
	pose.ContactFeetNames = contact

	return tasks.Context{
		Oracle:           o,
		Pose:             pose,
		MeasuredBaseQuat: vec.Quaternion{0, 0, 0, 1},
		MeasuredFeetPos:  map[locotypes.FootID]vec.Vector3D{},
		MeasuredFeetVel:  map[locotypes.FootID]vec.Vector3D{},
		Contact:          contact,
		NV:               6,
		Gravity:          9.81,
		TorqueLimit:      40,
		FrictionCoeff:    0.6,
		MaxNormalForce:   200,
		Mode:             tasks.Rigid,
		Gains: tasks.Gains{
			KpLin: vec.Vector3D{50, 50, 50}, KdLin: vec.Vector3D{10, 10, 10},
			KpAng: vec.Vector3D{50, 50, 50}, KdAng: vec.Vector3D{10, 10, 10},
			KpSwing: vec.Vector3D{100, 100, 100}, KdSwing: vec.Vector3D{20, 20, 20},
		},
		EnergyWeight: 1e-3,
		ForceWeight:  1e-4,
		History:      deformation.New(),
	}
}

func Test_Solve_StandingStill_ProducesBalancedContactForces(t *testing.T) {
	ctx := testContext(t)
	sol, err := Solve(prioritized.DefaultStack(), ctx)
	require.NoError(t, err)
	require.Len(t, sol.X, ctx.NX())
	require.Len(t, sol.Diagnostics, 5)

	var totalFz float32
	forces := sol.X[ctx.NV : ctx.NV+3*len(ctx.Contact)]
	for i := 0; i < len(ctx.Contact); i++ {
		totalFz += forces[3*i+2]
	}
	assert.InDelta(t, 10*9.81, totalFz, 5.0)
}

func Test_Solve_NeverReturnsErrorOnDegenerateLevel(t *testing.T) {
	// The point-mass oracle has no joints, so TorqueLimits contributes zero
	// rows; the level must still solve (via friction) without the cascade
	// erroring or flagging rank loss/infeasibility.
	ctx := testContext(t)
	sol, err := Solve(prioritized.DefaultStack(), ctx)
	require.NoError(t, err)
	require.Len(t, sol.Diagnostics, 5)
	for _, d := range sol.Diagnostics {
		assert.False(t, d.RankLoss, d.Name)
		assert.False(t, d.Infeasible, d.Name)
	}
}
