package tasks

import (
	"testing"

	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locomotion/deformation"
	"github.com/itohio/legged-wbc/pkg/locomotion/rbd"
	"github.com/itohio/legged-wbc/pkg/locotypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, contact []locotypes.FootID) Context {
	t.Helper()
	offsets := map[locotypes.FootID]vec.Vector3D{
		locotypes.LF: {0.2, 0.15, -0.4},
		locotypes.RF: {0.2, -0.15, -0.4},
		locotypes.LH: {-0.2, 0.15, -0.4},
		locotypes.RH: {-0.2, -0.15, -0.4},
	}
	o := rbd.NewPointMassOracle(10, vec.Vector3D{0.1, 0.2, 0.15}, offsets, 0, 0)
	require.NoError(t, o.SetContactFeet(contact))
	q := []float32{0, 0, 0.4, 0, 0, 0, 1}
	v := make([]float32, 6)
	require.NoError(t, o.ComputeEOM(q, v))
	require.NoError(t, o.ComputeSecondOrderFK(q, v))

	pose := locotypes.DefaultGeneralizedPose()
	pose.BasePos = vec.Vector3D{0, 0, 0.4}
	pose.ContactFeetNames = contact
	for _, f := range locotypes.SwingSet(contact) {
		pose.FeetPos = append(pose.FeetPos, vec.Vector3D{})
		pose.FeetVel = append(pose.FeetVel, vec.Vector3D{})
		pose.FeetAcc = append(pose.FeetAcc, vec.Vector3D{})
	}

	return Context{
		Oracle:             o,
		Pose:               pose,
		MeasuredBaseQuat:   vec.Quaternion{0, 0, 0, 1},
		MeasuredFeetPos:    map[locotypes.FootID]vec.Vector3D{},
		MeasuredFeetVel:    map[locotypes.FootID]vec.Vector3D{},
		Contact:            contact,
		NV:                 6,
		Gravity:            9.81,
		SampleTime:         0.004,
		TorqueLimit:        40,
		FrictionCoeff:      0.6,
		MaxNormalForce:     200,
		Mode:               Rigid,
		Gains:              Gains{KpLin: vec.Vector3D{50, 50, 50}, KdLin: vec.Vector3D{10, 10, 10}, KpAng: vec.Vector3D{50, 50, 50}, KdAng: vec.Vector3D{10, 10, 10}, KpSwing: vec.Vector3D{100, 100, 100}, KdSwing: vec.Vector3D{20, 20, 20}, Kterr: 2000, Dterr: 50},
		EnergyWeight:       1e-3,
		ForceWeight:        1e-4,
		History:            deformation.New(),
	}
}

func Test_FloatingBaseEOM_ShapesMatchNVAndContact(t *testing.T) {
	ctx := testContext(t, locotypes.CanonicalFeet())
	A, b, C, d, err := FloatingBaseEOM{}.Build(ctx)
	require.NoError(t, err)
	assert.Nil(t, C)
	assert.Nil(t, d)
	assert.Len(t, A, 6)
	assert.Len(t, A[0], ctx.NX())
	assert.Len(t, b, 6)
}

func Test_TorqueLimits_EmptyForPureFloatingBase(t *testing.T) {
	ctx := testContext(t, locotypes.CanonicalFeet())
	A, b, C, d, err := TorqueLimits{}.Build(ctx)
	require.NoError(t, err)
	assert.Nil(t, A)
	assert.Nil(t, b)
	assert.Nil(t, C)
	assert.Nil(t, d)
}

func Test_FrictionAndFcModulation_FiveRowsPerContactFoot(t *testing.T) {
	ctx := testContext(t, []locotypes.FootID{locotypes.LF, locotypes.RH})
	_, _, C, d, err := FrictionAndFcModulation{}.Build(ctx)
	require.NoError(t, err)
	assert.Len(t, C, 10)
	assert.Len(t, d, 10)
}

func Test_ContactConstraint_RigidModeZeroTargetsContactAcceleration(t *testing.T) {
	ctx := testContext(t, locotypes.CanonicalFeet())
	A, b, _, _, err := ContactConstraint{}.Build(ctx)
	require.NoError(t, err)
	assert.Len(t, A, 12)
	assert.Len(t, b, 12)
}

func Test_ContactConstraint_SoftKVMode_TwoRowSetsPerFoot(t *testing.T) {
	contact := []locotypes.FootID{locotypes.LF, locotypes.RH}
	ctx := testContext(t, contact)
	ctx.Mode = SoftKV
	ctx.History.Update(contact, []vec.Vector3D{{0, 0, -0.001}, {0, 0, -0.002}})
	ctx.History.Update(contact, []vec.Vector3D{{0, 0, -0.0015}, {0, 0, -0.0025}})

	A, b, C, d, err := ContactConstraint{}.Build(ctx)
	require.NoError(t, err)
	assert.Nil(t, C)
	assert.Nil(t, d)
	require.Len(t, A, 12)
	require.Len(t, b, 12)

	nv, nc := ctx.NV, len(contact)
	dt := ctx.SampleTime
	dDesCol := nv + 3*nc

	// Kinematic row (foot 0, z-component): A references v̇ via J_c, and
	// -1/Δt² on its own d_des column, nothing else.
	kinRow := 2 // i=0, k=2 (z)
	assert.Equal(t, float32(-1/(dt*dt)), A[kinRow][dDesCol+2])

	// Algebraic row (foot 0, z-component): F_c coefficient is 1, d_des
	// coefficient is -(Kterr + Dterr/Δt).
	algRow := 3*nc + 2
	assert.Equal(t, float32(1), A[algRow][nv+2])
	assert.InDelta(t, -(ctx.Gains.Kterr + ctx.Gains.Dterr/dt), A[algRow][dDesCol+2], 1e-6)
}

func Test_ContactConstraint_SoftKVMode_RejectsZeroSampleTime(t *testing.T) {
	ctx := testContext(t, locotypes.CanonicalFeet())
	ctx.Mode = SoftKV
	ctx.SampleTime = 0
	_, _, _, _, err := ContactConstraint{}.Build(ctx)
	require.Error(t, err)
}

func Test_SwingFeetMotionTracking_NoSwingFeet_ReturnsNil(t *testing.T) {
	ctx := testContext(t, locotypes.CanonicalFeet())
	A, b, C, d, err := SwingFeetMotionTracking{}.Build(ctx)
	require.NoError(t, err)
	assert.Nil(t, A)
	assert.Nil(t, b)
	assert.Nil(t, C)
	assert.Nil(t, d)
}

func Test_SwingFeetMotionTracking_TracksEachSwingFootBlock(t *testing.T) {
	ctx := testContext(t, []locotypes.FootID{locotypes.LF, locotypes.RH})
	A, b, _, _, err := SwingFeetMotionTracking{}.Build(ctx)
	require.NoError(t, err)
	assert.Len(t, A, 6)
	assert.Len(t, b, 6)
}

func Test_EnergyAndForcesOptimization_DiagonalRegularizer(t *testing.T) {
	ctx := testContext(t, locotypes.CanonicalFeet())
	A, b, _, _, err := EnergyAndForcesOptimization{}.Build(ctx)
	require.NoError(t, err)
	assert.Len(t, A, ctx.NV+3*len(ctx.Contact))
	for _, v := range b {
		assert.Equal(t, float32(0), v)
	}
}
