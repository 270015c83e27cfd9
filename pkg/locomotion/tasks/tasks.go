package tasks

import (
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

// FloatingBaseEOM is the unconditional top-priority task: the generalized
// equations of motion, M·v̇ - J_c^T·F_c = -h.
type FloatingBaseEOM struct{}

func (FloatingBaseEOM) Name() string { return "floating_base_eom" }

func (FloatingBaseEOM) Build(ctx Context) ([][]float32, []float32, [][]float32, []float32, error) {
	nv, nc := ctx.NV, len(ctx.Contact)
	M := ctx.Oracle.MassMatrix()
	h := ctx.Oracle.Bias()
	Jc := ctx.Oracle.ContactJacobian()
	if len(M) != nv || len(h) != nv {
		return nil, nil, nil, nil, locotypes.Newf("tasks.FloatingBaseEOM", locotypes.PreconditionViolation, "oracle output does not match nv=%d", nv)
	}

	A := zeros(nv, ctx.NX())
	b := make([]float32, nv)
	for r := 0; r < nv; r++ {
		copy(A[r][:nv], M[r])
		for c := 0; c < 3*nc; c++ {
			A[r][nv+c] = -Jc[c][r]
		}
		b[r] = -h[r]
	}
	return A, b, nil, nil, nil
}

// TorqueLimits bounds the actuated (non-floating-base) joint torques implied
// by the dynamics: |M·v̇ + h - J_c^T·F_c| <= tauMax over the joint rows
// (rows 6..nv-1). With a 6-DoF floating-base-only oracle (no joints) this
// task legitimately contributes zero rows.
type TorqueLimits struct{}

func (TorqueLimits) Name() string { return "torque_limits" }

func (TorqueLimits) Build(ctx Context) ([][]float32, []float32, [][]float32, []float32, error) {
	nv, nc := ctx.NV, len(ctx.Contact)
	nj := nv - 6
	if nj <= 0 {
		return nil, nil, nil, nil, nil
	}
	M := ctx.Oracle.MassMatrix()
	h := ctx.Oracle.Bias()
	Jc := ctx.Oracle.ContactJacobian()

	C := zeros(2*nj, ctx.NX())
	d := make([]float32, 2*nj)
	for i := 0; i < nj; i++ {
		row := 6 + i
		for c := 0; c < nv; c++ {
			C[2*i][c] = M[row][c]
			C[2*i+1][c] = -M[row][c]
		}
		for c := 0; c < 3*nc; c++ {
			C[2*i][nv+c] = -Jc[c][row]
			C[2*i+1][nv+c] = Jc[c][row]
		}
		d[2*i] = ctx.TorqueLimit - h[row]
		d[2*i+1] = ctx.TorqueLimit + h[row]
	}
	return nil, nil, C, d, nil
}

// FrictionAndFcModulation constrains each contact force to the pyramidal
// friction cone and a non-negative, bounded normal component: |Fx|<=mu·Fz,
// |Fy|<=mu·Fz, 0<=Fz<=Fmax.
type FrictionAndFcModulation struct{}

func (FrictionAndFcModulation) Name() string { return "friction_and_fc_modulation" }

func (FrictionAndFcModulation) Build(ctx Context) ([][]float32, []float32, [][]float32, []float32, error) {
	nv, nc := ctx.NV, len(ctx.Contact)
	mu := ctx.FrictionCoeff
	rows := 5 * nc
	C := zeros(rows, ctx.NX())
	d := make([]float32, rows)
	for i := 0; i < nc; i++ {
		base := nv + 3*i
		r := 5 * i
		// Fx - mu*Fz <= 0
		C[r][base+0], C[r][base+2] = 1, -mu
		// -Fx - mu*Fz <= 0
		C[r+1][base+0], C[r+1][base+2] = -1, -mu
		// Fy - mu*Fz <= 0
		C[r+2][base+1], C[r+2][base+2] = 1, -mu
		// -Fy - mu*Fz <= 0
		C[r+3][base+1], C[r+3][base+2] = -1, -mu
		// -Fz <= -0  (Fz >= 0), folded with the normal-force cap below
		C[r+4][base+2] = -1
		d[r+4] = 0
		if ctx.MaxNormalForce > 0 {
			d[r+4] += ctx.MaxNormalForce
			C[r+4][base+2] = 1
		}
	}
	return nil, nil, C, d, nil
}

// LinearBaseMotionTracking tracks the planner's base position/velocity/
// acceleration reference at the acceleration level: J_b,lin·v̇ = a_des -
// J̇_b,lin·v, with a_des a PD-corrected feed-forward.
type LinearBaseMotionTracking struct{}

func (LinearBaseMotionTracking) Name() string { return "linear_base_motion_tracking" }

func (LinearBaseMotionTracking) Build(ctx Context) ([][]float32, []float32, [][]float32, []float32, error) {
	nv := ctx.NV
	Jb := ctx.Oracle.BaseJacobian()
	JbDotV := ctx.Oracle.BaseJdotV()

	posErr := sub3(ctx.Pose.BasePos, ctx.MeasuredBasePos)
	velErr := sub3(ctx.Pose.BaseVel, ctx.MeasuredBaseVel)

	A := zeros(3, ctx.NX())
	b := make([]float32, 3)
	for r := 0; r < 3; r++ {
		copy(A[r][:nv], Jb[r])
		aDes := ctx.Pose.BaseAcc[r] + ctx.Gains.KpLin[r]*posErr[r] + ctx.Gains.KdLin[r]*velErr[r]
		b[r] = aDes - JbDotV[r]
	}
	return A, b, nil, nil, nil
}

// AngularBaseMotionTracking tracks the planner's base orientation/angular
// velocity reference using the quaternion log-map error.
type AngularBaseMotionTracking struct{}

func (AngularBaseMotionTracking) Name() string { return "angular_base_motion_tracking" }

func (AngularBaseMotionTracking) Build(ctx Context) ([][]float32, []float32, [][]float32, []float32, error) {
	nv := ctx.NV
	Jb := ctx.Oracle.BaseJacobian()
	JbDotV := ctx.Oracle.BaseJdotV()

	oriErr := quatLogError(ctx.Pose.BaseQuat, ctx.MeasuredBaseQuat)
	angVelErr := sub3(ctx.Pose.BaseAngVel, ctx.MeasuredBaseAngVel)

	A := zeros(3, ctx.NX())
	b := make([]float32, 3)
	for r := 0; r < 3; r++ {
		copy(A[r][:nv], Jb[3+r])
		aDes := ctx.Gains.KpAng[r]*oriErr[r] + ctx.Gains.KdAng[r]*angVelErr[r]
		b[r] = aDes - JbDotV[3+r]
	}
	return A, b, nil, nil, nil
}

// SwingFeetMotionTracking tracks each swing foot's planned position/velocity/
// acceleration: J_s,i·v̇ = a_des,i - J̇_s,i·v.
type SwingFeetMotionTracking struct{}

func (SwingFeetMotionTracking) Name() string { return "swing_feet_motion_tracking" }

func (SwingFeetMotionTracking) Build(ctx Context) ([][]float32, []float32, [][]float32, []float32, error) {
	nv := ctx.NV
	swing := ctx.Pose.SwingFeet()
	if len(swing) == 0 {
		return nil, nil, nil, nil, nil
	}
	Js := ctx.Oracle.SwingJacobian()
	JsDotV := ctx.Oracle.SwingJdotV()
	if len(Js) != 3*len(swing) {
		return nil, nil, nil, nil, locotypes.Newf("tasks.SwingFeetMotionTracking", locotypes.PreconditionViolation, "swing jacobian has %d rows, want %d", len(Js), 3*len(swing))
	}

	rows := 3 * len(swing)
	A := zeros(rows, ctx.NX())
	b := make([]float32, rows)
	for i, f := range swing {
		measPos := ctx.MeasuredFeetPos[f]
		measVel := ctx.MeasuredFeetVel[f]
		posErr := sub3(ctx.Pose.FeetPos[i], measPos)
		velErr := sub3(ctx.Pose.FeetVel[i], measVel)
		for k := 0; k < 3; k++ {
			r := 3*i + k
			copy(A[r][:nv], Js[r])
			aDes := ctx.Pose.FeetAcc[i][k] + ctx.Gains.KpSwing[k]*posErr[k] + ctx.Gains.KdSwing[k]*velErr[k]
			b[r] = aDes - JsDotV[r]
		}
	}
	return A, b, nil, nil, nil
}

// ContactConstraint relates each contact foot's acceleration to the ground.
//
// In Rigid mode it pins contact acceleration to zero: J_c·v̇ = -J̇_c·v.
//
// In SoftKV mode the foot is allowed to penetrate a Kelvin-Voigt terrain
// element by a desired depth d_des, itself an optimisation unknown (the
// last 3·nc block of x). Two independent 3·nc equality row-sets couple it
// in:
//   - kinematic: J_c·v̇ + J̇_c·v = d̈_des, with the second difference
//     d̈_des = (d_des - 2·d_{k-1} + d_{k-2})/Δt² expanded against the
//     deformation history so the only unknowns left are v̇ and d_des.
//   - algebraic: F_c = K_terr·d_des + D_terr·(d_des - d_{k-1})/Δt, coupling
//     the contact-force block to the same d_des unknown.
type ContactConstraint struct{}

func (ContactConstraint) Name() string { return "contact_constraint" }

func (ContactConstraint) Build(ctx Context) ([][]float32, []float32, [][]float32, []float32, error) {
	nv, nc := ctx.NV, len(ctx.Contact)
	if nc == 0 {
		return nil, nil, nil, nil, nil
	}
	Jc := ctx.Oracle.ContactJacobian()
	JcDotV := ctx.Oracle.ContactJdotV()

	if ctx.Mode != SoftKV {
		rows := 3 * nc
		A := zeros(rows, ctx.NX())
		b := make([]float32, rows)
		for r := 0; r < rows; r++ {
			copy(A[r][:nv], Jc[r])
			b[r] = -JcDotV[r]
		}
		return A, b, nil, nil, nil
	}

	if ctx.SampleTime <= 0 {
		return nil, nil, nil, nil, locotypes.Newf("tasks.ContactConstraint", locotypes.PreconditionViolation, "soft_kv mode requires SampleTime > 0, got %v", ctx.SampleTime)
	}
	dt := ctx.SampleTime
	invDt2 := 1 / (dt * dt)
	invDt := 1 / dt
	dDesCol := nv + 3*nc

	rows := 6 * nc
	A := zeros(rows, ctx.NX())
	b := make([]float32, rows)
	for i, f := range ctx.Contact {
		dk1, dk2 := ctx.History.Prev1(f), ctx.History.Prev2(f)
		for k := 0; k < 3; k++ {
			// Kinematic row: J_c·v̇ - d_des/Δt² = -J̇_c·v - (2d_{k-1} - d_{k-2})/Δt².
			kin := 3*i + k
			copy(A[kin][:nv], Jc[kin])
			A[kin][dDesCol+3*i+k] = -invDt2
			b[kin] = -JcDotV[kin] - (2*dk1[k]-dk2[k])*invDt2

			// Algebraic row: F_c - (K_terr + D_terr/Δt)·d_des = -(D_terr/Δt)·d_{k-1}.
			alg := 3*nc + 3*i + k
			A[alg][nv+3*i+k] = 1
			A[alg][dDesCol+3*i+k] = -(ctx.Gains.Kterr + ctx.Gains.Dterr*invDt)
			b[alg] = -ctx.Gains.Dterr * invDt * dk1[k]
		}
	}
	return A, b, nil, nil, nil
}

// EnergyAndForcesOptimization is the lowest-priority regularizer: it prefers
// minimum-norm accelerations and contact forces among whatever the higher
// levels leave underdetermined.
type EnergyAndForcesOptimization struct{}

func (EnergyAndForcesOptimization) Name() string { return "energy_and_forces_optimization" }

func (EnergyAndForcesOptimization) Build(ctx Context) ([][]float32, []float32, [][]float32, []float32, error) {
	nv, nc := ctx.NV, len(ctx.Contact)
	rows := nv + 3*nc
	A := zeros(rows, ctx.NX())
	b := make([]float32, rows)
	for r := 0; r < nv; r++ {
		A[r][r] = ctx.EnergyWeight
	}
	for r := 0; r < 3*nc; r++ {
		A[nv+r][nv+r] = ctx.ForceWeight
	}
	return A, b, nil, nil, nil
}

func sub3(a, b vec.Vector3D) vec.Vector3D {
	return vec.Vector3D{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// quatLogError returns the small-angle orientation error vector (desired
// relative to measured) via the quaternion log map: 2*sign(w)*xyz for the
// relative rotation q_err = q_des * conj(q_meas).
func quatLogError(des, meas vec.Quaternion) vec.Vector3D {
	mx, my, mz, mw := -meas[0], -meas[1], -meas[2], meas[3]
	dx, dy, dz, dw := des[0], des[1], des[2], des[3]
	// q_err = des * conj(meas), Hamilton product, scalar-last storage.
	w := dw*mw - dx*mx - dy*my - dz*mz
	x := dw*mx + dx*mw + dy*mz - dz*my
	y := dw*my - dx*mz + dy*mw + dz*mx
	z := dw*mz + dx*my - dy*mx + dz*mw
	if w < 0 {
		x, y, z = -x, -y, -z
	}
	return vec.Vector3D{2 * x, 2 * y, 2 * z}
}
