package rbd

import (
	"github.com/itohio/legged-wbc/pkg/core/math/mat"
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

const gravity = float32(9.81)

// PointMassOracle is a reference Oracle: a single rigid body (the floating
// base) carrying massless point-contact legs attached at fixed body-frame
// offsets, plus an optional bank of actuated joints with constant diagonal
// inertia and no kinematic coupling to the feet. It is not a URDF/Pinocchio
// binding — it exists to exercise every shape/invariant spec §8 names
// (including torque recovery over a non-empty joint space) without a real
// dynamics engine. A real deployment's Oracle would instead have nonzero
// leg-Jacobian columns over the joint block.
type PointMassOracle struct {
	mass         float32
	inertiaDiag  vec.Vector3D
	footOffsets  map[locotypes.FootID]vec.Vector3D
	numJoints    int
	jointInertia float32

	contact, swing []locotypes.FootID

	q, v []float32

	M          mat.Matrix
	h          vec.Vector
	jc, jb, js mat.Matrix
	jcDotV     vec.Vector
	jbDotV     vec.Vector
	jsDotV     vec.Vector
	oRb        mat.Matrix
	swingPos   []vec.Vector3D
}

// NewPointMassOracle builds a reference oracle with the given total mass,
// diagonal base-frame inertia, nominal body-frame foot offsets (one per
// canonical foot), and numJoints actuated joints each carrying jointInertia
// of constant diagonal inertia. Pass numJoints=0 for a pure 6-DoF floating
// base.
func NewPointMassOracle(mass float32, inertiaDiag vec.Vector3D, footOffsets map[locotypes.FootID]vec.Vector3D, numJoints int, jointInertia float32) *PointMassOracle {
	o := &PointMassOracle{
		mass:         mass,
		inertiaDiag:  inertiaDiag,
		footOffsets:  footOffsets,
		numJoints:    numJoints,
		jointInertia: jointInertia,
		contact:      locotypes.CanonicalFeet(),
	}
	nv := o.NV()
	o.M = mat.New(nv, nv)
	o.M[0][0], o.M[1][1], o.M[2][2] = mass, mass, mass
	o.M[3][3], o.M[4][4], o.M[5][5] = inertiaDiag[0], inertiaDiag[1], inertiaDiag[2]
	for i := 0; i < numJoints; i++ {
		o.M[6+i][6+i] = jointInertia
	}
	o.oRb = mat.New(3, 3)
	o.oRb.Eye()
	return o
}

func (o *PointMassOracle) NV() int { return 6 + o.numJoints }

func (o *PointMassOracle) SetContactFeet(contact []locotypes.FootID) error {
	o.contact = append([]locotypes.FootID(nil), contact...)
	o.swing = locotypes.SwingSet(contact)
	return nil
}

func skew(r vec.Vector3D) mat.Matrix {
	m := mat.New(3, 3)
	m[0][0], m[0][1], m[0][2] = 0, -r[2], r[1]
	m[1][0], m[1][1], m[1][2] = r[2], 0, -r[0]
	m[2][0], m[2][1], m[2][2] = -r[1], r[0], 0
	return m
}

func cross(a, b vec.Vector3D) vec.Vector3D {
	return vec.Vector3D{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// pointJacobian returns the 3xnv Jacobian block mapping the generalized
// velocity v = [v_lin; ω; q̇_j] to the world velocity of a point rigidly
// offset by r from the base origin: v_point = v_lin - skew(r)*ω. The joint
// columns are zero: this model's legs attach at fixed body-frame offsets
// independent of joint angle.
func pointJacobian(r vec.Vector3D, nv int) mat.Matrix {
	j := mat.New(3, nv)
	j[0][0], j[1][1], j[2][2] = 1, 1, 1
	s := skew(r)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			j[i][3+k] = -s[i][k]
		}
	}
	return j
}

func stackJacobians(blocks []mat.Matrix, nv int) mat.Matrix {
	rows := 3 * len(blocks)
	m := mat.New(rows, nv)
	for bi, b := range blocks {
		for i := 0; i < 3; i++ {
			copy(m[3*bi+i], b[i])
		}
	}
	return m
}

// ComputeEOM validates (q,v), then recomputes M (constant here), h (gravity
// bias plus zero joint rows), and the base/contact/swing Jacobians from the
// current base pose.
func (o *PointMassOracle) ComputeEOM(q, v []float32) error {
	nv := o.NV()
	if len(q) != nv+1 {
		return locotypes.Newf("rbd.PointMassOracle", locotypes.PreconditionViolation, "len(q)=%d, want %d", len(q), nv+1)
	}
	if len(v) != nv {
		return locotypes.Newf("rbd.PointMassOracle", locotypes.PreconditionViolation, "len(v)=%d, want %d", len(v), nv)
	}
	o.q = append([]float32(nil), q...)
	o.v = append([]float32(nil), v...)

	basePos := vec.Vector3D{q[0], q[1], q[2]}
	quat := vec.Quaternion{q[3], q[4], q[5], q[6]}

	R := mat.New(3, 3)
	R.Orientation(&quat)
	o.oRb = R

	o.h = make(vec.Vector, nv)
	o.h[2] = o.mass * gravity

	o.jb = mat.New(6, nv)
	o.jb[0][0], o.jb[1][1], o.jb[2][2] = 1, 1, 1
	o.jb[3][3], o.jb[4][4], o.jb[5][5] = 1, 1, 1
	o.jbDotV = make(vec.Vector, 6)

	contactBlocks := make([]mat.Matrix, 0, len(o.contact))
	swingBlocks := make([]mat.Matrix, 0, len(o.swing))
	swingPos := make([]vec.Vector3D, 0, len(o.swing))

	worldOffset := func(f locotypes.FootID) vec.Vector3D {
		body := o.footOffsets[f]
		var rotated vec.Vector3D
		for i := 0; i < 3; i++ {
			rotated[i] = R[i][0]*body[0] + R[i][1]*body[1] + R[i][2]*body[2]
		}
		return rotated
	}

	for _, f := range o.contact {
		r := worldOffset(f)
		contactBlocks = append(contactBlocks, pointJacobian(r, nv))
	}
	for _, f := range o.swing {
		r := worldOffset(f)
		swingBlocks = append(swingBlocks, pointJacobian(r, nv))
		swingPos = append(swingPos, vec.Vector3D{basePos[0] + r[0], basePos[1] + r[1], basePos[2] + r[2]})
	}

	o.jc = stackJacobians(contactBlocks, nv)
	o.js = stackJacobians(swingBlocks, nv)
	o.swingPos = swingPos

	return nil
}

// ComputeSecondOrderFK recomputes the J̇*v centripetal terms for the base
// pose/velocity cached by the preceding ComputeEOM call.
func (o *PointMassOracle) ComputeSecondOrderFK(q, v []float32) error {
	if o.q == nil {
		return locotypes.Newf("rbd.PointMassOracle", locotypes.PreconditionViolation, "ComputeSecondOrderFK called before ComputeEOM")
	}
	omega := vec.Vector3D{v[3], v[4], v[5]}

	quat := vec.Quaternion{o.q[3], o.q[4], o.q[5], o.q[6]}
	R := mat.New(3, 3)
	R.Orientation(&quat)

	worldOffset := func(f locotypes.FootID) vec.Vector3D {
		body := o.footOffsets[f]
		var rotated vec.Vector3D
		for i := 0; i < 3; i++ {
			rotated[i] = R[i][0]*body[0] + R[i][1]*body[1] + R[i][2]*body[2]
		}
		return rotated
	}

	jdotv := func(feet []locotypes.FootID) vec.Vector {
		out := make(vec.Vector, 3*len(feet))
		for i, f := range feet {
			r := worldOffset(f)
			centripetal := cross(omega, cross(omega, r))
			out[3*i+0] = centripetal[0]
			out[3*i+1] = centripetal[1]
			out[3*i+2] = centripetal[2]
		}
		return out
	}

	o.jcDotV = jdotv(o.contact)
	o.jsDotV = jdotv(o.swing)
	o.jbDotV = make(vec.Vector, 6)
	return nil
}

func (o *PointMassOracle) MassMatrix() mat.Matrix       { return o.M }
func (o *PointMassOracle) Bias() vec.Vector              { return o.h }
func (o *PointMassOracle) ContactJacobian() mat.Matrix   { return o.jc }
func (o *PointMassOracle) BaseJacobian() mat.Matrix      { return o.jb }
func (o *PointMassOracle) SwingJacobian() mat.Matrix     { return o.js }
func (o *PointMassOracle) ContactJdotV() vec.Vector      { return o.jcDotV }
func (o *PointMassOracle) BaseJdotV() vec.Vector         { return o.jbDotV }
func (o *PointMassOracle) SwingJdotV() vec.Vector        { return o.jsDotV }
func (o *PointMassOracle) BaseRotation() mat.Matrix      { return o.oRb }
func (o *PointMassOracle) SwingFootPositions() []vec.Vector3D { return o.swingPos }

var _ Oracle = (*PointMassOracle)(nil)
