package planner

import (
	"github.com/chewxy/math32"
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
)

// rotateByQuat rotates v by the unit quaternion q (scalar-last x,y,z,w):
// v' = v + 2w(q_xyz × v) + 2(q_xyz × (q_xyz × v)).
func rotateByQuat(q vec.Quaternion, v vec.Vector3D) vec.Vector3D {
	qxyz := vec.Vector3D{q[0], q[1], q[2]}
	w := q[3]
	t := cross2(qxyz, v)
	t[0] *= 2
	t[1] *= 2
	t[2] *= 2
	u := cross2(qxyz, t)
	return vec.Vector3D{
		v[0] + w*t[0] + u[0],
		v[1] + w*t[1] + u[1],
		v[2] + w*t[2] + u[2],
	}
}

func cross2(a, b vec.Vector3D) vec.Vector3D {
	return vec.Vector3D{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// conjugate negates the vector part of a scalar-last unit quaternion.
func conjugate(q vec.Quaternion) vec.Quaternion {
	return vec.Quaternion{-q[0], -q[1], -q[2], q[3]}
}

// yawFromQuat extracts the yaw (rotation about world Z) of a scalar-last
// unit quaternion: atan2(2(wz+xy), 1-2(y²+z²)).
func yawFromQuat(q vec.Quaternion) float32 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	return math32.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
}

// eulerToQuat builds a scalar-last unit quaternion from roll/pitch/yaw
// (Tait-Bryan, applied yaw-pitch-roll).
func eulerToQuat(roll, pitch, yaw float32) vec.Quaternion {
	cr, sr := math32.Cos(roll*0.5), math32.Sin(roll*0.5)
	cp, sp := math32.Cos(pitch*0.5), math32.Sin(pitch*0.5)
	cy, sy := math32.Cos(yaw*0.5), math32.Sin(yaw*0.5)

	w := cr*cp*cy + sr*sp*sy
	x := sr*cp*cy - cr*sp*sy
	y := cr*sp*cy + sr*cp*sy
	z := cr*cp*sy - sr*sp*cy
	return vec.Quaternion{x, y, z, w}
}

// splineFraction returns the interpolation fraction s(t) and its first two
// derivatives w.r.t. the normalised phase t (t in [0,1]) for the selected
// interpolation method. Derivatives are w.r.t. t itself; callers scale by
// dt/dτ (and its square) to get time derivatives.
func splineFraction(method InterpolationMethod, t float32) (pos, vel, acc float32) {
	switch method {
	case Linear:
		return t, 1, 0
	case Spline3:
		return 3*t*t - 2*t*t*t, 6*t - 6*t*t, 6 - 12*t
	case Spline5:
		t2, t3, t4 := t*t, t*t*t, t*t*t*t
		return 6*t4*t - 15*t4 + 10*t3,
			30*t4 - 60*t3 + 30*t2,
			120*t3 - 180*t2 + 60*t
	default:
		return t, 1, 0
	}
}
