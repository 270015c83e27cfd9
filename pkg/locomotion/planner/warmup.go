package planner

import (
	"github.com/chewxy/math32"
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
)

// warmupTarget computes the first trot-ready base pose: the terrain plane
// determines the roll/pitch the base settles to, and the resting height is
// the configured CoM height projected onto that attitude plus the plane's
// offset evaluated at the captured initial (x,y).
func warmupTarget(cfg Config, initPos vec.Vector3D, plane [3]float32) (target vec.Vector3D, roll, pitch float32) {
	ax, ay, c := plane[0], plane[1], plane[2]
	roll = math32.Atan(ay)
	pitch = -math32.Atan(ax)

	target = initPos
	target[0] += cfg.ComHeight * math32.Sin(pitch)
	target[1] -= cfg.ComHeight * math32.Sin(roll)
	target[2] = cfg.ComHeight*math32.Cos(roll)*math32.Cos(pitch) + ax*initPos[0] + ay*initPos[1] + c
	return
}

// warmupSpline interpolates base_pos/vel/acc between init and target along a
// 5th-order (zero end-velocity and end-acceleration) spline parameterised by
// tau in [0,1], tau = (t-zeroTime)/initTime.
func warmupSpline(initPos, target vec.Vector3D, tau, initTime float32) (pos, vel, acc vec.Vector3D) {
	fp, fv, fa := splineFraction(Spline5, tau)
	for i := 0; i < 3; i++ {
		delta := target[i] - initPos[i]
		pos[i] = initPos[i] + fp*delta
		vel[i] = fv * delta / initTime
		acc[i] = fa * delta / (initTime * initTime)
	}
	return
}
