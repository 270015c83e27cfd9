package planner

import (
	"github.com/chewxy/math32"
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

// diagonalPairs is the fixed generic diagonal-trot partition: front-left
// with rear-right, front-right with rear-left. Stance/swing alternate
// between the two pairs every step.
var diagonalPairs = [2][]locotypes.FootID{
	{locotypes.LF, locotypes.RH},
	{locotypes.RF, locotypes.LH},
}

// swingTrajectory synthesises the 3D swing-foot position/velocity/
// acceleration at normalised phase s in [0,1] of a step of duration T,
// following spec §4.2: horizontal component uses the configured
// interpolation method delayed by phaseDelay·T, vertical component is a
// symmetric arc peaking at stepHeight at phase 0.5.
func swingTrajectory(cfg Config, start, target vec.Vector3D, s float32) (pos, vel, acc vec.Vector3D) {
	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	T := cfg.StepDuration
	phi := cfg.PhaseDelay

	var h, dhdt float32
	if s > phi {
		denom := 1 - phi
		h = (s - phi) / denom
		if h > 1 {
			h = 1
		}
		dhdt = 1.0 / (denom * T)
	}
	fp, fv, fa := splineFraction(cfg.Interpolation, h)

	for axis := 0; axis < 2; axis++ {
		delta := target[axis] - start[axis]
		pos[axis] = start[axis] + fp*delta
		vel[axis] = fv * dhdt * delta
		acc[axis] = fa * dhdt * dhdt * delta
	}

	deltaZ := target[2] - start[2]
	pos[2] = start[2] + s*deltaZ + 4*cfg.StepHeight*s*(1-s)
	vel[2] = deltaZ/T + 4*cfg.StepHeight*(1-2*s)/T
	acc[2] = -8 * cfg.StepHeight / (T * T)
	return
}

// footstepTarget implements the LIP capture-point footstep law: the touch-
// down point for a foot currently lifting off is placed so the divergent
// component of motion lands on the desired reference at the next step.
func footstepTarget(cfg Config, comPos, comVel vec.Vector3D, velCmdWorld [2]float32, nominalOffsetWorld vec.Vector3D, plane [3]float32) vec.Vector3D {
	omega := math32.Sqrt(cfg.Gravity / cfg.ComHeight)
	T := cfg.StepDuration

	var target vec.Vector3D
	for axis := 0; axis < 2; axis++ {
		capture := comVel[axis] / omega
		raibert := (T / 2) * (comVel[axis] - velCmdWorld[axis])
		target[axis] = comPos[axis] + nominalOffsetWorld[axis] + capture + raibert
	}
	target[2] = plane[0]*target[0] + plane[1]*target[1] + plane[2] - cfg.FootPenetration
	return target
}

// rotateWorldYaw rotates a 2D (x,y) vector by yaw about Z.
func rotateWorldYaw(yaw float32, v [2]float32) [2]float32 {
	c, s := math32.Cos(yaw), math32.Sin(yaw)
	return [2]float32{c*v[0] - s*v[1], s*v[0] + c*v[1]}
}
