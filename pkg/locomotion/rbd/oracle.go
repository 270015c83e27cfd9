// Package rbd declares the external rigid-body-dynamics collaborator
// contract (C1) and provides a lightweight reference implementation for
// tests. Real deployments inject their own Oracle (e.g. a cgo
// Pinocchio/RBDL binding); this module never assumes one.
package rbd

import (
	"github.com/itohio/legged-wbc/pkg/core/math/mat"
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

// Oracle is the RBD contract the whole-body controller drives every tick:
// given (q,v) and the current contact/swing partition, it produces the mass
// matrix, bias forces, and the three Jacobians (and their time-derivatives
// times v) that the control-task builder needs.
type Oracle interface {
	// ComputeEOM updates kinematics and the equations-of-motion quantities:
	// M, h, Jc, Jb, Js, base rotation, swing foot positions.
	ComputeEOM(q, v []float32) error
	// ComputeSecondOrderFK updates the Jacobian-time-derivative-times-v terms.
	ComputeSecondOrderFK(q, v []float32) error
	// SetContactFeet declares which feet are in contact vs swing for the
	// upcoming ComputeEOM/ComputeSecondOrderFK pair; reorders Jc/Js rows.
	SetContactFeet(contact []locotypes.FootID) error

	MassMatrix() mat.Matrix  // M, nv x nv
	Bias() vec.Vector        // h, nv
	ContactJacobian() mat.Matrix // Jc, 3*nc x nv
	BaseJacobian() mat.Matrix    // Jb, 6 x nv
	SwingJacobian() mat.Matrix   // Js, 3*ns x nv

	ContactJdotV() vec.Vector // Jc_dot * v
	BaseJdotV() vec.Vector    // Jb_dot * v
	SwingJdotV() vec.Vector   // Js_dot * v

	BaseRotation() mat.Matrix // oRb, 3x3
	SwingFootPositions() []vec.Vector3D

	NV() int
}
