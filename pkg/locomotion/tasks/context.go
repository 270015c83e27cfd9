// Package tasks implements C5: the eight elementary whole-body control
// tasks. Each task builds an equality block (A,b) and/or an inequality
// block (C,d), both sized against the shared optimisation-vector layout
// x = [v̇; F_c; d_des] (locotypes.OptVector), for one priority level of the
// prioritized cascade (C6/C7) to consume.
package tasks

import (
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locomotion/deformation"
	"github.com/itohio/legged-wbc/pkg/locomotion/rbd"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

// ContactMode selects how ContactConstraint relates contact acceleration to
// ground reaction: Rigid enforces zero contact acceleration; SoftKV relates
// it to a Kelvin-Voigt spring-damper deformation carried as an optimisation
// unknown.
type ContactMode int

const (
	Rigid ContactMode = iota
	SoftKV
)

// Gains bundles every PD gain the tracking tasks consume. Kterr/Dterr are
// the soft-contact stiffness/damping used by ContactConstraint in SoftKV
// mode (spec's K_terr/D_terr and kp_terr/kd_terr name the same pair; see
// DESIGN.md).
type Gains struct {
	KpLin, KdLin     vec.Vector3D
	KpAng, KdAng     vec.Vector3D
	KpSwing, KdSwing vec.Vector3D
	Kterr, Dterr     float32
}

// Context is the read-only bundle every task Build call receives: the
// current RBD evaluation, the planner's reference pose, measured feedback,
// and the gains/limits a given priority level is configured with.
type Context struct {
	Oracle rbd.Oracle
	Pose   locotypes.GeneralizedPose

	MeasuredBasePos    vec.Vector3D
	MeasuredBaseVel    vec.Vector3D
	MeasuredBaseQuat   vec.Quaternion
	MeasuredBaseAngVel vec.Vector3D
	MeasuredFeetPos    map[locotypes.FootID]vec.Vector3D
	MeasuredFeetVel    map[locotypes.FootID]vec.Vector3D

	Contact []locotypes.FootID
	NV      int

	Gravity        float32
	SampleTime     float32
	TorqueLimit    float32
	FrictionCoeff  float32
	MaxNormalForce float32
	Mode           ContactMode
	Gains          Gains
	EnergyWeight   float32
	ForceWeight    float32

	History *deformation.History
}

// NX returns the total optimisation-vector dimension for this context.
func (c Context) NX() int { return c.NV + 6*len(c.Contact) }

// Task is one elementary whole-body control objective.
type Task interface {
	// Name identifies the task for logging/diagnostics.
	Name() string
	// Build returns the equality block (A,b) and/or inequality block
	// (C,d) (interpreted as C·x <= d) for ctx. Either pair may be nil if
	// the task contributes only one kind of constraint.
	Build(ctx Context) (A [][]float32, b []float32, C [][]float32, d []float32, err error)
}

func zeros(rows, cols int) [][]float32 {
	m := make([][]float32, rows)
	for i := range m {
		m[i] = make([]float32, cols)
	}
	return m
}
