// Package locotypes defines the shared data model that flows between the
// planner (C2), the control-task builder (C5), and the whole-body controller
// (C8): the generalized pose contract, the optimisation-vector layout, foot
// identity, and the error taxonomy every component reports through.
package locotypes

import (
	"fmt"

	"github.com/itohio/legged-wbc/pkg/core/math/vec"
)

// FootID names one of the four canonical feet.
type FootID int

const (
	LF FootID = iota
	RF
	LH
	RH
)

func (f FootID) String() string {
	switch f {
	case LF:
		return "LF"
	case RF:
		return "RF"
	case LH:
		return "LH"
	case RH:
		return "RH"
	default:
		return fmt.Sprintf("FootID(%d)", int(f))
	}
}

// CanonicalFeet returns the fixed generic foot order used everywhere
// downstream: Jacobian rows, swing/contact slices, and deformation history
// all align against this order.
func CanonicalFeet() []FootID {
	return []FootID{LF, RF, LH, RH}
}

// Contains reports whether id appears in the set.
func Contains(set []FootID, id FootID) bool {
	for _, f := range set {
		if f == id {
			return true
		}
	}
	return false
}

// SwingSet returns CanonicalFeet() minus contact, preserving canonical order.
func SwingSet(contact []FootID) []FootID {
	swing := make([]FootID, 0, 4)
	for _, f := range CanonicalFeet() {
		if !Contains(contact, f) {
			swing = append(swing, f)
		}
	}
	return swing
}

// GeneralizedPose is the C2 -> C5 contract: the planner's target for the
// current tick.
type GeneralizedPose struct {
	BasePos, BaseVel, BaseAcc vec.Vector3D
	BaseQuat                  vec.Quaternion // unit, scalar-last (x,y,z,w)
	BaseAngVel                vec.Vector3D

	// FeetPos/Vel/Acc are one 3-vector per swing foot, ordered by
	// CanonicalFeet() restricted to the swing set.
	FeetPos, FeetVel, FeetAcc []vec.Vector3D

	ContactFeetNames []FootID
}

// SwingFeet returns the swing set implied by ContactFeetNames.
func (g GeneralizedPose) SwingFeet() []FootID {
	return SwingSet(g.ContactFeetNames)
}

// DefaultGeneralizedPose returns a pose with unit quaternion and no feet in
// swing, matching the original controller's GeneralizedPose default
// (base_quat = {0,0,0,1}).
func DefaultGeneralizedPose() GeneralizedPose {
	return GeneralizedPose{
		BaseQuat:         vec.Quaternion{0, 0, 0, 1},
		ContactFeetNames: CanonicalFeet(),
	}
}

// OptVector is a thin, non-owning accessor over the per-tick optimisation
// vector x = [v̇; F_c; d_des]. Slicing is determined by nv (generalized
// velocity dimension) and the current contact order; it performs no
// allocation beyond the backing slice the caller supplies.
type OptVector struct {
	X       []float32
	NV      int
	Contact []FootID
}

// NX returns the total dimension nv + 6*nc.
func (o OptVector) NX() int {
	return o.NV + 6*len(o.Contact)
}

// VDot returns the generalized-acceleration block, v̇ ∈ ℝ^nv.
func (o OptVector) VDot() []float32 {
	return o.X[:o.NV]
}

// Forces returns the contact-force block, F_c ∈ ℝ^{3·nc}, ordered as Contact.
func (o OptVector) Forces() []float32 {
	nc := len(o.Contact)
	return o.X[o.NV : o.NV+3*nc]
}

// Deformations returns the desired-deformation block, d_des ∈ ℝ^{3·nc}.
func (o OptVector) Deformations() []float32 {
	nc := len(o.Contact)
	return o.X[o.NV+3*nc : o.NV+6*nc]
}

// ForceOf returns the 3-vector force block for a specific contact foot, or
// false if f is not currently in contact.
func (o OptVector) ForceOf(f FootID) (vec.Vector3D, bool) {
	forces := o.Forces()
	for i, c := range o.Contact {
		if c == f {
			var v vec.Vector3D
			copy(v[:], forces[3*i:3*i+3])
			return v, true
		}
	}
	return vec.Vector3D{}, false
}

// DeformationOf returns the 3-vector deformation block for a specific
// contact foot, or false if f is not currently in contact.
func (o OptVector) DeformationOf(f FootID) (vec.Vector3D, bool) {
	d := o.Deformations()
	for i, c := range o.Contact {
		if c == f {
			var v vec.Vector3D
			copy(v[:], d[3*i:3*i+3])
			return v, true
		}
	}
	return vec.Vector3D{}, false
}

// Kind enumerates the error taxonomy of spec §7.
type Kind int

const (
	// PreconditionViolation: bad argument, bad dimension, non-unit quaternion.
	PreconditionViolation Kind = iota
	// Infeasible: a QP level is infeasible beyond slack tolerance.
	Infeasible
	// NumericalRankLoss: null-space decomposition returned rank 0 at level 0.
	NumericalRankLoss
	// Overrun: tick exceeded Δt.
	Overrun
	// SensorStale: snapshot older than max_staleness.
	SensorStale
)

func (k Kind) String() string {
	switch k {
	case PreconditionViolation:
		return "PreconditionViolation"
	case Infeasible:
		return "Infeasible"
	case NumericalRankLoss:
		return "NumericalRankLoss"
	case Overrun:
		return "Overrun"
	case SensorStale:
		return "SensorStale"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the typed error every component reports through, so callers can
// branch on Kind via errors.As rather than string-matching messages.
type Error struct {
	Kind      Kind
	Component string
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Component, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Component, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Newf builds an *Error with a formatted message.
func Newf(component string, kind Kind, format string, args ...interface{}) *Error {
	return &Error{Component: component, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that wraps an underlying cause.
func Wrap(component string, kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Component: component, Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}
