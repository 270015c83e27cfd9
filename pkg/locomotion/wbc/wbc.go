// Package wbc implements C8, the whole-body controller orchestrator: it
// wires the planner (C2), RBD oracle (external collaborator), task builder
// (C5), priority stack (C6), and HQP cascade (C7) into a single per-tick
// Step, and defines the SensorSource/CommandSink boundary spec §6 draws
// around the real-time control thread.
package wbc

import (
	"github.com/itohio/legged-wbc/pkg/core/logger"
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locomotion/deformation"
	"github.com/itohio/legged-wbc/pkg/locomotion/hqp"
	"github.com/itohio/legged-wbc/pkg/locomotion/planner"
	"github.com/itohio/legged-wbc/pkg/locomotion/prioritized"
	"github.com/itohio/legged-wbc/pkg/locomotion/rbd"
	"github.com/itohio/legged-wbc/pkg/locomotion/tasks"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

// SensorSnapshot is one atomically-published reading of everything the
// controller needs for a tick: generalized coordinates/velocities, base
// feedback, per-foot measurements, the terrain plane estimate, and the
// operator's velocity command. StalenessSeconds is computed by the source,
// not by the controller, so Step never calls a clock itself.
type SensorSnapshot struct {
	Q, V []float32

	BaseQuatMeasured   vec.Quaternion
	BaseAngVelMeasured vec.Vector3D
	BaseAccMeasured    vec.Vector3D

	FeetPosMeasured map[locotypes.FootID]vec.Vector3D
	FeetVelMeasured map[locotypes.FootID]vec.Vector3D
	ContactEstimate []locotypes.FootID

	Plane      [3]float32
	VelCmdXY   [2]float32
	YawRateCmd float32

	StalenessSeconds float32
}

// SensorSource hands the controller the most recent snapshot. Implementations
// are expected to double-buffer with an atomic version counter so Step never
// blocks behind the sensor-fusion thread (spec §5's concurrency model).
type SensorSource interface {
	Latest() (SensorSnapshot, bool)
}

// CommandSink receives the per-tick actuated-joint torque command.
type CommandSink interface {
	Publish(torques []float32) error
}

// Config holds every WBC-owned parameter: torque/force limits, PD gains,
// contact compliance mode, the sensor-staleness budget, and the tick period
// and warm-up hold law.
type Config struct {
	TorqueLimit    float32
	FrictionCoeff  float32
	MaxNormalForce float32
	Mode           tasks.ContactMode
	Gains          tasks.Gains
	EnergyWeight   float32
	ForceWeight    float32
	MaxStaleness   float32

	// SampleTime is the configured tick period Δt. It feeds the SoftKV
	// contact task's deformation-acceleration estimate and the overrun
	// check in Step.
	SampleTime float32

	// HoldPosition, HoldKp, HoldKd parameterize holdTorques: a per-joint
	// PD law driving each actuated joint toward HoldPosition[i] while the
	// planner warms up. HoldPosition must have one entry per actuated
	// joint (oracle.NV()-6); a shorter/missing entry holds at zero.
	HoldPosition []float32
	HoldKp       float32
	HoldKd       float32
}

// DefaultConfig returns conservative defaults for a mid-size quadruped.
func DefaultConfig() Config {
	return Config{
		TorqueLimit:    60,
		FrictionCoeff:  0.6,
		MaxNormalForce: 400,
		Mode:           tasks.Rigid,
		Gains: tasks.Gains{
			KpLin: vec.Vector3D{200, 200, 300}, KdLin: vec.Vector3D{30, 30, 40},
			KpAng: vec.Vector3D{150, 150, 100}, KdAng: vec.Vector3D{15, 15, 10},
			KpSwing: vec.Vector3D{400, 400, 400}, KdSwing: vec.Vector3D{25, 25, 25},
			Kterr: 2000, Dterr: 50,
		},
		EnergyWeight: 1e-4,
		ForceWeight:  1e-5,
		MaxStaleness: 0.05,
		SampleTime:   0.004,
		HoldKp:       40,
		HoldKd:       2,
	}
}

// Controller is C8: the single object a real-time control thread drives
// once per tick.
type Controller struct {
	cfg     Config
	oracle  rbd.Oracle
	planner *planner.Planner
	stack   prioritized.Stack
	history *deformation.History

	lastSolution hqp.Solution
	lastContact  []locotypes.FootID

	overrunCount uint64
}

// OverrunCount returns the number of ticks for which the caller reported
// an elapsed duration exceeding Config.SampleTime via Step's tickElapsed
// argument.
func (c *Controller) OverrunCount() uint64 { return c.overrunCount }

// New wires a Controller around an external RBD oracle and a planner built
// with the given options.
func New(oracle rbd.Oracle, cfg Config, nominalFootOffsets map[locotypes.FootID]vec.Vector3D, plannerOpts ...planner.Option) (*Controller, error) {
	p, err := planner.New(nominalFootOffsets, plannerOpts...)
	if err != nil {
		return nil, locotypes.Wrap("wbc", locotypes.PreconditionViolation, err, "constructing planner")
	}
	return &Controller{
		cfg:     cfg,
		oracle:  oracle,
		planner: p,
		stack:   prioritized.DefaultStack(),
		history: deformation.New(),
	}, nil
}

// WithStack overrides the default priority stack (e.g. a configurable one
// loaded from YAML via prioritized.ParseStack).
func (c *Controller) WithStack(stack prioritized.Stack) { c.stack = stack }

// LastSolution returns the most recent cascade result, for logging/plotting.
func (c *Controller) LastSolution() hqp.Solution { return c.lastSolution }

// WarmingUp reports whether the planner is still in its init/warm-up phase.
func (c *Controller) WarmingUp() bool { return c.planner.WarmingUp() }

// Step runs one control tick: fetch the snapshot, advance the planner,
// build and solve the task cascade (or hold a PD pass-through during
// warm-up), and publish the resulting joint torques.
//
// tickElapsed is the wall-clock duration the caller's ticker loop measured
// for the previous tick (0 if unknown, e.g. the first tick). Step never
// calls a clock itself — measuring wall time is the caller's job, the same
// division of responsibility SensorSnapshot.StalenessSeconds uses. When
// tickElapsed exceeds Config.SampleTime, the overrun is counted
// (OverrunCount) and logged, but the tick still runs to completion per
// spec: an overrun is diagnostic, not fatal.
func (c *Controller) Step(source SensorSource, sink CommandSink, tickElapsed float32) error {
	if c.cfg.SampleTime > 0 && tickElapsed > c.cfg.SampleTime {
		c.overrunCount++
		overrunErr := locotypes.Newf("wbc", locotypes.Overrun, "tick took %.5fs, budget is %.5fs (count=%d)", tickElapsed, c.cfg.SampleTime, c.overrunCount)
		logger.Log.Warn().Err(overrunErr).Msg("wbc: tick overran sample time, continuing")
	}

	snap, ok := source.Latest()
	if !ok {
		return locotypes.Newf("wbc", locotypes.SensorStale, "no sensor snapshot available")
	}
	if snap.StalenessSeconds > c.cfg.MaxStaleness {
		return locotypes.Newf("wbc", locotypes.SensorStale, "snapshot is %.4fs stale, budget is %.4fs", snap.StalenessSeconds, c.cfg.MaxStaleness)
	}

	in := planner.Inputs{
		ComPos:           vec.Vector3D{snap.Q[0], snap.Q[1], snap.Q[2]},
		ComVel:           vec.Vector3D{snap.V[0], snap.V[1], snap.V[2]},
		ComAccBody:       snap.BaseAccMeasured,
		BaseQuatMeasured: snap.BaseQuatMeasured,
		VelCmdXY:         snap.VelCmdXY,
		YawRateCmd:       snap.YawRateCmd,
		Plane:            snap.Plane,
		FeetPosMeasured:  snap.FeetPosMeasured,
		FeetVelMeasured:  snap.FeetVelMeasured,
	}
	pose, err := c.planner.Update(in)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("wbc: planner rejected tick, continuing with held pose")
	}

	// The planner's own contact/swing schedule is authoritative for the
	// RBD evaluation: it is what the tracking tasks were built against,
	// so oracle and tasks must agree with it rather than an independently
	// estimated contact set.
	contact := pose.ContactFeetNames
	if err := c.oracle.SetContactFeet(contact); err != nil {
		return locotypes.Wrap("wbc", locotypes.PreconditionViolation, err, "SetContactFeet")
	}
	if err := c.oracle.ComputeEOM(snap.Q, snap.V); err != nil {
		return locotypes.Wrap("wbc", locotypes.PreconditionViolation, err, "ComputeEOM")
	}
	if err := c.oracle.ComputeSecondOrderFK(snap.Q, snap.V); err != nil {
		return locotypes.Wrap("wbc", locotypes.PreconditionViolation, err, "ComputeSecondOrderFK")
	}

	if c.planner.WarmingUp() {
		return sink.Publish(c.holdTorques(snap))
	}

	ctx := tasks.Context{
		Oracle:             c.oracle,
		Pose:               pose,
		MeasuredBasePos:    in.ComPos,
		MeasuredBaseVel:    in.ComVel,
		MeasuredBaseQuat:   snap.BaseQuatMeasured,
		MeasuredBaseAngVel: snap.BaseAngVelMeasured,
		MeasuredFeetPos:    snap.FeetPosMeasured,
		MeasuredFeetVel:    snap.FeetVelMeasured,
		Contact:            contact,
		NV:                 c.oracle.NV(),
		SampleTime:         c.cfg.SampleTime,
		TorqueLimit:        c.cfg.TorqueLimit,
		FrictionCoeff:      c.cfg.FrictionCoeff,
		MaxNormalForce:     c.cfg.MaxNormalForce,
		Mode:               c.cfg.Mode,
		Gains:              c.cfg.Gains,
		EnergyWeight:       c.cfg.EnergyWeight,
		ForceWeight:        c.cfg.ForceWeight,
		History:            c.history,
	}

	sol, err := hqp.Solve(c.stack, ctx)
	if err != nil {
		return locotypes.Wrap("wbc", locotypes.Infeasible, err, "hqp cascade")
	}
	c.lastSolution = sol
	c.lastContact = contact

	opt := locotypes.OptVector{X: sol.X, NV: ctx.NV, Contact: contact}
	deformations := make([]vec.Vector3D, len(contact))
	for i, f := range contact {
		if d, ok := opt.DeformationOf(f); ok {
			deformations[i] = d
		}
	}
	if err := c.history.Update(contact, deformations); err != nil {
		logger.Log.Warn().Err(err).Msg("wbc: deformation history update failed")
	}

	return sink.Publish(jointTorques(ctx, sol.X))
}

// holdTorques is the PD pass-through published while the planner is
// warming up: each actuated joint is driven toward Config.HoldPosition by a
// scalar PD law, tau_i = HoldKp*(q0_i - q_i) - HoldKd*v_i, mirroring the
// original controller's init-hold behavior. With a pure 6-DoF floating-base
// oracle (no actuated joints) this is a zero-length vector.
func (c *Controller) holdTorques(snap SensorSnapshot) []float32 {
	nj := c.oracle.NV() - 6
	if nj <= 0 {
		return nil
	}
	tau := make([]float32, nj)
	for i := 0; i < nj; i++ {
		var q0 float32
		if i < len(c.cfg.HoldPosition) {
			q0 = c.cfg.HoldPosition[i]
		}
		var q, v float32
		if idx := 7 + i; idx < len(snap.Q) {
			q = snap.Q[idx]
		}
		if idx := 6 + i; idx < len(snap.V) {
			v = snap.V[idx]
		}
		tau[i] = c.cfg.HoldKp*(q0-q) - c.cfg.HoldKd*v
	}
	return tau
}

// jointTorques recovers actuated-joint torques from the solved optimisation
// vector via the floating-base dynamics: tau = M[6:]·v̇ + h[6:] - J_c^T[6:]·F_c.
func jointTorques(ctx tasks.Context, x []float32) []float32 {
	nv := ctx.NV
	nj := nv - 6
	if nj <= 0 {
		return nil
	}
	M := ctx.Oracle.MassMatrix()
	h := ctx.Oracle.Bias()
	Jc := ctx.Oracle.ContactJacobian()
	nc := len(ctx.Contact)

	vdot := x[:nv]
	Fc := x[nv : nv+3*nc]

	tau := make([]float32, nj)
	for i := 0; i < nj; i++ {
		row := 6 + i
		var sum float32
		for c := 0; c < nv; c++ {
			sum += M[row][c] * vdot[c]
		}
		sum += h[row]
		for c := 0; c < 3*nc; c++ {
			sum -= Jc[c][row] * Fc[c]
		}
		tau[i] = sum
	}
	return tau
}
