// Package planner implements C2, the LIP/DCM trot planner: it turns base
// pose/velocity/acceleration measurements, a velocity command, the terrain
// plane, and measured foot positions/velocities into the per-tick
// locotypes.GeneralizedPose reference consumed by the whole-body controller.
package planner

import (
	"github.com/chewxy/math32"
	"github.com/itohio/legged-wbc/pkg/core/logger"
	"github.com/itohio/legged-wbc/pkg/locomotion/accelfilter"

	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

type phase int

const (
	phaseInit phase = iota
	phaseWarmup
	phaseNormal
)

// Inputs is the planner's per-tick input bundle: base pose/twist/acceleration
// measurements, the commanded planar velocity and yaw rate, the terrain
// plane (a_x, a_y, c such that z = a_x·x + a_y·y + c), and measured foot
// state, one entry per canonical foot.
type Inputs struct {
	ComPos, ComVel, ComAccBody vec.Vector3D
	BaseQuatMeasured           vec.Quaternion

	VelCmdXY   [2]float32
	YawRateCmd float32

	Plane [3]float32

	FeetPosMeasured map[locotypes.FootID]vec.Vector3D
	FeetVelMeasured map[locotypes.FootID]vec.Vector3D
}

// Sample is one point of the SampleTrajectories diagnostic: the swing-foot
// positions predicted at a given normalised phase of the current step.
type Sample struct {
	Phase     float32
	Positions map[locotypes.FootID]vec.Vector3D
}

// Planner is C2. It is not safe for concurrent use; callers own the
// single-threaded control tick that serialises Update and the Set*
// configuration setters (spec §5 gives the command queue that does so).
type Planner struct {
	cfg    Config
	filter *accelfilter.Filter

	nominalOffsets map[locotypes.FootID]vec.Vector3D

	t  float32
	ph phase

	initPos vec.Vector3D
	initYaw float32

	yawRef    float32
	comPosRef vec.Vector3D

	stepElapsed float32
	pairIdx     int
	liftoff     map[locotypes.FootID]vec.Vector3D
	touchdown   map[locotypes.FootID]vec.Vector3D

	lastPose               locotypes.GeneralizedPose
	consecutiveFailures    int
	maxConsecutiveFailures int
}

// New constructs a Planner. nominalOffsets gives the body-frame (x,y,z) hip
// offset used as the footstep-law reference for each canonical foot.
func New(nominalOffsets map[locotypes.FootID]vec.Vector3D, opts ...Option) (*Planner, error) {
	cfg := DefaultConfig()
	apply(&cfg, opts...)

	f, err := accelfilter.New(cfg.AccFilterOrder, cfg.AccFilterBeta)
	if err != nil {
		return nil, locotypes.Wrap("planner", locotypes.PreconditionViolation, err, "constructing acceleration filter")
	}

	p := &Planner{
		cfg:                    cfg,
		filter:                 f,
		nominalOffsets:         nominalOffsets,
		lastPose:               locotypes.DefaultGeneralizedPose(),
		maxConsecutiveFailures: 50,
	}
	return p, nil
}

func finiteScalar(v float32) bool { return !math32.IsNaN(v) && !math32.IsInf(v, 0) }

func finiteV3(v vec.Vector3D) bool {
	return finiteScalar(v[0]) && finiteScalar(v[1]) && finiteScalar(v[2])
}

func finiteQuat(q vec.Quaternion) bool {
	return finiteScalar(q[0]) && finiteScalar(q[1]) && finiteScalar(q[2]) && finiteScalar(q[3])
}

func (p *Planner) validate(in Inputs) error {
	if !finiteV3(in.ComPos) || !finiteV3(in.ComVel) || !finiteV3(in.ComAccBody) {
		return locotypes.Newf("planner", locotypes.PreconditionViolation, "non-finite base pose/twist/acceleration measurement")
	}
	if !finiteQuat(in.BaseQuatMeasured) {
		return locotypes.Newf("planner", locotypes.PreconditionViolation, "non-finite measured base quaternion")
	}
	if !finiteScalar(in.VelCmdXY[0]) || !finiteScalar(in.VelCmdXY[1]) || !finiteScalar(in.YawRateCmd) {
		return locotypes.Newf("planner", locotypes.PreconditionViolation, "non-finite velocity command")
	}
	for _, f := range locotypes.CanonicalFeet() {
		pos, ok := in.FeetPosMeasured[f]
		if !ok || !finiteV3(pos) {
			return locotypes.Newf("planner", locotypes.PreconditionViolation, "missing or non-finite measured position for foot %s", f)
		}
	}
	return nil
}

func orderByCanonical(set []locotypes.FootID) []locotypes.FootID {
	out := make([]locotypes.FootID, 0, len(set))
	for _, f := range locotypes.CanonicalFeet() {
		if locotypes.Contains(set, f) {
			out = append(out, f)
		}
	}
	return out
}

// startStep captures lift-off positions and computes touch-down targets for
// the pair about to swing.
func (p *Planner) startStep(pairIdx int, in Inputs) {
	p.pairIdx = pairIdx
	p.stepElapsed = 0
	p.liftoff = make(map[locotypes.FootID]vec.Vector3D, 2)
	p.touchdown = make(map[locotypes.FootID]vec.Vector3D, 2)

	velCmdWorld := rotateWorldYaw(p.yawRef, in.VelCmdXY)
	comVel := vec.Vector3D{velCmdWorld[0], velCmdWorld[1], 0}

	for _, f := range diagonalPairs[pairIdx] {
		p.liftoff[f] = in.FeetPosMeasured[f]
		offsetWorld := rotateByQuat(eulerToQuat(0, 0, p.yawRef), p.nominalOffsets[f])
		p.touchdown[f] = footstepTarget(p.cfg, p.comPosRef, comVel, velCmdWorld, offsetWorld, in.Plane)
	}
}

// Update advances the planner by one control tick (spec §4.2's two-phase
// start followed by steady-state LIP trotting) and returns the next
// GeneralizedPose reference.
func (p *Planner) Update(in Inputs) (locotypes.GeneralizedPose, error) {
	if err := p.validate(in); err != nil {
		p.consecutiveFailures++
		logger.Log.Warn().Err(err).Int("consecutive_failures", p.consecutiveFailures).Msg("planner rejected tick, holding last pose")
		if p.consecutiveFailures > p.maxConsecutiveFailures {
			return p.lastPose, locotypes.Wrap("planner", locotypes.PreconditionViolation, err, "exceeded %d consecutive invalid ticks", p.maxConsecutiveFailures)
		}
		return p.lastPose, err
	}
	p.consecutiveFailures = 0

	dt := p.cfg.SampleTime
	prevT := p.t
	p.t += dt

	switch p.ph {
	case phaseInit:
		p.initPos = in.ComPos
		p.initYaw = yawFromQuat(in.BaseQuatMeasured)
		if p.t >= p.cfg.ZeroTime {
			p.ph = phaseWarmup
		}
		p.lastPose = locotypes.GeneralizedPose{
			BasePos:          p.initPos,
			BaseQuat:         eulerToQuat(0, 0, p.initYaw),
			ContactFeetNames: locotypes.CanonicalFeet(),
		}
		return p.lastPose, nil

	case phaseWarmup:
		target, roll, pitch := warmupTarget(p.cfg, p.initPos, in.Plane)
		tau := (p.t - p.cfg.ZeroTime) / p.cfg.InitTime
		if tau >= 1 {
			tau = 1
		}
		pos, vel, acc := warmupSpline(p.initPos, target, tau, p.cfg.InitTime)

		p.lastPose = locotypes.GeneralizedPose{
			BasePos:          pos,
			BaseVel:          vel,
			BaseAcc:          acc,
			BaseQuat:         eulerToQuat(roll, pitch, p.initYaw),
			ContactFeetNames: locotypes.CanonicalFeet(),
		}

		if tau >= 1 && prevT < p.t {
			p.ph = phaseNormal
			p.yawRef = p.initYaw
			p.comPosRef = vec.Vector3D{target[0], target[1], 0}
			p.startStep(0, in)
		}
		return p.lastPose, nil

	default:
		return p.updateNormal(in, dt)
	}
}

func (p *Planner) updateNormal(in Inputs, dt float32) (locotypes.GeneralizedPose, error) {
	cfg := p.cfg

	p.yawRef += in.YawRateCmd * dt
	roll := math32.Atan(in.Plane[1])
	pitch := -math32.Atan(in.Plane[0])
	quat := eulerToQuat(roll, pitch, p.yawRef)

	velCmdWorld := rotateWorldYaw(p.yawRef, in.VelCmdXY)
	comVel := vec.Vector3D{velCmdWorld[0], velCmdWorld[1], 0}
	p.comPosRef[0] += comVel[0] * dt
	p.comPosRef[1] += comVel[1] * dt

	planeZ := in.Plane[0]*p.comPosRef[0] + in.Plane[1]*p.comPosRef[1] + in.Plane[2]
	basePos := vec.Vector3D{p.comPosRef[0], p.comPosRef[1], cfg.ComHeight*math32.Cos(roll)*math32.Cos(pitch) + planeZ}

	gravityWorld := vec.Vector3D{0, 0, -cfg.Gravity}
	gBody := rotateByQuat(conjugate(in.BaseQuatMeasured), gravityWorld)
	sum := vec.Vector3D{in.ComAccBody[0] + gBody[0], in.ComAccBody[1] + gBody[1], in.ComAccBody[2] + gBody[2]}
	filtered := p.filter.Process(sum, dt)
	baseAcc := vec.Vector3D{-filtered[0], -filtered[1], -filtered[2]}

	p.stepElapsed += dt
	if p.stepElapsed >= cfg.StepDuration {
		p.stepElapsed -= cfg.StepDuration
		p.startStep(1-p.pairIdx, in)
	}
	s := p.stepElapsed / cfg.StepDuration

	swingSet := orderByCanonical(diagonalPairs[p.pairIdx])
	contactSet := orderByCanonical(diagonalPairs[1-p.pairIdx])

	feetPos := make([]vec.Vector3D, 0, len(swingSet))
	feetVel := make([]vec.Vector3D, 0, len(swingSet))
	feetAcc := make([]vec.Vector3D, 0, len(swingSet))
	for _, f := range swingSet {
		pos, vel, acc := swingTrajectory(cfg, p.liftoff[f], p.touchdown[f], s)
		feetPos = append(feetPos, pos)
		feetVel = append(feetVel, vel)
		feetAcc = append(feetAcc, acc)
	}

	p.lastPose = locotypes.GeneralizedPose{
		BasePos:          basePos,
		BaseVel:          comVel,
		BaseAcc:          baseAcc,
		BaseQuat:         quat,
		BaseAngVel:       vec.Vector3D{0, 0, in.YawRateCmd},
		FeetPos:          feetPos,
		FeetVel:          feetVel,
		FeetAcc:          feetAcc,
		ContactFeetNames: contactSet,
	}
	return p.lastPose, nil
}

// WarmingUp reports whether the planner is still in the init/warm-up phases,
// so the controller can hold a PD pass-through instead of running the full
// QP cascade (spec §7's two-phase start).
func (p *Planner) WarmingUp() bool { return p.ph != phaseNormal }

// LastPose returns the most recently published GeneralizedPose.
func (p *Planner) LastPose() locotypes.GeneralizedPose { return p.lastPose }

// SampleTrajectories is a diagnostic (not on the control path): it samples
// the currently-committed swing trajectory at n evenly spaced phases from
// lift-off (0) to touch-down (1) of the whole step, for plotting/logging.
func (p *Planner) SampleTrajectories(n int) []Sample {
	if p.ph != phaseNormal || n <= 0 {
		return nil
	}
	samples := make([]Sample, 0, n)
	swingSet := diagonalPairs[p.pairIdx]
	for i := 0; i < n; i++ {
		s := float32(i) / float32(maxInt(n-1, 1))
		positions := make(map[locotypes.FootID]vec.Vector3D, len(swingSet))
		for _, f := range swingSet {
			pos, _, _ := swingTrajectory(p.cfg, p.liftoff[f], p.touchdown[f], s)
			positions[f] = pos
		}
		samples = append(samples, Sample{Phase: s, Positions: positions})
	}
	return samples
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
