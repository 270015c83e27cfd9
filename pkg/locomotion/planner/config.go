package planner

import (
	"github.com/itohio/legged-wbc/pkg/core/options"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

// InterpolationMethod selects the swing-foot horizontal trajectory shape.
type InterpolationMethod int

const (
	Linear InterpolationMethod = iota
	Spline3
	Spline5
)

func (m InterpolationMethod) valid() bool {
	return m == Linear || m == Spline3 || m == Spline5
}

// Config holds every named parameter of the configuration surface (spec §6)
// that the planner owns. Each setter below validates its own precondition
// and rejects the update (keeping the old value) otherwise, matching the
// per-field validation spec §7 requires.
type Config struct {
	SampleTime      float32
	StepDuration    float32
	StepHeight      float32
	PhaseDelay      float32
	FootPenetration float32
	Interpolation   InterpolationMethod

	ZeroTime float32
	InitTime float32

	ComHeight float32
	Gravity   float32

	AccFilterOrder int
	AccFilterBeta  float32
}

// DefaultConfig returns sane defaults matching the scenarios in spec §8.
func DefaultConfig() Config {
	return Config{
		SampleTime:      0.004,
		StepDuration:    0.5,
		StepHeight:      0.05,
		PhaseDelay:      0,
		FootPenetration: 0,
		Interpolation:   Spline5,
		ZeroTime:        0.5,
		InitTime:        1.0,
		ComHeight:       0.5,
		Gravity:         9.81,
		AccFilterOrder:  2,
		AccFilterBeta:   0.15,
	}
}

// Option mutates a Config, matching the teacher's functional-options
// convention (pkg/core/options).
type Option = options.Option

func apply(cfg *Config, opts ...Option) {
	options.ApplyOptions(cfg, opts...)
}

func WithSampleTime(dt float32) Option {
	return func(c interface{}) { c.(*Config).SampleTime = dt }
}

func WithStepDuration(t float32) Option {
	return func(c interface{}) { c.(*Config).StepDuration = t }
}

func WithStepHeight(h float32) Option {
	return func(c interface{}) { c.(*Config).StepHeight = h }
}

func WithPhaseDelay(phi float32) Option {
	return func(c interface{}) { c.(*Config).PhaseDelay = phi }
}

func WithFootPenetration(p float32) Option {
	return func(c interface{}) { c.(*Config).FootPenetration = p }
}

func WithInterpolation(m InterpolationMethod) Option {
	return func(c interface{}) { c.(*Config).Interpolation = m }
}

func WithWarmup(zeroTime, initTime float32) Option {
	return func(c interface{}) { c.(*Config).ZeroTime = zeroTime; c.(*Config).InitTime = initTime }
}

func WithComHeight(z float32) Option {
	return func(c interface{}) { c.(*Config).ComHeight = z }
}

func WithAccFilter(order int, beta float32) Option {
	return func(c interface{}) { c.(*Config).AccFilterOrder = order; c.(*Config).AccFilterBeta = beta }
}

// SetSampleTime validates and applies a new sample time, per spec §6/§7.
func (p *Planner) SetSampleTime(dt float32) error {
	if dt <= 0 {
		return locotypes.Newf("planner", locotypes.PreconditionViolation, "sample_time must be > 0, got %v", dt)
	}
	p.cfg.SampleTime = dt
	return nil
}

// SetStepDuration validates and applies a new step duration.
func (p *Planner) SetStepDuration(t float32) error {
	if t <= 0 {
		return locotypes.Newf("planner", locotypes.PreconditionViolation, "step_duration must be > 0, got %v", t)
	}
	p.cfg.StepDuration = t
	return nil
}

// SetStepHeight validates and applies a new apex swing height.
func (p *Planner) SetStepHeight(h float32) error {
	if h < 0 {
		return locotypes.Newf("planner", locotypes.PreconditionViolation, "step_height must be >= 0, got %v", h)
	}
	p.cfg.StepHeight = h
	return nil
}

// SetPhaseDelay validates and applies a new horizontal phase delay.
func (p *Planner) SetPhaseDelay(phi float32) error {
	if phi < 0 || phi >= 1 {
		return locotypes.Newf("planner", locotypes.PreconditionViolation, "step_horizontal_phase_delay must be in [0,1), got %v", phi)
	}
	p.cfg.PhaseDelay = phi
	return nil
}

// SetFootPenetration applies a new planned penetration (unconstrained).
func (p *Planner) SetFootPenetration(v float32) error {
	p.cfg.FootPenetration = v
	return nil
}

// SetInterpolation validates and applies a new interpolation method.
func (p *Planner) SetInterpolation(m InterpolationMethod) error {
	if !m.valid() {
		return locotypes.Newf("planner", locotypes.PreconditionViolation, "interpolation_method %v is not a recognised member", m)
	}
	p.cfg.Interpolation = m
	return nil
}
