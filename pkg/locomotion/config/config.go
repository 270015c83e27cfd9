// Package config loads the planner/WBC parameter surface from YAML, the
// way the rest of the stack is configured (gopkg.in/yaml.v3).
package config

import (
	"os"

	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locomotion/planner"
	"github.com/itohio/legged-wbc/pkg/locomotion/tasks"
	"github.com/itohio/legged-wbc/pkg/locomotion/wbc"
	"github.com/itohio/legged-wbc/pkg/locotypes"
	"gopkg.in/yaml.v3"
)

// Gains mirrors tasks.Gains with yaml tags; ToTasks converts it.
type Gains struct {
	KpLin     [3]float32 `yaml:"kp_lin"`
	KdLin     [3]float32 `yaml:"kd_lin"`
	KpAng     [3]float32 `yaml:"kp_ang"`
	KdAng     [3]float32 `yaml:"kd_ang"`
	KpSwing   [3]float32 `yaml:"kp_swing"`
	KdSwing   [3]float32 `yaml:"kd_swing"`
	Kterr     float32    `yaml:"kp_terr"`
	Dterr     float32    `yaml:"kd_terr"`
}

func (g Gains) ToTasks() tasks.Gains {
	return tasks.Gains{
		KpLin: vec.Vector3D(g.KpLin), KdLin: vec.Vector3D(g.KdLin),
		KpAng: vec.Vector3D(g.KpAng), KdAng: vec.Vector3D(g.KdAng),
		KpSwing: vec.Vector3D(g.KpSwing), KdSwing: vec.Vector3D(g.KdSwing),
		Kterr: g.Kterr, Dterr: g.Dterr,
	}
}

// FootOffset names one nominal body-frame hip offset.
type FootOffset struct {
	Foot   string     `yaml:"foot"`
	Offset [3]float32 `yaml:"offset"`
}

// PlannerConfig is the on-disk shape of the planner's configuration
// surface (spec §6's named planner parameters).
type PlannerConfig struct {
	SampleTime      float32 `yaml:"sample_time"`
	StepDuration    float32 `yaml:"step_duration"`
	StepHeight      float32 `yaml:"step_height"`
	PhaseDelay      float32 `yaml:"step_horizontal_phase_delay"`
	FootPenetration float32 `yaml:"foot_penetration"`
	Interpolation   string  `yaml:"interpolation_method"`
	ZeroTime        float32 `yaml:"zero_time"`
	InitTime        float32 `yaml:"init_time"`
	ComHeight       float32 `yaml:"com_height"`
	Gravity         float32 `yaml:"gravity"`
	AccFilterOrder  int     `yaml:"acc_filter_order"`
	AccFilterBeta   float32 `yaml:"acc_filter_beta"`

	NominalFootOffsets []FootOffset `yaml:"nominal_foot_offsets"`
}

func interpolationFromString(s string) planner.InterpolationMethod {
	switch s {
	case "linear":
		return planner.Linear
	case "spline3":
		return planner.Spline3
	default:
		return planner.Spline5
	}
}

func footIDFromString(s string) (locotypes.FootID, bool) {
	for _, f := range locotypes.CanonicalFeet() {
		if f.String() == s {
			return f, true
		}
	}
	return 0, false
}

// Options converts the on-disk config into planner.Option values plus the
// nominal foot offset map the planner constructor requires.
func (c PlannerConfig) Options() ([]planner.Option, map[locotypes.FootID]vec.Vector3D) {
	opts := []planner.Option{
		planner.WithSampleTime(c.SampleTime),
		planner.WithStepDuration(c.StepDuration),
		planner.WithStepHeight(c.StepHeight),
		planner.WithPhaseDelay(c.PhaseDelay),
		planner.WithFootPenetration(c.FootPenetration),
		planner.WithInterpolation(interpolationFromString(c.Interpolation)),
		planner.WithWarmup(c.ZeroTime, c.InitTime),
		planner.WithComHeight(c.ComHeight),
		planner.WithAccFilter(c.AccFilterOrder, c.AccFilterBeta),
	}
	offsets := make(map[locotypes.FootID]vec.Vector3D, len(c.NominalFootOffsets))
	for _, fo := range c.NominalFootOffsets {
		if id, ok := footIDFromString(fo.Foot); ok {
			offsets[id] = vec.Vector3D(fo.Offset)
		}
	}
	return opts, offsets
}

// WBCConfig is the on-disk shape of the whole-body controller's
// configuration surface.
type WBCConfig struct {
	SampleTime     float32   `yaml:"sample_time"`
	TorqueLimit    float32   `yaml:"torque_limit"`
	FrictionCoeff  float32   `yaml:"friction_coeff"`
	MaxNormalForce float32   `yaml:"max_normal_force"`
	ContactMode    string    `yaml:"contact_mode"`
	Gains          Gains     `yaml:"gains"`
	EnergyWeight   float32   `yaml:"energy_weight"`
	ForceWeight    float32   `yaml:"force_weight"`
	MaxStaleness   float32   `yaml:"max_staleness"`
	HoldPosition   []float32 `yaml:"hold_position"`
	HoldKp         float32   `yaml:"hold_kp"`
	HoldKd         float32   `yaml:"hold_kd"`
}

func (c WBCConfig) ToWBC() wbc.Config {
	mode := tasks.Rigid
	if c.ContactMode == "soft_kv" {
		mode = tasks.SoftKV
	}
	return wbc.Config{
		SampleTime:     c.SampleTime,
		TorqueLimit:    c.TorqueLimit,
		FrictionCoeff:  c.FrictionCoeff,
		MaxNormalForce: c.MaxNormalForce,
		Mode:           mode,
		Gains:          c.Gains.ToTasks(),
		EnergyWeight:   c.EnergyWeight,
		ForceWeight:    c.ForceWeight,
		MaxStaleness:   c.MaxStaleness,
		HoldPosition:   c.HoldPosition,
		HoldKp:         c.HoldKp,
		HoldKd:         c.HoldKd,
	}
}

// File is the full on-disk document: planner and WBC configuration side by
// side, matching how one deployment configures both halves of the stack.
type File struct {
	Planner PlannerConfig `yaml:"planner"`
	WBC     WBCConfig     `yaml:"wbc"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, locotypes.Wrap("config", locotypes.PreconditionViolation, err, "reading %s", path)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, locotypes.Wrap("config", locotypes.PreconditionViolation, err, "parsing %s", path)
	}
	return f, nil
}

// Save writes the configuration back out as YAML.
func Save(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return locotypes.Wrap("config", locotypes.PreconditionViolation, err, "marshalling config")
	}
	return os.WriteFile(path, data, 0644)
}
