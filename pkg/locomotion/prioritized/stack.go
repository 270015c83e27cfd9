// Package prioritized implements C6: the stack of priority levels the
// lexicographic cascade (C7) solves in order. Each level groups zero or
// more elementary tasks (C5) whose equality/inequality blocks are stacked
// together and solved jointly, strictly after every higher level is
// satisfied.
package prioritized

import (
	"github.com/itohio/legged-wbc/pkg/locomotion/tasks"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

// Level is one priority level: the tasks assigned to it are built and
// stacked into a single (A,b,C,d) block.
type Level struct {
	Name  string
	Tasks []tasks.Task
}

// Build stacks every task's blocks into one equality and one inequality
// system for the level.
func (l Level) Build(ctx tasks.Context) (A [][]float32, b []float32, C [][]float32, d []float32, err error) {
	for _, t := range l.Tasks {
		ta, tb, tc, td, e := t.Build(ctx)
		if e != nil {
			return nil, nil, nil, nil, locotypes.Wrap("prioritized", locotypes.PreconditionViolation, e, "level %q task %q", l.Name, t.Name())
		}
		A = append(A, ta...)
		b = append(b, tb...)
		C = append(C, tc...)
		d = append(d, td...)
	}
	return A, b, C, d, nil
}

// Stack is the ordered list of priority levels the cascade solves.
type Stack struct {
	Levels []Level
}

// DefaultStack is the generic-quadruped priority order: dynamics is
// unconditional, then actuation/friction feasibility, then the three
// motion-tracking objectives in parallel, then contact compliance, then the
// minimum-effort regularizer.
func DefaultStack() Stack {
	return Stack{Levels: []Level{
		{Name: "dynamics", Tasks: []tasks.Task{tasks.FloatingBaseEOM{}}},
		{Name: "feasibility", Tasks: []tasks.Task{tasks.TorqueLimits{}, tasks.FrictionAndFcModulation{}}},
		{Name: "motion_tracking", Tasks: []tasks.Task{
			tasks.LinearBaseMotionTracking{},
			tasks.AngularBaseMotionTracking{},
			tasks.SwingFeetMotionTracking{},
		}},
		{Name: "contact", Tasks: []tasks.Task{tasks.ContactConstraint{}}},
		{Name: "regularization", Tasks: []tasks.Task{tasks.EnergyAndForcesOptimization{}}},
	}}
}

// Separator marks a priority-level boundary in a flat, config-file task
// list (spec §6's configurable priority stack).
const Separator = "---"

var registry = map[string]func() tasks.Task{
	"floating_base_eom":              func() tasks.Task { return tasks.FloatingBaseEOM{} },
	"torque_limits":                  func() tasks.Task { return tasks.TorqueLimits{} },
	"friction_and_fc_modulation":     func() tasks.Task { return tasks.FrictionAndFcModulation{} },
	"linear_base_motion_tracking":    func() tasks.Task { return tasks.LinearBaseMotionTracking{} },
	"angular_base_motion_tracking":   func() tasks.Task { return tasks.AngularBaseMotionTracking{} },
	"swing_feet_motion_tracking":     func() tasks.Task { return tasks.SwingFeetMotionTracking{} },
	"contact_constraint":             func() tasks.Task { return tasks.ContactConstraint{} },
	"energy_and_forces_optimization": func() tasks.Task { return tasks.EnergyAndForcesOptimization{} },
}

// ParseStack builds a Stack from a flat list of task names interleaved with
// Separator tokens, as loaded from a YAML priority_stack configuration.
func ParseStack(names []string) (Stack, error) {
	var stack Stack
	level := Level{Name: "level_0"}
	for _, n := range names {
		if n == Separator {
			stack.Levels = append(stack.Levels, level)
			level = Level{Name: levelName(len(stack.Levels))}
			continue
		}
		ctor, ok := registry[n]
		if !ok {
			return Stack{}, locotypes.Newf("prioritized", locotypes.PreconditionViolation, "unknown task %q", n)
		}
		level.Tasks = append(level.Tasks, ctor())
	}
	if len(level.Tasks) > 0 {
		stack.Levels = append(stack.Levels, level)
	}
	return stack, nil
}

func levelName(i int) string {
	const letters = "0123456789"
	if i < len(letters) {
		return "level_" + string(letters[i])
	}
	return "level_n"
}
