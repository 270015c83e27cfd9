// Package accelfilter implements C3: the IIR low-pass filter that denoises
// the measured body-frame base acceleration fed back into the LIP planner.
package accelfilter

import (
	"github.com/itohio/legged-wbc/pkg/core/filter/iir"
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

func errNewf(format string, args ...interface{}) error {
	return locotypes.Newf("accelfilter", locotypes.PreconditionViolation, format, args...)
}

// Filter applies an IIR low-pass, parametrised by (order, beta), component-
// wise to ℝ³ samples. Order 0 is pass-through. No allocation occurs after
// construction.
type Filter struct {
	axes  [3]*iir.IIR
	order int
	beta  float32
}

// New constructs a Filter with the given order and smoothing coefficient.
// beta must be in (0,1]; order must be >= 0.
func New(order int, beta float32) (*Filter, error) {
	if order < 0 {
		return nil, errNewf("order must be >= 0, got %d", order)
	}
	if beta <= 0 || beta > 1 {
		return nil, errNewf("beta must be in (0,1], got %v", beta)
	}
	f := &Filter{order: order, beta: beta}
	for i := range f.axes {
		f.axes[i] = iir.CascadeSinglePole(order, beta)
	}
	return f, nil
}

// Process filters one sample and returns the filtered value. dt is accepted
// for interface symmetry with time-varying filter designs; this filter's
// coefficients are fixed by (order, beta) and do not depend on dt.
func (f *Filter) Process(sample vec.Vector3D, dt float32) vec.Vector3D {
	return vec.Vector3D{
		f.axes[0].Process(sample[0]),
		f.axes[1].Process(sample[1]),
		f.axes[2].Process(sample[2]),
	}
}

// Reset zeroes every axis' internal history.
func (f *Filter) Reset() {
	for _, a := range f.axes {
		a.Reset()
	}
}

// Order returns the configured filter order.
func (f *Filter) Order() int { return f.order }

// Beta returns the configured smoothing coefficient.
func (f *Filter) Beta() float32 { return f.beta }
