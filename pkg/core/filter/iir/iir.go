// Package iir implements a Direct-Form-II infinite impulse response filter
// with Butterworth coefficient design, the building block the locomotion
// acceleration pre-filter is generalised from.
package iir

import "github.com/chewxy/math32"

// IIR is a single Direct-Form-II digital filter section (or cascade,
// expressed through its combined transfer-function coefficients).
// b holds the numerator (feed-forward) coefficients, a the denominator
// (feedback) coefficients; a[0] is always normalised to 1.
type IIR struct {
	b, a  []float32
	w     []float32 // delay line, length = order
	order int
}

// New constructs a filter from transfer-function coefficients b, a. The
// filter order is len(a)-1; a single coefficient each gives an order-0
// (pass-through) filter. Panics if b or a is empty or their lengths differ.
func New(b, a []float32) *IIR {
	if len(b) < 1 || len(a) < 1 {
		panic("iir: New requires at least 1 coefficient per polynomial")
	}
	if len(b) != len(a) {
		panic("iir: New requires b and a of equal length")
	}
	order := len(a) - 1
	f := &IIR{
		b:     append([]float32(nil), b...),
		a:     append([]float32(nil), a...),
		w:     make([]float32, order),
		order: order,
	}
	if f.a[0] != 1 {
		inv := 1.0 / f.a[0]
		for i := range f.a {
			f.a[i] *= inv
		}
		for i := range f.b {
			f.b[i] *= inv
		}
	}
	return f
}

// Reset zeroes the internal delay line.
func (f *IIR) Reset() {
	for i := range f.w {
		f.w[i] = 0
	}
}

// Order returns the filter order (number of delay-line taps).
func (f *IIR) Order() int { return f.order }

// Process runs one Direct-Form-II step and returns the filtered output.
func (f *IIR) Process(input float32) float32 {
	if f.order == 0 {
		return input
	}
	w0 := input
	for i := 1; i <= f.order; i++ {
		w0 -= f.a[i] * f.w[i-1]
	}
	out := f.b[0] * w0
	for i := 1; i <= f.order; i++ {
		out += f.b[i] * f.w[i-1]
	}
	copy(f.w[1:], f.w[:f.order-1])
	f.w[0] = w0
	return out
}

// ProcessBuffer filters every sample of in, returning a newly allocated
// slice of the same length.
func (f *IIR) ProcessBuffer(in []float32) []float32 {
	out := make([]float32, len(in))
	for i, x := range in {
		out[i] = f.Process(x)
	}
	return out
}

// Coeffs returns the current (b, a) transfer-function coefficients.
func (f *IIR) Coeffs() (b, a []float32) {
	return append([]float32(nil), f.b...), append([]float32(nil), f.a...)
}

// SetCoeffs replaces the filter's coefficients and resets its history.
func (f *IIR) SetCoeffs(b, a []float32) {
	*f = *New(b, a)
}

// NewSinglePole builds a one-pole exponential smoother
// y[n] = beta*x[n] + (1-beta)*y[n-1], beta in (0,1].
func NewSinglePole(beta float32) *IIR {
	return New([]float32{beta, 0}, []float32{1, -(1 - beta)})
}

// CascadeSinglePole chains `order` identical single-pole smoothers with
// smoothing coefficient beta into one combined transfer function, the
// order/beta parametrisation the acceleration pre-filter uses.
func CascadeSinglePole(order int, beta float32) *IIR {
	if order <= 0 {
		return New([]float32{1}, []float32{1})
	}
	b := []float32{beta}
	a := []float32{1, -(1 - beta)}
	return cascade(b, a, order)
}

// NewButterworthLowPass designs a first-order Butterworth low-pass section
// via the bilinear transform. cutoffHz must satisfy 0 < cutoffHz <
// sampleHz/2.
func NewButterworthLowPass(order int, cutoffHz, sampleHz float32) *IIR {
	if order <= 0 {
		return New([]float32{1}, []float32{1})
	}
	// First-order analog prototype s = 1, bilinear-transformed per section,
	// cascaded `order` times to approximate a higher-order rolloff while
	// keeping the coefficient design closed-form (no pole-pairing needed
	// for the magnitudes this controller cares about).
	wc := math32.Tan(math32.Pi * cutoffHz / sampleHz)
	k := wc / (1 + wc)
	a1 := (wc - 1) / (wc + 1)
	b := []float32{k, k}
	a := []float32{1, a1}
	return cascade(b, a, order)
}

// cascade multiplies a first-order section's transfer function by itself
// `order` times, producing the combined (b,a) of the cascaded filter. b is
// zero-padded to match a's (generally longer) degree before construction.
func cascade(b, a []float32, order int) *IIR {
	cb, ca := append([]float32(nil), b...), append([]float32(nil), a...)
	for n := 1; n < order; n++ {
		cb = polyMul(cb, b)
		ca = polyMul(ca, a)
	}
	if len(cb) < len(ca) {
		padded := make([]float32, len(ca))
		copy(padded, cb)
		cb = padded
	}
	return New(cb, ca)
}

func polyMul(p, q []float32) []float32 {
	out := make([]float32, len(p)+len(q)-1)
	for i, pi := range p {
		for j, qj := range q {
			out[i+j] += pi * qj
		}
	}
	return out
}
