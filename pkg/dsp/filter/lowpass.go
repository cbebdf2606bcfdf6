// Package filter provides the resonant low-pass filter used per voice.
package filter

import (
	"errors"
	"math"

	"github.com/sonogram/sonogram/pkg/dsp"
)

// ErrUnstable is returned when a coefficient computation produces a
// non-finite value. Callers should Reset the filter.
var ErrUnstable = errors.New("filter: non-finite coefficients")

// maxCoeffStep bounds how far a coefficient may move per recomputation.
// Limiting the step avoids zipper noise and transient instability when the
// cutoff or resonance jumps.
const maxCoeffStep = 0.05

const (
	defaultCutoff = 1000.0
	dcPole        = 0.995
)

// LowPass is a bilinear-transform biquad low-pass section with rate-limited
// coefficient updates and input DC blocking.
type LowPass struct {
	sampleRate float64
	cutoff     float64
	resonance  float64

	a1, a2     float64
	b0, b1, b2 float64

	x1, x2  float64
	y1, y2  float64
	dcState float64
}

// New creates a filter with a stable default response (1 kHz, Butterworth Q).
func New(sampleRate float64) *LowPass {
	f := &LowPass{sampleRate: sampleRate}
	f.Reset()
	return f
}

// Cutoff returns the current cutoff frequency in Hz.
func (f *LowPass) Cutoff() float64 { return f.cutoff }

// Resonance returns the current Q factor.
func (f *LowPass) Resonance() float64 { return f.resonance }

// Coefficients returns the current difference-equation coefficients.
func (f *LowPass) Coefficients() (a1, a2, b0, b1, b2 float64) {
	return f.a1, f.a2, f.b0, f.b1, f.b2
}

// SetCutoff sets the cutoff frequency, clamped to [20, sampleRate/2.1],
// and recomputes the coefficients.
func (f *LowPass) SetCutoff(hz float64) error {
	f.cutoff = clamp(hz, dsp.MinCutoffHz, f.sampleRate/dsp.CutoffNyquistDivisor)
	return f.update()
}

// SetResonance sets the Q factor, clamped to [0.1, 10], and recomputes the
// coefficients.
func (f *LowPass) SetResonance(q float64) error {
	f.resonance = clamp(q, dsp.MinQ, dsp.MaxQ)
	return f.update()
}

// design computes the target coefficient set for the current cutoff and
// resonance.
func (f *LowPass) design() (a1, a2, b0, b1, b2 float64) {
	w0 := 2.0 * math.Pi * f.cutoff / f.sampleRate
	alpha := math.Sin(w0) / (2.0 * f.resonance)
	cosw0 := math.Cos(w0)
	a0 := 1.0 + alpha

	a1 = -2.0 * cosw0 / a0
	a2 = (1.0 - alpha) / a0
	b0 = (1.0 - cosw0) / 2.0 / a0
	b1 = (1.0 - cosw0) / a0
	b2 = (1.0 - cosw0) / 2.0 / a0
	return
}

// update recomputes the coefficient targets and moves each coefficient
// toward its target by at most maxCoeffStep.
func (f *LowPass) update() error {
	a1, a2, b0, b1, b2 := f.design()
	for _, c := range []float64{a1, a2, b0, b1, b2} {
		if !finite(c) {
			return ErrUnstable
		}
	}

	f.a1 += step(a1 - f.a1)
	f.a2 += step(a2 - f.a2)
	f.b0 += step(b0 - f.b0)
	f.b1 += step(b1 - f.b1)
	f.b2 += step(b2 - f.b2)
	return nil
}

// Reset zeroes all filter state and restores the default stable
// coefficient set without step limiting.
func (f *LowPass) Reset() {
	f.x1, f.x2 = 0, 0
	f.y1, f.y2 = 0, 0
	f.dcState = 0
	f.cutoff = defaultCutoff
	f.resonance = dsp.DefaultQ
	f.a1, f.a2, f.b0, f.b1, f.b2 = f.design()
}

// Process filters the buffer in place. Each input sample is DC-blocked,
// run through the difference equation and clipped to [-1, 1].
func (f *LowPass) Process(buffer []float32) {
	for i := range buffer {
		x := float64(buffer[i])

		blocked := x - f.dcState
		f.dcState = f.dcState*dcPole + x*(1.0-dcPole)

		y := f.b0*blocked + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
		if y > 1.0 {
			y = 1.0
		} else if y < -1.0 {
			y = -1.0
		}

		f.x2 = f.x1
		f.x1 = blocked
		f.y2 = f.y1
		f.y1 = y
		buffer[i] = float32(y)
	}
}

func step(delta float64) float64 {
	return clamp(delta, -maxCoeffStep, maxCoeffStep)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
