// Package effects provides the delay-line and waveshaping effect modules:
// reverb, distortion, delay, flanger and chorus. Every effect mixes its
// processed signal with the dry input as dry*input + wet*wetSignal; wet and
// dry are independent and need not sum to 1.
package effects

import (
	"errors"
	"math"
)

// ErrBufferMismatch is returned when the output buffer is shorter than the
// input buffer.
var ErrBufferMismatch = errors.New("effects: output buffer shorter than input")

// mix holds the wet/dry levels shared by every effect.
type mix struct {
	wet float64
	dry float64
}

func newMix() mix {
	return mix{wet: 0.0, dry: 1.0}
}

// SetWet sets the processed-signal level (0-1).
func (m *mix) SetWet(wet float64) { m.wet = clamp01(wet) }

// SetDry sets the unprocessed-signal level (0-1).
func (m *mix) SetDry(dry float64) { m.dry = clamp01(dry) }

// Wet returns the processed-signal level.
func (m *mix) Wet() float64 { return m.wet }

// Dry returns the unprocessed-signal level.
func (m *mix) Dry() float64 { return m.dry }

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

func checkBuffers(in, out []float32) error {
	if len(out) < len(in) {
		return ErrBufferMismatch
	}
	return nil
}
