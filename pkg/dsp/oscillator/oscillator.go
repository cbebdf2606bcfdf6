// Package oscillator provides the waveform generators for synthesis.
package oscillator

import "math"

// Waveform identifies one of the basic waveform shapes.
type Waveform int

const (
	// Sine is a pure tone
	Sine Waveform = iota
	// Saw is a bipolar ramp, rich in harmonics
	Saw
	// Triangle has softer odd harmonics
	Triangle
	// Pulse is a rectangular wave with variable duty cycle
	Pulse

	// NumWaveforms is the number of waveform shapes.
	NumWaveforms
)

// String returns the waveform name.
func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Saw:
		return "saw"
	case Triangle:
		return "triangle"
	case Pulse:
		return "pulse"
	default:
		return "unknown"
	}
}

// Mix holds per-waveform output levels and detune offsets. Levels are not
// renormalized when they sum above 1; the engine's safety stage handles the
// extra gain downstream.
type Mix struct {
	// Level is the output weight of each waveform (0-1).
	Level [NumWaveforms]float64
	// Detune is the pitch offset of each waveform in semitones.
	Detune [NumWaveforms]float64
}

// DefaultMix returns the initial mix: pure sine, no detune.
func DefaultMix() Mix {
	var m Mix
	m.Level[Sine] = 1.0
	return m
}

// Active reports whether any waveform has a non-zero level.
func (m Mix) Active() bool {
	for _, l := range m.Level {
		if l > 0 {
			return true
		}
	}
	return false
}

// Value evaluates a waveform at phase t in [0, 1).
// duty is the pulse duty cycle and is ignored by the other shapes.
func Value(w Waveform, t, duty float64) float64 {
	switch w {
	case Sine:
		return math.Sin(2.0 * math.Pi * t)
	case Saw:
		return 2.0 * (t - math.Floor(t+0.5))
	case Triangle:
		return 2.0*math.Abs(2.0*(t-math.Floor(t+0.5))) - 1.0
	case Pulse:
		if t < duty {
			return 1.0
		}
		return -1.0
	default:
		return 0.0
	}
}

// DetuneRatio converts a semitone offset to a frequency ratio.
func DetuneRatio(semitones float64) float64 {
	return math.Exp2(semitones / 12.0)
}

// Generator produces mixed, detuned waveforms for a single voice.
// Each waveform keeps its own phase accumulator because detune makes the
// four components run at different rates.
type Generator struct {
	sampleRate float64
	duty       float64
	phase      [NumWaveforms]float64
}

// New creates a generator for the given sample rate.
func New(sampleRate float64) *Generator {
	return &Generator{
		sampleRate: sampleRate,
		duty:       0.5,
	}
}

// SetDutyCycle sets the pulse duty cycle, clamped to (0, 1).
func (g *Generator) SetDutyCycle(duty float64) {
	g.duty = math.Max(0.01, math.Min(0.99, duty))
}

// Reset zeroes all phase accumulators.
func (g *Generator) Reset() {
	for i := range g.phase {
		g.phase[i] = 0
	}
}

// Process overwrites out with the weighted sum of all active waveforms at
// the given fundamental frequency. An all-zero mix yields a zero buffer.
func (g *Generator) Process(frequency float64, mix Mix, out []float32) {
	for i := range out {
		out[i] = 0
	}
	if !mix.Active() || frequency <= 0 || g.sampleRate <= 0 {
		return
	}

	for w := Waveform(0); w < NumWaveforms; w++ {
		level := mix.Level[w]
		if level <= 0 {
			continue
		}
		inc := frequency * DetuneRatio(mix.Detune[w]) / g.sampleRate
		phase := g.phase[w]
		for i := range out {
			out[i] += float32(level * Value(w, phase, g.duty))
			phase += inc
			if phase >= 1.0 {
				phase -= math.Floor(phase)
			}
		}
		g.phase[w] = phase
	}
}
