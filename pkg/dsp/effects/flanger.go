package effects

import "math"

const (
	// flangerBufferSamples is 100 ms at 44.1 kHz.
	flangerBufferSamples = 4410
	// flangerDepthScale maps the unipolar LFO swing to a delay in samples.
	flangerDepthScale = 100.0
)

// Flanger is a short modulated delay line. The read offset sweeps with a
// sinusoidal LFO and the delayed signal is mixed back with feedback.
type Flanger struct {
	mix
	sampleRate float64
	rate       float64 // LFO rate in Hz
	depth      float64 // modulation depth (0-1)
	feedback   float64

	buffer []float32
	pos    int
	phase  float64
}

// NewFlanger creates a flanger with a slow default sweep.
func NewFlanger(sampleRate float64) *Flanger {
	return &Flanger{
		mix:        newMix(),
		sampleRate: sampleRate,
		rate:       0.2,
		depth:      0.7,
		feedback:   0.5,
		buffer:     make([]float32, flangerBufferSamples),
	}
}

// SetRate sets the LFO rate in Hz.
func (f *Flanger) SetRate(hz float64) { f.rate = math.Max(0.01, hz) }

// SetDepth sets the modulation depth (0-1).
func (f *Flanger) SetDepth(depth float64) { f.depth = clamp01(depth) }

// SetFeedback sets the delayed-signal gain (0-1).
func (f *Flanger) SetFeedback(feedback float64) { f.feedback = clamp01(feedback) }

// Process runs the flanger over in and writes the mixed result to out.
func (f *Flanger) Process(in, out []float32) error {
	if err := checkBuffers(in, out); err != nil {
		return err
	}
	size := len(f.buffer)
	for i, x := range in {
		modDelay := int(f.depth * (math.Sin(2.0*math.Pi*f.rate*f.phase) + 1.0) * flangerDepthScale)
		readPos := f.pos - modDelay
		if readPos < 0 {
			readPos += size
		}
		wet := x + f.buffer[readPos]*float32(f.feedback)

		f.buffer[f.pos] = x
		f.pos++
		if f.pos >= size {
			f.pos = 0
		}
		f.phase += 1.0 / f.sampleRate

		out[i] = float32(f.dry)*x + float32(f.wet)*wet
	}
	return nil
}

// Reset clears the delay buffer and the LFO phase.
func (f *Flanger) Reset() {
	for i := range f.buffer {
		f.buffer[i] = 0
	}
	f.pos = 0
	f.phase = 0
}
