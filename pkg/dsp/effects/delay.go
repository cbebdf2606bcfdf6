package effects

import "math"

// maxDelaySeconds sizes the circular buffer; delay times are clamped to it.
const maxDelaySeconds = 2.0

// Delay is a single circular feedback delay line.
type Delay struct {
	mix
	sampleRate float64
	delayTime  float64
	feedback   float64

	buffer       []float32
	writePos     int
	delaySamples int
}

// NewDelay creates a delay sized for two seconds of signal at the given
// sample rate, with a 300 ms default delay time.
func NewDelay(sampleRate float64) *Delay {
	d := &Delay{
		mix:        newMix(),
		sampleRate: sampleRate,
		feedback:   0.4,
		buffer:     make([]float32, int(maxDelaySeconds*sampleRate)),
	}
	d.SetDelayTime(0.3)
	return d
}

// SetDelayTime sets the delay in seconds, clamped to the buffer capacity.
func (d *Delay) SetDelayTime(seconds float64) {
	d.delayTime = math.Max(0.0, math.Min(maxDelaySeconds, seconds))
	d.delaySamples = int(d.delayTime * d.sampleRate)
	if d.delaySamples >= len(d.buffer) {
		d.delaySamples = len(d.buffer) - 1
	}
}

// SetFeedback sets the delayed-signal gain (0-1).
func (d *Delay) SetFeedback(feedback float64) { d.feedback = clamp01(feedback) }

// DelaySamples returns the current delay in whole samples.
func (d *Delay) DelaySamples() int { return d.delaySamples }

// Process runs the delay over in and writes the mixed result to out.
// The wet signal is input[i] + buffer[readPos]*feedback with
// readPos = writePos - delaySamples modulo the buffer size.
func (d *Delay) Process(in, out []float32) error {
	if err := checkBuffers(in, out); err != nil {
		return err
	}
	size := len(d.buffer)
	for i, x := range in {
		readPos := d.writePos - d.delaySamples
		if readPos < 0 {
			readPos += size
		}
		wet := x + d.buffer[readPos]*float32(d.feedback)

		d.buffer[d.writePos] = x
		d.writePos++
		if d.writePos >= size {
			d.writePos = 0
		}

		out[i] = float32(d.dry)*x + float32(d.wet)*wet
	}
	return nil
}

// Reset clears the delay buffer.
func (d *Delay) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}
