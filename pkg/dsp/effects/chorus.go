package effects

import "math"

const (
	chorusVoices = 3
	// chorusBufferSamples is 100 ms at 44.1 kHz.
	chorusBufferSamples = 4410
	// chorusDepthScale maps the unipolar LFO swing to a delay in samples.
	chorusDepthScale = 50.0
	// chorusTapGain scales each delayed voice before summing.
	chorusTapGain = 0.3
)

// Chorus runs three independently modulated short delay lines with distinct
// rates and depths. The summed signal is divided by voices+1 to keep the
// level comparable to the input.
type Chorus struct {
	mix
	sampleRate float64
	rates      [chorusVoices]float64
	depths     [chorusVoices]float64

	buffers [chorusVoices][]float32
	pos     [chorusVoices]int
	phases  [chorusVoices]float64
}

// NewChorus creates a chorus with slightly offset rates per voice.
func NewChorus(sampleRate float64) *Chorus {
	c := &Chorus{
		mix:        newMix(),
		sampleRate: sampleRate,
		rates:      [chorusVoices]float64{0.5, 0.7, 0.9},
		depths:     [chorusVoices]float64{0.6, 0.8, 0.7},
	}
	for v := range c.buffers {
		c.buffers[v] = make([]float32, chorusBufferSamples)
	}
	return c
}

// SetRate scales the LFO rate of every voice, preserving their offsets.
func (c *Chorus) SetRate(hz float64) {
	hz = math.Max(0.01, hz)
	base := c.rates[0]
	if base <= 0 {
		base = 0.5
	}
	for v := range c.rates {
		c.rates[v] = hz * (c.rates[v] / base)
	}
}

// SetDepth scales the modulation depth of every voice (0-1).
func (c *Chorus) SetDepth(depth float64) {
	depth = clamp01(depth)
	for v := range c.depths {
		c.depths[v] = depth
	}
}

// Process runs the chorus over in and writes the mixed result to out.
func (c *Chorus) Process(in, out []float32) error {
	if err := checkBuffers(in, out); err != nil {
		return err
	}
	for i, x := range in {
		wet := float64(x)
		for v := 0; v < chorusVoices; v++ {
			buf := c.buffers[v]
			modDelay := int(c.depths[v] * (math.Sin(2.0*math.Pi*c.rates[v]*c.phases[v]) + 1.0) * chorusDepthScale)
			readPos := c.pos[v] - modDelay
			if readPos < 0 {
				readPos += len(buf)
			}
			wet += float64(buf[readPos]) * chorusTapGain

			buf[c.pos[v]] = x
			c.pos[v]++
			if c.pos[v] >= len(buf) {
				c.pos[v] = 0
			}
			c.phases[v] += 1.0 / c.sampleRate
		}
		wet /= chorusVoices + 1

		out[i] = float32(c.dry)*x + float32(c.wet)*float32(wet)
	}
	return nil
}

// Reset clears all delay lines and LFO phases.
func (c *Chorus) Reset() {
	for v := range c.buffers {
		for i := range c.buffers[v] {
			c.buffers[v][i] = 0
		}
		c.pos[v] = 0
		c.phases[v] = 0
	}
}
