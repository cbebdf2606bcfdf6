package effects

import "math"

// Distortion applies tanh waveshaping followed by a two-tap tone filter
// tone*x[n] + (1-tone)*x[n-1].
type Distortion struct {
	mix
	drive float64
	tone  float64

	prevShaped float32
}

// NewDistortion creates a distortion with moderate drive.
func NewDistortion() *Distortion {
	return &Distortion{
		mix:   newMix(),
		drive: 2.0,
		tone:  0.5,
	}
}

// SetDrive sets the waveshaping gain (>= 0).
func (d *Distortion) SetDrive(drive float64) { d.drive = math.Max(0.0, drive) }

// SetTone sets the tone filter balance (0-1); 1 is fully bright.
func (d *Distortion) SetTone(tone float64) { d.tone = clamp01(tone) }

// Process runs the waveshaper over in and writes the mixed result to out.
func (d *Distortion) Process(in, out []float32) error {
	if err := checkBuffers(in, out); err != nil {
		return err
	}
	for i, x := range in {
		shaped := float32(math.Tanh(float64(x) * d.drive))
		toned := float32(d.tone)*shaped + float32(1.0-d.tone)*d.prevShaped
		d.prevShaped = shaped
		out[i] = float32(d.dry)*x + float32(d.wet)*toned
	}
	return nil
}

// Reset clears the tone filter state.
func (d *Distortion) Reset() {
	d.prevShaped = 0
}
