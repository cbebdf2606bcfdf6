package effects

import "math"

// reverbDelays are the fixed comb delay lengths in samples. Prime lengths
// keep the resonances of the eight lines from stacking on common factors.
var reverbDelays = [8]int{1553, 1559, 1567, 1571, 1579, 1583, 1597, 1601}

// Reverb is a bank of eight parallel feedback delay lines. Each tap is
// attenuated by 0.8^tapIndex and fed back with the decay amount; the summed
// wet signal is scaled by damping.
type Reverb struct {
	mix
	decay   float64
	damping float64

	lines [8][]float32
	idx   [8]int
	gains [8]float64
}

// NewReverb creates a reverb with moderate decay and damping.
func NewReverb() *Reverb {
	r := &Reverb{
		mix:     newMix(),
		decay:   0.5,
		damping: 0.5,
	}
	for i, n := range reverbDelays {
		r.lines[i] = make([]float32, n)
		r.gains[i] = math.Pow(0.8, float64(i))
	}
	return r
}

// SetDecay sets the feedback amount of each delay line (0-1).
func (r *Reverb) SetDecay(decay float64) { r.decay = clamp01(decay) }

// SetDamping sets the output scaling of the summed taps (0-1).
func (r *Reverb) SetDamping(damping float64) { r.damping = clamp01(damping) }

// Process runs the reverb over in and writes the mixed result to out.
func (r *Reverb) Process(in, out []float32) error {
	if err := checkBuffers(in, out); err != nil {
		return err
	}
	for i, x := range in {
		var wet float64
		for j := range r.lines {
			line := r.lines[j]
			delayed := line[r.idx[j]]
			wet += float64(delayed) * r.gains[j]

			line[r.idx[j]] = x + delayed*float32(r.decay)
			r.idx[j]++
			if r.idx[j] >= len(line) {
				r.idx[j] = 0
			}
		}
		out[i] = float32(r.dry)*x + float32(r.wet)*float32(wet*r.damping)
	}
	return nil
}

// Reset clears all delay lines.
func (r *Reverb) Reset() {
	for j := range r.lines {
		for i := range r.lines[j] {
			r.lines[j][i] = 0
		}
		r.idx[j] = 0
	}
}
