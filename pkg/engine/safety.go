package engine

import "math"

const (
	safetyCeiling     = 0.95
	safetyDCCutoffHz  = 10.0
	safetyRecoverySec = 0.05
)

// SafetyStage removes DC offset from the mixed output and limits peaks
// before the final clip. The limiter attacks instantly and recovers with an
// exponential ramp so a single transient does not pin the gain down.
type SafetyStage struct {
	dcX1 float64
	dcY1 float64
	dcR  float64

	gain     float64
	recovery float64
}

// NewSafetyStage creates a safety stage for the given sample rate.
func NewSafetyStage(sampleRate float64) *SafetyStage {
	r := 1.0 - (2.0*math.Pi*safetyDCCutoffHz)/sampleRate
	if r < 0.9 {
		r = 0.9
	} else if r > 0.999 {
		r = 0.999
	}
	return &SafetyStage{
		dcR:      r,
		gain:     1.0,
		recovery: 1.0 - math.Exp(-1.0/(safetyRecoverySec*sampleRate)),
	}
}

// Process filters the buffer in place: DC block, peak limit, clip.
func (s *SafetyStage) Process(buffer []float32) {
	for i := range buffer {
		x := float64(buffer[i])

		y := x - s.dcX1 + s.dcR*s.dcY1
		s.dcX1 = x
		s.dcY1 = y

		if a := math.Abs(y); a*s.gain > safetyCeiling {
			s.gain = safetyCeiling / a
		} else {
			s.gain += (1.0 - s.gain) * s.recovery
		}
		y *= s.gain

		if y > 1.0 {
			y = 1.0
		} else if y < -1.0 {
			y = -1.0
		}
		buffer[i] = float32(y)
	}
}

// Reset clears the DC blocker state and restores unity gain.
func (s *SafetyStage) Reset() {
	s.dcX1 = 0
	s.dcY1 = 0
	s.gain = 1.0
}
