// Package analysis provides spectral helpers for inspecting engine output.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum returns the magnitude spectrum of the buffer up to Nyquist.
func Spectrum(buffer []float32) []float64 {
	samples := make([]float64, len(buffer))
	for i, s := range buffer {
		samples[i] = float64(s)
	}
	bins := fft.FFTReal(samples)
	mags := make([]float64, len(bins)/2+1)
	for i := range mags {
		mags[i] = cmplx.Abs(bins[i])
	}
	return mags
}

// DominantFrequency returns the frequency in Hz of the strongest spectral
// bin, ignoring DC. Returns 0 for empty or silent buffers.
func DominantFrequency(buffer []float32, sampleRate float64) float64 {
	if len(buffer) == 0 {
		return 0
	}
	mags := Spectrum(buffer)
	best := 0
	for i := 1; i < len(mags); i++ {
		if mags[i] > mags[best] {
			best = i
		}
	}
	if best == 0 || mags[best] < 1e-9 {
		return 0
	}
	return float64(best) * sampleRate / float64(len(buffer))
}

// Peak returns the largest absolute sample value in the buffer.
func Peak(buffer []float32) float64 {
	var peak float64
	for _, s := range buffer {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	return peak
}
