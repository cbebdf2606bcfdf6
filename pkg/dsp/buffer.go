// Package dsp provides buffer helpers and shared constants for the
// synthesis engine.
package dsp

import "math"

// Clear zeroes a buffer - no allocations
func Clear(buffer []float32) {
	for i := range buffer {
		buffer[i] = 0
	}
}

// Add adds source to destination - no allocations
func Add(dst, src []float32) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] += src[i]
	}
}

// AddScaled adds scaled source to destination - no allocations
func AddScaled(dst, src []float32, scale float32) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] += src[i] * scale
	}
}

// Scale multiplies buffer by a constant - no allocations
func Scale(buffer []float32, scale float32) {
	for i := range buffer {
		buffer[i] *= scale
	}
}

// Clip limits every sample to the [-1, 1] range in place.
func Clip(buffer []float32) {
	for i, s := range buffer {
		if s > 1.0 {
			buffer[i] = 1.0
		} else if s < -1.0 {
			buffer[i] = -1.0
		}
	}
}

// IsFinite reports whether every sample in the buffer is a finite number.
func IsFinite(buffer []float32) bool {
	for _, s := range buffer {
		f := float64(s)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
