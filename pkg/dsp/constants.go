package dsp

// Common audio constants used throughout the DSP packages and the engine.
const (
	// Common sample rates
	SampleRate44k1 = 44100.0
	SampleRate48k  = 48000.0

	// Filter cutoff range. The upper bound is expressed as a fraction of
	// the sample rate (sampleRate / CutoffNyquistDivisor).
	MinCutoffHz          = 20.0
	CutoffNyquistDivisor = 2.1

	// Q factor range for the resonant filter
	MinQ     = 0.1
	MaxQ     = 10.0
	DefaultQ = 0.707 // Butterworth response

	// Buffer sizes
	DefaultBufferSize = 256
	MaxBufferSize     = 8192
)
