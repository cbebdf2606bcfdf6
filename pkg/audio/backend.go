// Package audio connects the synthesis engine to an output device or file.
// Backends pull fixed-size buffers from a Source; the engine's Process
// method is the real-time callback.
package audio

// Source produces the sample stream consumed by a backend. Process must
// always fill the buffer, silent or not, and must never block unboundedly.
type Source interface {
	Process(out []float32)
	SampleRate() int
	BufferSize() int
}

// Backend delivers a Source's samples to an output device.
type Backend interface {
	// Start begins playback.
	Start() error
	// Close stops playback and releases the device.
	Close() error
}
