package audio

import (
	"fmt"

	"github.com/jfreymuth/pulse"
)

// PulseBackend plays a Source through a PulseAudio playback stream.
type PulseBackend struct {
	client *pulse.Client
	stream *pulse.PlaybackStream
	src    Source
}

// NewPulse connects to the PulseAudio server and creates a playback stream
// fed by the source.
func NewPulse(src Source, appName string) (*PulseBackend, error) {
	client, err := pulse.NewClient(pulse.ClientApplicationName(appName))
	if err != nil {
		return nil, fmt.Errorf("audio: connecting to pulseaudio: %w", err)
	}

	b := &PulseBackend{client: client, src: src}
	stream, err := client.NewPlayback(pulse.Float32Reader(b.generate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackSampleRate(src.SampleRate()),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("audio: creating playback stream: %w", err)
	}
	b.stream = stream
	return b, nil
}

// Start begins playback.
func (b *PulseBackend) Start() error {
	b.stream.Start()
	return nil
}

// Close stops the stream and disconnects from the server.
func (b *PulseBackend) Close() error {
	b.stream.Close()
	b.client.Close()
	return nil
}

func (b *PulseBackend) generate(out []float32) (int, error) {
	b.src.Process(out)
	return len(out), nil
}
