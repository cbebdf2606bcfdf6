package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ebitengine/oto/v3"
)

// OtoBackend plays a Source through the oto context (ALSA/CoreAudio/WASAPI
// under the hood). oto pulls interleaved little-endian float32 bytes from
// an io.Reader; the backend renders the engine in response to those pulls.
type OtoBackend struct {
	ctx    *oto.Context
	player *oto.Player
	src    Source
	buf    []float32
}

// NewOto opens an oto context for the source's sample rate.
func NewOto(src Source) (*OtoBackend, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   src.SampleRate(),
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("audio: opening oto context: %w", err)
	}
	<-ready

	return &OtoBackend{ctx: ctx, src: src}, nil
}

// Start begins playback.
func (b *OtoBackend) Start() error {
	if b.player == nil {
		b.player = b.ctx.NewPlayer(b)
	}
	b.player.Play()
	return nil
}

// Close stops playback.
func (b *OtoBackend) Close() error {
	if b.player == nil {
		return nil
	}
	if err := b.player.Close(); err != nil {
		return fmt.Errorf("audio: closing oto player: %w", err)
	}
	b.player = nil
	return nil
}

// Read renders the source into oto's byte buffer (4 bytes per sample).
func (b *OtoBackend) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}
	if len(b.buf) < frames {
		b.buf = make([]float32, frames)
	}
	samples := b.buf[:frames]
	b.src.Process(samples)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * 4, nil
}
