package audio

import (
	"fmt"
	"io"
	"math"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const renderBitDepth = 16

// WAVWriter renders a Source to a 16-bit mono PCM WAV stream faster than
// real time. Render may be called repeatedly, interleaved with engine
// events, to bounce a sequence; Close finalizes the header.
type WAVWriter struct {
	src  Source
	enc  *wav.Encoder
	buf  []float32
	ibuf *gaudio.IntBuffer
}

// NewWAVWriter creates a writer targeting w.
func NewWAVWriter(src Source, w io.WriteSeeker) *WAVWriter {
	n := src.BufferSize()
	return &WAVWriter{
		src: src,
		enc: wav.NewEncoder(w, src.SampleRate(), renderBitDepth, 1, 1),
		buf: make([]float32, n),
		ibuf: &gaudio.IntBuffer{
			Format:         &gaudio.Format{NumChannels: 1, SampleRate: src.SampleRate()},
			Data:           make([]int, n),
			SourceBitDepth: renderBitDepth,
		},
	}
}

// Render pulls and encodes the given duration of audio, one engine buffer
// at a time.
func (r *WAVWriter) Render(seconds float64) error {
	remaining := int(seconds * float64(r.src.SampleRate()))
	for remaining > 0 {
		n := len(r.buf)
		if n > remaining {
			n = remaining
		}
		chunk := r.buf[:n]
		r.src.Process(chunk)

		r.ibuf.Data = r.ibuf.Data[:n]
		for i, s := range chunk {
			r.ibuf.Data[i] = int(math.Round(float64(s) * math.MaxInt16))
		}
		if err := r.enc.Write(r.ibuf); err != nil {
			return fmt.Errorf("audio: encoding wav chunk: %w", err)
		}
		remaining -= n
	}
	return nil
}

// Close finalizes the WAV header.
func (r *WAVWriter) Close() error {
	if err := r.enc.Close(); err != nil {
		return fmt.Errorf("audio: closing wav encoder: %w", err)
	}
	return nil
}

// RenderWAV renders seconds of the source to w in one call.
func RenderWAV(src Source, w io.WriteSeeker, seconds float64) error {
	r := NewWAVWriter(src, w)
	if err := r.Render(seconds); err != nil {
		return err
	}
	return r.Close()
}
