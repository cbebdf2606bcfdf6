package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-audio/wav"
)

// toneSource produces a constant 440 Hz sine and counts Process calls.
type toneSource struct {
	phase float64
	calls atomic.Int64
}

func (s *toneSource) Process(out []float32) {
	s.calls.Add(1)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2.0*math.Pi*s.phase))
		s.phase += 440.0 / 44100.0
		if s.phase >= 1.0 {
			s.phase -= 1.0
		}
	}
}

func (s *toneSource) SampleRate() int { return 44100 }
func (s *toneSource) BufferSize() int { return 256 }

func TestHeadlessBackendPullsBuffers(t *testing.T) {
	src := &toneSource{}
	b := NewHeadless(src)
	if err := b.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if src.calls.Load() == 0 {
		t.Error("Expected the headless backend to pull at least one buffer")
	}

	// Close must stop the pull loop.
	after := src.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if src.calls.Load() != after {
		t.Error("Backend still pulling after Close")
	}
}

func TestHeadlessCloseTwice(t *testing.T) {
	b := NewHeadless(&toneSource{})
	if err := b.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestOtoReadEncodesFloat32LE(t *testing.T) {
	src := &toneSource{}
	b := &OtoBackend{src: src}

	p := make([]byte, 256*4)
	n, err := b.Read(p)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != len(p) {
		t.Fatalf("Expected %d bytes, got %d", len(p), n)
	}

	first := math.Float32frombits(binary.LittleEndian.Uint32(p[:4]))
	if first != 0 {
		t.Errorf("Expected the sine to start at 0, got %v", first)
	}
	second := math.Float32frombits(binary.LittleEndian.Uint32(p[4:8]))
	want := float32(0.5 * math.Sin(2.0*math.Pi*440.0/44100.0))
	if math.Abs(float64(second-want)) > 1e-6 {
		t.Errorf("Expected %v, got %v", want, second)
	}
}

func TestOtoReadPartialFrame(t *testing.T) {
	b := &OtoBackend{src: &toneSource{}}
	n, err := b.Read(make([]byte, 3))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 bytes for a sub-frame read, got %d", n)
	}
}

func TestRenderWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := RenderWAV(&toneSource{}, f, 0.5); err != nil {
		t.Fatalf("RenderWAV failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	dec := wav.NewDecoder(r)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		t.Fatal("Expected a valid WAV file")
	}
	if dec.SampleRate != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", dec.SampleRate)
	}
	if dec.NumChans != 1 {
		t.Errorf("Expected mono, got %d channels", dec.NumChans)
	}
	if dec.BitDepth != 16 {
		t.Errorf("Expected 16-bit samples, got %d", dec.BitDepth)
	}

	dur, err := dec.Duration()
	if err != nil {
		t.Fatalf("Duration failed: %v", err)
	}
	if math.Abs(dur.Seconds()-0.5) > 0.01 {
		t.Errorf("Expected ~0.5 s of audio, got %v", dur)
	}
}
