package analysis

import (
	"math"
	"testing"
)

func sine(n int, freq, sampleRate float64) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(math.Sin(2.0 * math.Pi * freq * float64(i) / sampleRate))
	}
	return buf
}

func TestDominantFrequency(t *testing.T) {
	const sr = 44100.0
	const n = 4096

	// Use a frequency centered on an FFT bin so leakage does not shift the
	// peak.
	bin := 41.0
	freq := bin * sr / n

	got := DominantFrequency(sine(n, freq, sr), sr)
	if math.Abs(got-freq) > sr/n {
		t.Errorf("Expected dominant frequency ~%v, got %v", freq, got)
	}
}

func TestDominantFrequencyPicksStrongest(t *testing.T) {
	const sr = 44100.0
	const n = 4096

	loud := 100.0 * sr / n
	quiet := 400.0 * sr / n
	buf := make([]float32, n)
	for i := range buf {
		s := 0.9*math.Sin(2.0*math.Pi*loud*float64(i)/sr) +
			0.2*math.Sin(2.0*math.Pi*quiet*float64(i)/sr)
		buf[i] = float32(s)
	}

	got := DominantFrequency(buf, sr)
	if math.Abs(got-loud) > sr/n {
		t.Errorf("Expected the louder partial %v, got %v", loud, got)
	}
}

func TestDominantFrequencySilence(t *testing.T) {
	if got := DominantFrequency(make([]float32, 1024), 44100); got != 0 {
		t.Errorf("Expected 0 for silence, got %v", got)
	}
	if got := DominantFrequency(nil, 44100); got != 0 {
		t.Errorf("Expected 0 for an empty buffer, got %v", got)
	}
}

func TestDominantFrequencyIgnoresDC(t *testing.T) {
	const sr = 44100.0
	const n = 4096
	freq := 50.0 * sr / n

	buf := sine(n, freq, sr)
	for i := range buf {
		buf[i] += 0.9 // strong DC offset
	}

	got := DominantFrequency(buf, sr)
	if math.Abs(got-freq) > sr/n {
		t.Errorf("Expected DC to be ignored, got %v instead of %v", got, freq)
	}
}

func TestSpectrumLength(t *testing.T) {
	mags := Spectrum(make([]float32, 1024))
	if len(mags) != 513 {
		t.Errorf("Expected 513 bins for a 1024-sample buffer, got %d", len(mags))
	}
}

func TestPeak(t *testing.T) {
	buf := []float32{0.1, -0.8, 0.3}
	if got := Peak(buf); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("Expected peak 0.8, got %v", got)
	}
	if got := Peak(nil); got != 0 {
		t.Errorf("Expected 0 for an empty buffer, got %v", got)
	}
}
