package engine

import (
	"math"
	"testing"
)

func TestSafetyOutputBounded(t *testing.T) {
	s := NewSafetyStage(44100)

	buf := make([]float32, 1024)
	for i := range buf {
		buf[i] = float32(5.0 * math.Sin(2.0*math.Pi*float64(i)/64.0))
	}
	s.Process(buf)

	for i, v := range buf {
		if v < -1.0 || v > 1.0 {
			t.Fatalf("Sample %d out of range: %v", i, v)
		}
	}
}

func TestSafetyLimiterHoldsCeiling(t *testing.T) {
	s := NewSafetyStage(44100)

	buf := make([]float32, 4410)
	for i := range buf {
		buf[i] = float32(2.0 * math.Sin(2.0*math.Pi*440.0*float64(i)/44100.0))
	}
	s.Process(buf)

	var peak float64
	for _, v := range buf[2000:] {
		if a := math.Abs(float64(v)); a > peak {
			peak = a
		}
	}
	if peak > 1.0 {
		t.Errorf("Expected limited output, peak %v", peak)
	}
}

func TestSafetyRemovesDC(t *testing.T) {
	s := NewSafetyStage(44100)

	buf := make([]float32, 44100)
	for i := range buf {
		buf[i] = 0.5
	}
	s.Process(buf)

	tail := buf[len(buf)-100:]
	for i, v := range tail {
		if math.Abs(float64(v)) > 0.01 {
			t.Fatalf("DC not removed, tail sample %d is %v", i, v)
		}
	}
}

func TestSafetyGainRecovers(t *testing.T) {
	s := NewSafetyStage(44100)

	// A single loud transient pulls the gain down.
	loud := []float32{3.0}
	s.Process(loud)
	if s.gain >= 1.0 {
		t.Fatalf("Expected reduced gain after a transient, got %v", s.gain)
	}

	// Quiet signal afterwards lets the gain recover toward unity.
	quiet := make([]float32, 44100)
	for i := range quiet {
		quiet[i] = 0.01
	}
	s.Process(quiet)
	if s.gain < 0.99 {
		t.Errorf("Expected gain recovered toward 1, got %v", s.gain)
	}
}

func TestSafetyPassesQuietSignal(t *testing.T) {
	s := NewSafetyStage(44100)

	buf := make([]float32, 8820)
	for i := range buf {
		buf[i] = float32(0.3 * math.Sin(2.0*math.Pi*440.0*float64(i)/44100.0))
	}
	s.Process(buf)

	var peak float64
	for _, v := range buf[4410:] {
		if a := math.Abs(float64(v)); a > peak {
			peak = a
		}
	}
	if peak < 0.25 || peak > 0.35 {
		t.Errorf("Expected a quiet signal nearly untouched, peak %v", peak)
	}
}

func TestSafetyReset(t *testing.T) {
	s := NewSafetyStage(44100)
	s.Process([]float32{3.0, -3.0, 2.0})
	s.Reset()
	if s.gain != 1.0 || s.dcX1 != 0 || s.dcY1 != 0 {
		t.Error("Expected state cleared after Reset")
	}
}
