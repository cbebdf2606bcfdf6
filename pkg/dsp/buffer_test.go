package dsp

import (
	"math"
	"testing"
)

func TestClear(t *testing.T) {
	buf := []float32{1, 2, 3}
	Clear(buf)
	for i, s := range buf {
		if s != 0 {
			t.Errorf("Sample %d not cleared: %v", i, s)
		}
	}
}

func TestAddScaled(t *testing.T) {
	dst := []float32{1, 1, 1}
	AddScaled(dst, []float32{1, 2, 3}, 0.5)
	want := []float32{1.5, 2, 2.5}
	for i := range dst {
		if dst[i] != want[i] {
			t.Errorf("Sample %d: expected %v, got %v", i, want[i], dst[i])
		}
	}
}

func TestAddScaledShorterSource(t *testing.T) {
	dst := []float32{1, 1, 1}
	AddScaled(dst, []float32{1}, 1.0)
	if dst[0] != 2 || dst[1] != 1 || dst[2] != 1 {
		t.Errorf("Unexpected result: %v", dst)
	}
}

func TestClip(t *testing.T) {
	buf := []float32{-2, -1, 0, 0.5, 1.5}
	Clip(buf)
	want := []float32{-1, -1, 0, 0.5, 1}
	for i := range buf {
		if buf[i] != want[i] {
			t.Errorf("Sample %d: expected %v, got %v", i, want[i], buf[i])
		}
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite([]float32{0, 1, -1}) {
		t.Error("Expected a plain buffer to be finite")
	}
	if IsFinite([]float32{0, float32(math.NaN())}) {
		t.Error("Expected NaN to be detected")
	}
	if IsFinite([]float32{float32(math.Inf(1))}) {
		t.Error("Expected Inf to be detected")
	}
	if !IsFinite(nil) {
		t.Error("Expected an empty buffer to be finite")
	}
}
