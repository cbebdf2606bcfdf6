package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
)

// gainModule scales the signal by a fixed factor.
type gainModule struct {
	gain   float32
	resets int
}

func (m *gainModule) Process(in, out []float32) error {
	for i := range in {
		out[i] = in[i] * m.gain
	}
	return nil
}

func (m *gainModule) Reset() { m.resets++ }

// failingModule always errors without touching the output.
type failingModule struct{}

func (failingModule) Process(in, out []float32) error {
	return errors.New("boom")
}

func (failingModule) Reset() {}

// nanModule writes NaN into every sample.
type nanModule struct{}

func (nanModule) Process(in, out []float32) error {
	for i := range in {
		out[i] = float32(math.NaN())
	}
	return nil
}

func (nanModule) Reset() {}

func ones(n int) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = 1
	}
	return buf
}

func TestChainProcessInOrder(t *testing.T) {
	c := NewChain(zerolog.Nop())
	c.Append(ModuleFilter, &gainModule{gain: 0.5})
	c.Append(ModuleEnvelope, &gainModule{gain: 0.5})

	buf := ones(8)
	c.Process(buf)
	for i, s := range buf {
		if s != 0.25 {
			t.Fatalf("Sample %d: expected 0.25 after two gain stages, got %v", i, s)
		}
	}
}

func TestChainBypassPassesThrough(t *testing.T) {
	c := NewChain(zerolog.Nop())
	c.Append(ModuleFilter, &gainModule{gain: 0.5})
	if !c.SetBypass(ModuleFilter, true) {
		t.Fatal("SetBypass did not find the module")
	}

	buf := ones(8)
	c.Process(buf)
	for i, s := range buf {
		if s != 1 {
			t.Fatalf("Sample %d changed by a bypassed module: %v", i, s)
		}
	}
}

func TestChainDisabledPassesThrough(t *testing.T) {
	c := NewChain(zerolog.Nop())
	c.Append(ModuleFilter, &gainModule{gain: 0.5})
	if !c.SetEnabled(ModuleFilter, false) {
		t.Fatal("SetEnabled did not find the module")
	}

	buf := ones(8)
	c.Process(buf)
	for i, s := range buf {
		if s != 1 {
			t.Fatalf("Sample %d changed by a disabled module: %v", i, s)
		}
	}
}

func TestChainFailureLeavesBufferAndContinues(t *testing.T) {
	c := NewChain(zerolog.Nop())
	c.Append(ModuleFilter, &gainModule{gain: 0.5})
	c.Append(ModuleReverb, failingModule{})
	c.Append(ModuleEnvelope, &gainModule{gain: 0.5})

	buf := ones(8)
	c.Process(buf)
	for i, s := range buf {
		if s != 0.25 {
			t.Fatalf("Sample %d: expected the chain to skip the failure and continue, got %v", i, s)
		}
	}
}

func TestChainNonFiniteOutputSkipped(t *testing.T) {
	c := NewChain(zerolog.Nop())
	c.Append(ModuleFilter, &gainModule{gain: 0.5})
	c.Append(ModuleReverb, nanModule{})

	buf := ones(8)
	c.Process(buf)
	for i, s := range buf {
		if s != 0.5 {
			t.Fatalf("Sample %d: expected NaN contribution discarded, got %v", i, s)
		}
	}
}

func TestChainInsertRemove(t *testing.T) {
	c := NewChain(zerolog.Nop())
	c.Append(ModuleFilter, &gainModule{gain: 0.5})
	c.Insert(0, ModuleOscillator, &gainModule{gain: 2})

	if c.Len() != 2 {
		t.Fatalf("Expected 2 modules, got %d", c.Len())
	}
	if c.Module(ModuleOscillator) == nil {
		t.Fatal("Inserted module not found")
	}

	buf := ones(4)
	c.Process(buf)
	if buf[0] != 1 {
		t.Errorf("Expected 2x then 0.5x to give 1, got %v", buf[0])
	}

	if !c.Remove(ModuleOscillator) {
		t.Fatal("Remove did not find the module")
	}
	if c.Len() != 1 || c.Module(ModuleOscillator) != nil {
		t.Error("Module still present after Remove")
	}
	if c.Remove(ModuleOscillator) {
		t.Error("Expected Remove to report a missing module")
	}
}

func TestChainReset(t *testing.T) {
	c := NewChain(zerolog.Nop())
	g := &gainModule{gain: 1}
	c.Append(ModuleFilter, g)
	c.Reset()
	if g.resets != 1 {
		t.Errorf("Expected 1 reset, got %d", g.resets)
	}
}

func TestModulateClampsToRange(t *testing.T) {
	c := NewChain(zerolog.Nop())

	var applied float64
	c.Bind(ParamCutoff, &ModRoute{
		Min:     20,
		Max:     1000,
		Amount:  500,
		Current: 800,
		Apply:   func(v float64) { applied = v },
	})

	if !c.Modulate(ParamCutoff, 1.0) {
		t.Fatal("Expected a bound parameter")
	}
	if applied != 1000 {
		t.Errorf("Expected clamp to 1000, got %v", applied)
	}

	if !c.Modulate(ParamCutoff, -10.0) {
		t.Fatal("Expected a bound parameter")
	}
	if applied != 20 {
		t.Errorf("Expected clamp to 20, got %v", applied)
	}
}

func TestModulateUnbound(t *testing.T) {
	c := NewChain(zerolog.Nop())
	if c.Modulate(ParamResonance, 0.5) {
		t.Error("Expected false for an unbound parameter")
	}
}
