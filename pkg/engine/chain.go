// Package engine ties the DSP components into a polyphonic synthesis
// engine: voice management, the processing chain, control-change routing
// and the real-time audio callback.
package engine

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/sonogram/sonogram/pkg/dsp"
)

// Module is a processing step in a chain. Process reads in and writes the
// processed signal to out; it must not assume in and out alias.
type Module interface {
	Process(in, out []float32) error
	Reset()
}

// ModuleID identifies a module slot in a chain.
type ModuleID int

const (
	// ModuleOscillator is the waveform source
	ModuleOscillator ModuleID = iota
	// ModuleFilter is the resonant low-pass filter
	ModuleFilter
	// ModuleEnvelope applies the ADSR gain
	ModuleEnvelope
	// ModuleReverb is the reverb effect
	ModuleReverb
	// ModuleDistortion is the distortion effect
	ModuleDistortion
	// ModuleDelay is the delay effect
	ModuleDelay
	// ModuleFlanger is the flanger effect
	ModuleFlanger
	// ModuleChorus is the chorus effect
	ModuleChorus
)

// String returns the module name.
func (id ModuleID) String() string {
	switch id {
	case ModuleOscillator:
		return "oscillator"
	case ModuleFilter:
		return "filter"
	case ModuleEnvelope:
		return "envelope"
	case ModuleReverb:
		return "reverb"
	case ModuleDistortion:
		return "distortion"
	case ModuleDelay:
		return "delay"
	case ModuleFlanger:
		return "flanger"
	case ModuleChorus:
		return "chorus"
	default:
		return "unknown"
	}
}

// ModRoute binds a modulation source to a module parameter. Apply receives
// the modulated value after clamping to [Min, Max].
type ModRoute struct {
	Min     float64
	Max     float64
	Amount  float64
	Current float64
	Apply   func(value float64)
}

type chainEntry struct {
	id      ModuleID
	module  Module
	enabled bool
	bypass  bool
}

// Chain is an ordered, mutable sequence of modules with per-module
// enable/bypass flags and a modulation routing table. A failing module is
// skipped: the signal keeps its pre-failure value and processing continues.
type Chain struct {
	log     zerolog.Logger
	entries []chainEntry
	routes  map[Parameter]*ModRoute
	scratch []float32
}

// NewChain creates an empty chain.
func NewChain(log zerolog.Logger) *Chain {
	return &Chain{
		log:    log,
		routes: make(map[Parameter]*ModRoute),
	}
}

// Append adds a module at the end of the chain, enabled and not bypassed.
func (c *Chain) Append(id ModuleID, m Module) {
	c.entries = append(c.entries, chainEntry{id: id, module: m, enabled: true})
}

// Insert adds a module at the given position; out-of-range positions append.
func (c *Chain) Insert(pos int, id ModuleID, m Module) {
	if pos < 0 || pos >= len(c.entries) {
		c.Append(id, m)
		return
	}
	entry := chainEntry{id: id, module: m, enabled: true}
	c.entries = append(c.entries[:pos], append([]chainEntry{entry}, c.entries[pos:]...)...)
}

// Remove deletes the first module with the given id. It reports whether a
// module was removed.
func (c *Chain) Remove(id ModuleID) bool {
	for i, e := range c.entries {
		if e.id == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Module returns the first module with the given id, or nil.
func (c *Chain) Module(id ModuleID) Module {
	for _, e := range c.entries {
		if e.id == id {
			return e.module
		}
	}
	return nil
}

// Len returns the number of modules in the chain.
func (c *Chain) Len() int { return len(c.entries) }

// SetEnabled enables or disables a module. A disabled module passes its
// input through unchanged.
func (c *Chain) SetEnabled(id ModuleID, enabled bool) bool {
	for i := range c.entries {
		if c.entries[i].id == id {
			c.entries[i].enabled = enabled
			return true
		}
	}
	return false
}

// SetBypass bypasses or un-bypasses a module.
func (c *Chain) SetBypass(id ModuleID, bypass bool) bool {
	for i := range c.entries {
		if c.entries[i].id == id {
			c.entries[i].bypass = bypass
			return true
		}
	}
	return false
}

// Bind registers a modulation route for a parameter.
func (c *Chain) Bind(p Parameter, r *ModRoute) {
	c.routes[p] = r
}

// Modulate applies a modulation source value to a bound parameter. The
// resulting value is clamped to the route's [Min, Max] before the module
// callback is invoked. It reports whether the parameter was bound.
func (c *Chain) Modulate(p Parameter, source float64) bool {
	r, ok := c.routes[p]
	if !ok {
		return false
	}
	value := r.Current + source*r.Amount
	value = math.Max(r.Min, math.Min(r.Max, value))
	r.Current = value
	if r.Apply != nil {
		r.Apply(value)
	}
	return true
}

// Process pipes the buffer through every enabled, non-bypassed module in
// order. A module error or non-finite output is logged and that module's
// contribution discarded; the chain continues with the previous signal.
func (c *Chain) Process(buffer []float32) {
	if len(c.scratch) < len(buffer) {
		c.scratch = make([]float32, len(buffer))
	}
	scratch := c.scratch[:len(buffer)]

	for _, e := range c.entries {
		if !e.enabled || e.bypass {
			continue
		}
		if err := e.module.Process(buffer, scratch); err != nil {
			c.log.Warn().Err(err).Stringer("module", e.id).Msg("module failed, skipping")
			continue
		}
		if !dsp.IsFinite(scratch) {
			c.log.Warn().Stringer("module", e.id).Msg("module produced non-finite output, skipping")
			continue
		}
		copy(buffer, scratch)
	}
}

// Reset resets every module in the chain.
func (c *Chain) Reset() {
	for _, e := range c.entries {
		e.module.Reset()
	}
}
