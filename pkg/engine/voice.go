package engine

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/sonogram/sonogram/pkg/dsp/envelope"
	"github.com/sonogram/sonogram/pkg/dsp/filter"
	"github.com/sonogram/sonogram/pkg/dsp/oscillator"
)

// NoteToFrequency converts a MIDI note number to its frequency in Hz
// (equal temperament, A4 = 440 Hz = note 69).
func NoteToFrequency(note int) float64 {
	return 440.0 * math.Exp2(float64(note-69)/12.0)
}

// Voice is a single sounding note. Its oscillator, filter, envelope and
// chain are exclusively owned copies seeded from the engine defaults at
// note-on; they are never shared with other voices or with the defaults.
type Voice struct {
	note      int
	frequency float64
	velocity  float64
	startTime time.Time
	released  bool

	mix oscillator.Mix // snapshot of the shared mix, refreshed each buffer

	gen    *oscillator.Generator
	env    *envelope.ADSR
	filter *filter.LowPass
	chain  *Chain
}

// voiceDefaults is a snapshot of the shared parameters a new voice is
// seeded from.
type voiceDefaults struct {
	sampleRate float64
	attack     float64
	decay      float64
	sustain    float64
	release    float64
	cutoff     float64
	resonance  float64
	mix        oscillator.Mix
}

// newVoice constructs a voice with its own oscillator, filter, envelope
// and chain, and triggers the envelope.
func newVoice(note, velocity int, def voiceDefaults, log zerolog.Logger) *Voice {
	v := &Voice{
		note:      note,
		frequency: NoteToFrequency(note),
		velocity:  float64(velocity) / 127.0,
		startTime: time.Now(),
		mix:       def.mix,
		gen:       oscillator.New(def.sampleRate),
		env:       envelope.New(def.attack, def.decay, def.sustain, def.release),
		filter:    filter.New(def.sampleRate),
	}
	if err := v.filter.SetCutoff(def.cutoff); err != nil {
		log.Warn().Err(err).Int("note", note).Msg("voice filter cutoff rejected, using defaults")
		v.filter.Reset()
	}
	if err := v.filter.SetResonance(def.resonance); err != nil {
		log.Warn().Err(err).Int("note", note).Msg("voice filter resonance rejected, using defaults")
		v.filter.Reset()
	}
	v.chain = newVoiceChain(v, def.sampleRate, log)
	v.env.NoteOn()
	return v
}

// newVoiceChain builds the per-voice signal path:
// oscillator source, resonant filter, envelope gain.
func newVoiceChain(v *Voice, sampleRate float64, log zerolog.Logger) *Chain {
	c := NewChain(log)
	c.Append(ModuleOscillator, &oscillatorModule{voice: v})
	c.Append(ModuleFilter, &filterModule{filter: v.filter})
	c.Append(ModuleEnvelope, &envelopeModule{env: v.env, sampleRate: sampleRate})
	return c
}

// oscillatorModule adapts the voice's generator as a chain source.
// It ignores its input buffer.
type oscillatorModule struct {
	voice *Voice
}

func (m *oscillatorModule) Process(in, out []float32) error {
	m.voice.gen.Process(m.voice.frequency, m.voice.mix, out[:len(in)])
	return nil
}

func (m *oscillatorModule) Reset() {
	m.voice.gen.Reset()
}

// filterModule adapts the in-place filter to the chain interface.
type filterModule struct {
	filter *filter.LowPass
}

func (m *filterModule) Process(in, out []float32) error {
	copy(out, in)
	m.filter.Process(out[:len(in)])
	return nil
}

func (m *filterModule) Reset() {
	m.filter.Reset()
}

// envelopeModule advances the ADSR once per buffer and linearly
// interpolates the gain from the previous buffer's value across the
// samples, as a cheap anti-click ramp.
type envelopeModule struct {
	env        *envelope.ADSR
	sampleRate float64
	prevGain   float64
}

func (m *envelopeModule) Process(in, out []float32) error {
	gain := m.env.Advance(float64(len(in)) / m.sampleRate)
	n := float64(len(in))
	for i := range in {
		g := m.prevGain + (gain-m.prevGain)*(float64(i+1)/n)
		out[i] = in[i] * float32(g)
	}
	m.prevGain = gain
	return nil
}

func (m *envelopeModule) Reset() {
	m.prevGain = 0
}
