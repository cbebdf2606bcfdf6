package engine

import (
	"math"

	"github.com/sonogram/sonogram/pkg/dsp"
	"github.com/sonogram/sonogram/pkg/dsp/oscillator"
)

// Parameter identifies a controllable engine parameter. Parameters are
// pushed to registered listeners whenever they change; the engine never
// reads anything back.
type Parameter int

const (
	// ParamMixSine through ParamMixPulse are oscillator mix levels
	ParamMixSine Parameter = iota
	ParamMixSaw
	ParamMixTriangle
	ParamMixPulse
	// ParamDetuneSine through ParamDetunePulse are oscillator detune
	// offsets in semitones
	ParamDetuneSine
	ParamDetuneSaw
	ParamDetuneTriangle
	ParamDetunePulse
	// ParamAttack through ParamRelease are the envelope defaults
	ParamAttack
	ParamSustain
	ParamDecay
	ParamRelease
	// ParamCutoff and ParamResonance are the filter defaults
	ParamCutoff
	ParamResonance
	// ParamReverbMix through ParamChorusMix are effect wet levels
	ParamReverbMix
	ParamDistortionMix
	ParamDelayMix
	ParamFlangerMix
	ParamChorusMix
)

// String returns the parameter name.
func (p Parameter) String() string {
	switch p {
	case ParamMixSine:
		return "mix.sine"
	case ParamMixSaw:
		return "mix.saw"
	case ParamMixTriangle:
		return "mix.triangle"
	case ParamMixPulse:
		return "mix.pulse"
	case ParamDetuneSine:
		return "detune.sine"
	case ParamDetuneSaw:
		return "detune.saw"
	case ParamDetuneTriangle:
		return "detune.triangle"
	case ParamDetunePulse:
		return "detune.pulse"
	case ParamAttack:
		return "envelope.attack"
	case ParamSustain:
		return "envelope.sustain"
	case ParamDecay:
		return "envelope.decay"
	case ParamRelease:
		return "envelope.release"
	case ParamCutoff:
		return "filter.cutoff"
	case ParamResonance:
		return "filter.resonance"
	case ParamReverbMix:
		return "effect.reverb"
	case ParamDistortionMix:
		return "effect.distortion"
	case ParamDelayMix:
		return "effect.delay"
	case ParamFlangerMix:
		return "effect.flanger"
	case ParamChorusMix:
		return "effect.chorus"
	default:
		return "unknown"
	}
}

// ParameterListener receives one-way parameter change notifications.
type ParameterListener func(param Parameter, value float64)

// MIDI control change numbers consumed by the engine.
const (
	ccMixSine      = 14
	ccMixPulse     = 17
	ccAttack       = 18
	ccSustain      = 19
	ccDecay        = 20
	ccRelease      = 21
	ccCutoff       = 22
	ccResonance    = 23
	ccDetuneSine   = 26
	ccDetunePulse  = 29
	ccEffectReverb = 102
	ccEffectChorus = 106
)

// maxStageSeconds is the envelope stage time mapped to CC value 127.
const maxStageSeconds = 2.0

// AddListener registers a parameter change listener.
func (e *Engine) AddListener(l ParameterListener) {
	if l == nil {
		return
	}
	e.paramMu.Lock()
	e.listeners = append(e.listeners, l)
	e.paramMu.Unlock()
}

// notify pushes a change to every registered listener. Listeners are
// called outside the parameter lock.
func (e *Engine) notify(p Parameter, value float64) {
	e.paramMu.Lock()
	listeners := make([]ParameterListener, len(e.listeners))
	copy(listeners, e.listeners)
	e.paramMu.Unlock()
	for _, l := range listeners {
		l(p, value)
	}
}

// controlChange routes a control change to the parameter it maps to.
// Values outside 0-127 are clamped, never rejected.
func (e *Engine) controlChange(controller, value int) {
	if value < 0 {
		value = 0
	} else if value > 127 {
		value = 127
	}
	norm := float64(value) / 127.0

	switch {
	case controller >= ccMixSine && controller <= ccMixPulse:
		w := oscillator.Waveform(controller - ccMixSine)
		e.paramMu.Lock()
		e.mix.Level[w] = norm
		e.paramMu.Unlock()
		e.notify(ParamMixSine+Parameter(w), norm)

	case controller >= ccDetuneSine && controller <= ccDetunePulse:
		w := oscillator.Waveform(controller - ccDetuneSine)
		semitones := norm*2.0 - 1.0
		e.paramMu.Lock()
		e.mix.Detune[w] = semitones
		e.paramMu.Unlock()
		e.notify(ParamDetuneSine+Parameter(w), semitones)

	case controller == ccAttack:
		seconds := norm * maxStageSeconds
		e.paramMu.Lock()
		e.attack = seconds
		e.paramMu.Unlock()
		e.notify(ParamAttack, seconds)

	case controller == ccSustain:
		e.paramMu.Lock()
		e.sustain = norm
		e.paramMu.Unlock()
		e.notify(ParamSustain, norm)

	case controller == ccDecay:
		seconds := norm * maxStageSeconds
		e.paramMu.Lock()
		e.decay = seconds
		e.paramMu.Unlock()
		e.notify(ParamDecay, seconds)

	case controller == ccRelease:
		seconds := norm * maxStageSeconds
		e.paramMu.Lock()
		e.release = seconds
		e.paramMu.Unlock()
		e.notify(ParamRelease, seconds)

	case controller == ccCutoff:
		cutoff := expScale(norm, dsp.MinCutoffHz, e.sampleRate/dsp.CutoffNyquistDivisor)
		e.paramMu.Lock()
		e.cutoff = cutoff
		e.paramMu.Unlock()
		e.propagateFilter()
		e.notify(ParamCutoff, cutoff)

	case controller == ccResonance:
		q := dsp.MinQ + norm*(dsp.MaxQ-dsp.MinQ)
		e.paramMu.Lock()
		e.resonance = q
		e.paramMu.Unlock()
		e.propagateFilter()
		e.notify(ParamResonance, q)

	case controller >= ccEffectReverb && controller <= ccEffectChorus:
		e.setEffectMix(controller, norm)

	default:
		e.log.Debug().Int("controller", controller).Int("value", value).Msg("unmapped control change")
	}
}

// propagateFilter pushes the current filter defaults into every existing
// voice. A filter that rejects the update is reset to its stable defaults.
func (e *Engine) propagateFilter() {
	e.paramMu.Lock()
	cutoff, q := e.cutoff, e.resonance
	e.paramMu.Unlock()

	e.voiceMu.Lock()
	defer e.voiceMu.Unlock()
	for _, voices := range []map[int]*Voice{e.active, e.released} {
		for note, v := range voices {
			if err := v.filter.SetCutoff(cutoff); err != nil {
				e.log.Warn().Err(err).Int("note", note).Msg("filter update failed, resetting")
				v.filter.Reset()
				continue
			}
			if err := v.filter.SetResonance(q); err != nil {
				e.log.Warn().Err(err).Int("note", note).Msg("filter update failed, resetting")
				v.filter.Reset()
			}
		}
	}
}

// setEffectMix maps an effect CC to the wet level, with dry = 1 - wet.
func (e *Engine) setEffectMix(controller int, wet float64) {
	var p Parameter
	e.paramMu.Lock()
	switch controller {
	case ccEffectReverb:
		e.reverb.SetWet(wet)
		e.reverb.SetDry(1.0 - wet)
		p = ParamReverbMix
	case ccEffectReverb + 1:
		e.distortion.SetWet(wet)
		e.distortion.SetDry(1.0 - wet)
		p = ParamDistortionMix
	case ccEffectReverb + 2:
		e.delay.SetWet(wet)
		e.delay.SetDry(1.0 - wet)
		p = ParamDelayMix
	case ccEffectReverb + 3:
		e.flanger.SetWet(wet)
		e.flanger.SetDry(1.0 - wet)
		p = ParamFlangerMix
	case ccEffectReverb + 4:
		e.chorus.SetWet(wet)
		e.chorus.SetDry(1.0 - wet)
		p = ParamChorusMix
	}
	e.paramMu.Unlock()
	e.notify(p, wet)
}

// expScale maps a normalized value exponentially onto [min, max], which
// suits frequency parameters better than a linear sweep.
func expScale(norm, min, max float64) float64 {
	if min <= 0 || max <= 0 {
		return min + norm*(max-min)
	}
	return min * math.Pow(max/min, norm)
}
