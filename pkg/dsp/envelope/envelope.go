// Package envelope provides the ADSR envelope generator.
package envelope

import "math"

// Stage represents the current envelope stage.
type Stage int

const (
	// StageOff is the terminal idle state
	StageOff Stage = iota
	// StageAttack ramps from 0 to 1
	StageAttack
	// StageDecay ramps from 1 down to the sustain level
	StageDecay
	// StageSustain holds the sustain level until note off
	StageSustain
	// StageRelease ramps from the sustain level down to 0
	StageRelease
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageOff:
		return "off"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "unknown"
	}
}

// ADSR is a piecewise-linear attack/decay/sustain/release envelope.
// It is advanced once per output buffer; the caller interpolates the
// returned gain across the buffer.
type ADSR struct {
	attack  float64 // seconds
	decay   float64 // seconds
	sustain float64 // level 0-1
	release float64 // seconds

	stage       Stage
	timeInStage float64
	value       float64
}

// New creates an envelope with the given stage parameters.
// Times are in seconds, sustain is a level in [0, 1].
func New(attack, decay, sustain, release float64) *ADSR {
	return &ADSR{
		attack:  attack,
		decay:   decay,
		sustain: clamp01(sustain),
		release: release,
	}
}

// SetAttack sets the attack time in seconds.
func (e *ADSR) SetAttack(seconds float64) { e.attack = seconds }

// SetDecay sets the decay time in seconds.
func (e *ADSR) SetDecay(seconds float64) { e.decay = seconds }

// SetSustain sets the sustain level (0-1).
func (e *ADSR) SetSustain(level float64) { e.sustain = clamp01(level) }

// SetRelease sets the release time in seconds.
func (e *ADSR) SetRelease(seconds float64) { e.release = seconds }

// NoteOn restarts the envelope from the attack stage.
func (e *ADSR) NoteOn() {
	e.stage = StageAttack
	e.timeInStage = 0
}

// NoteOff moves a sounding envelope into the release stage.
func (e *ADSR) NoteOff() {
	switch e.stage {
	case StageAttack, StageDecay, StageSustain:
		e.stage = StageRelease
		e.timeInStage = 0
	}
}

// Stage returns the current stage.
func (e *ADSR) Stage() Stage { return e.stage }

// Value returns the gain computed by the last Advance call.
func (e *ADSR) Value() float64 { return e.value }

// Finished reports whether the envelope has reached the terminal off state.
func (e *ADSR) Finished() bool { return e.stage == StageOff }

// Advance moves the envelope forward by dt seconds and returns the new gain
// in [0, 1]. Zero or negative stage durations complete immediately, so a
// zero-attack zero-decay envelope lands on sustain within a single call.
func (e *ADSR) Advance(dt float64) float64 {
	if dt < 0 {
		dt = 0
	}
	e.timeInStage += dt

	for {
		switch e.stage {
		case StageOff:
			e.value = 0
			return 0

		case StageAttack:
			if e.attack <= 0 || e.timeInStage >= e.attack {
				e.stage = StageDecay
				e.timeInStage = 0
				e.value = 1.0
				continue
			}
			e.value = e.timeInStage / e.attack

		case StageDecay:
			if e.decay <= 0 || e.timeInStage >= e.decay {
				e.stage = StageSustain
				e.timeInStage = 0
				e.value = e.sustain
				break
			}
			e.value = 1.0 - (1.0-e.sustain)*(e.timeInStage/e.decay)

		case StageSustain:
			e.value = e.sustain

		case StageRelease:
			if e.release <= 0 || e.timeInStage >= e.release {
				e.stage = StageOff
				e.timeInStage = 0
				e.value = 0
				break
			}
			e.value = e.sustain * (1.0 - e.timeInStage/e.release)
		}
		break
	}

	e.value = clamp01(e.value)
	return e.value
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
