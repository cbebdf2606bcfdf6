package engine

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/sonogram/sonogram/pkg/dsp"
	"github.com/sonogram/sonogram/pkg/dsp/effects"
	"github.com/sonogram/sonogram/pkg/dsp/oscillator"
)

// Config holds the engine construction parameters. Zero values fall back
// to sensible defaults.
type Config struct {
	SampleRate int
	BufferSize int
	MaxVoices  int
	MasterGain float64
	QueueSize  int
	Logger     zerolog.Logger
}

func (c *Config) applyDefaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = int(dsp.SampleRate44k1)
	}
	if c.BufferSize <= 0 {
		c.BufferSize = dsp.DefaultBufferSize
	}
	if c.MaxVoices <= 0 {
		c.MaxVoices = 16
	}
	if c.MasterGain <= 0 {
		c.MasterGain = 0.8
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
}

type eventKind int

const (
	eventNoteOn eventKind = iota
	eventNoteOff
	eventControlChange
)

type event struct {
	kind eventKind
	a    int // note or controller
	b    int // velocity or value
}

// Engine is the polyphonic synthesis engine. Control events are enqueued
// from any goroutine and drained at the start of each Process call; the
// audio thread is the only mutator of the voice sets.
type Engine struct {
	log        zerolog.Logger
	sampleRate float64
	bufferSize int
	maxVoices  int
	masterGain float64

	events  chan event
	running atomic.Bool

	// voiceMu guards the voice maps.
	voiceMu  sync.Mutex
	active   map[int]*Voice
	released map[int]*Voice

	// paramMu guards the shared defaults, the effect bank and listeners.
	paramMu    sync.Mutex
	mix        oscillator.Mix
	attack     float64
	decay      float64
	sustain    float64
	release    float64
	cutoff     float64
	resonance  float64
	fx         *Chain
	reverb     *effects.Reverb
	distortion *effects.Distortion
	delay      *effects.Delay
	flanger    *effects.Flanger
	chorus     *effects.Chorus
	listeners  []ParameterListener

	safety   *SafetyStage
	voiceBuf []float32
}

// New creates an engine with the global effect bank wired into its output
// chain. The engine starts stopped; call Start before pulling audio.
func New(cfg Config) *Engine {
	cfg.applyDefaults()
	sr := float64(cfg.SampleRate)

	e := &Engine{
		log:        cfg.Logger,
		sampleRate: sr,
		bufferSize: cfg.BufferSize,
		maxVoices:  cfg.MaxVoices,
		masterGain: cfg.MasterGain,
		events:     make(chan event, cfg.QueueSize),
		active:     make(map[int]*Voice),
		released:   make(map[int]*Voice),
		mix:        oscillator.DefaultMix(),
		attack:     0.1,
		decay:      0.1,
		sustain:    0.7,
		release:    0.1,
		cutoff:     1000.0,
		resonance:  dsp.DefaultQ,
		reverb:     effects.NewReverb(),
		distortion: effects.NewDistortion(),
		delay:      effects.NewDelay(sr),
		flanger:    effects.NewFlanger(sr),
		chorus:     effects.NewChorus(sr),
		safety:     NewSafetyStage(sr),
		voiceBuf:   make([]float32, cfg.BufferSize),
	}

	e.fx = NewChain(cfg.Logger)
	e.fx.Append(ModuleReverb, e.reverb)
	e.fx.Append(ModuleDistortion, e.distortion)
	e.fx.Append(ModuleDelay, e.delay)
	e.fx.Append(ModuleFlanger, e.flanger)
	e.fx.Append(ModuleChorus, e.chorus)

	return e
}

// SampleRate returns the engine sample rate in Hz.
func (e *Engine) SampleRate() int { return int(e.sampleRate) }

// BufferSize returns the preferred buffer size in frames.
func (e *Engine) BufferSize() int { return e.bufferSize }

// Start allows Process to produce audio.
func (e *Engine) Start() { e.running.Store(true) }

// Stop silences the engine. An in-flight Process call finishes its current
// buffer; later calls produce silence.
func (e *Engine) Stop() { e.running.Store(false) }

// Running reports whether the engine is producing audio.
func (e *Engine) Running() bool { return e.running.Load() }

// NoteOn enqueues a note-on event (note 0-127, velocity 0-127).
func (e *Engine) NoteOn(note, velocity int) {
	e.push(event{kind: eventNoteOn, a: note, b: velocity})
}

// NoteOff enqueues a note-off event.
func (e *Engine) NoteOff(note int) {
	e.push(event{kind: eventNoteOff, a: note})
}

// ControlChange enqueues a control change event.
func (e *Engine) ControlChange(controller, value int) {
	e.push(event{kind: eventControlChange, a: controller, b: value})
}

// push enqueues without blocking. A full queue drops the event so the
// control thread can never stall the audio thread.
func (e *Engine) push(ev event) {
	select {
	case e.events <- ev:
	default:
		e.log.Warn().Int("kind", int(ev.kind)).Msg("event queue full, dropping event")
	}
}

// Process fills out with the next buffer of samples. This is the audio
// callback: it drains the event queue, renders every active and released
// voice, runs the global effects chain and the safety stage, and always
// returns a valid (possibly silent) buffer.
func (e *Engine) Process(out []float32) {
	dsp.Clear(out)
	if len(out) == 0 || !e.running.Load() {
		return
	}

	e.drainEvents()

	e.paramMu.Lock()
	mix := e.mix
	e.paramMu.Unlock()

	e.voiceMu.Lock()
	if len(e.voiceBuf) < len(out) {
		e.voiceBuf = make([]float32, len(out))
	}
	buf := e.voiceBuf[:len(out)]

	if count := len(e.active) + len(e.released); count > 0 {
		scale := float32(e.masterGain / math.Sqrt(float64(count)))
		for _, v := range e.active {
			e.renderVoice(v, mix, buf, out, scale)
		}
		for note, v := range e.released {
			e.renderVoice(v, mix, buf, out, scale)
			if v.env.Finished() {
				delete(e.released, note)
			}
		}
	}
	e.voiceMu.Unlock()

	e.paramMu.Lock()
	e.fx.Process(out)
	e.paramMu.Unlock()

	e.safety.Process(out)

	if !dsp.IsFinite(out) {
		e.log.Warn().Msg("non-finite output buffer, muting")
		dsp.Clear(out)
		return
	}
	dsp.Clip(out)
}

// renderVoice runs one voice's chain and accumulates its clipped
// contribution. A failing voice is skipped for this buffer only.
func (e *Engine) renderVoice(v *Voice, mix oscillator.Mix, buf, out []float32, scale float32) {
	v.mix = mix
	dsp.Clear(buf)
	v.chain.Process(buf)
	if !dsp.IsFinite(buf) {
		e.log.Warn().Int("note", v.note).Msg("voice produced non-finite output, skipping")
		return
	}
	dsp.Clip(buf)
	dsp.AddScaled(out, buf, scale*float32(v.velocity))
}

// drainEvents applies every queued event in FIFO order. Events are applied
// exactly once, at the start of the buffer they are drained in.
func (e *Engine) drainEvents() {
	for {
		select {
		case ev := <-e.events:
			switch ev.kind {
			case eventNoteOn:
				e.noteOn(ev.a, ev.b)
			case eventNoteOff:
				e.noteOff(ev.a)
			case eventControlChange:
				e.controlChange(ev.a, ev.b)
			}
		default:
			return
		}
	}
}

// noteOn allocates a voice, stealing the oldest active voice when the
// polyphony bound is reached. A note that is already sounding retriggers
// its envelope instead of allocating a second voice.
func (e *Engine) noteOn(note, velocity int) {
	if note < 0 || note > 127 {
		return
	}

	e.voiceMu.Lock()
	if v, ok := e.active[note]; ok {
		v.env.NoteOn()
		e.voiceMu.Unlock()
		return
	}
	if len(e.active) >= e.maxVoices {
		e.stealOldest()
	}
	e.voiceMu.Unlock()

	e.paramMu.Lock()
	def := voiceDefaults{
		sampleRate: e.sampleRate,
		attack:     e.attack,
		decay:      e.decay,
		sustain:    e.sustain,
		release:    e.release,
		cutoff:     e.cutoff,
		resonance:  e.resonance,
		mix:        e.mix,
	}
	e.paramMu.Unlock()

	v := newVoice(note, velocity, def, e.log)

	e.voiceMu.Lock()
	e.active[note] = v
	e.voiceMu.Unlock()

	e.log.Debug().Int("note", note).Float64("freq", v.frequency).Msg("note on")
}

// stealOldest moves the active voice with the earliest start time into the
// released set. Caller holds voiceMu.
func (e *Engine) stealOldest() {
	var oldest *Voice
	for _, v := range e.active {
		if oldest == nil || v.startTime.Before(oldest.startTime) {
			oldest = v
		}
	}
	if oldest == nil {
		return
	}
	delete(e.active, oldest.note)
	oldest.released = true
	oldest.env.NoteOff()
	e.released[oldest.note] = oldest
	e.log.Debug().Int("note", oldest.note).Msg("voice stolen")
}

// noteOff moves an active voice into the released set and starts its
// envelope release. The voice keeps sounding until the envelope finishes.
func (e *Engine) noteOff(note int) {
	e.voiceMu.Lock()
	defer e.voiceMu.Unlock()

	v, ok := e.active[note]
	if !ok {
		return
	}
	delete(e.active, note)
	v.released = true
	v.env.NoteOff()
	e.released[note] = v
	e.log.Debug().Int("note", note).Msg("note off")
}

// ActiveVoices returns the number of voices in the active set.
func (e *Engine) ActiveVoices() int {
	e.voiceMu.Lock()
	defer e.voiceMu.Unlock()
	return len(e.active)
}

// ReleasedVoices returns the number of voices in the released set.
func (e *Engine) ReleasedVoices() int {
	e.voiceMu.Lock()
	defer e.voiceMu.Unlock()
	return len(e.released)
}

// Effects returns the global effects chain.
func (e *Engine) Effects() *Chain { return e.fx }
