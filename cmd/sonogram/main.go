package main

import (
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	log "github.com/rs/zerolog/log"

	"github.com/sonogram/sonogram/pkg/audio"
	"github.com/sonogram/sonogram/pkg/dsp/analysis"
	"github.com/sonogram/sonogram/pkg/engine"
)

var cfg struct {
	Backend    string
	Render     string
	Duration   float64
	SampleRate int
	BufferSize int
	Voices     int
	Gain       float64
	LogLevel   string
}

func init() {
	flag.StringVar(&cfg.Backend, "backend", "oto", "audio backend: oto, pulse or none")
	flag.StringVar(&cfg.Render, "render", "", "render to a WAV file instead of playing live")
	flag.Float64Var(&cfg.Duration, "duration", 8.0, "length of the rendered file in seconds")
	flag.IntVar(&cfg.SampleRate, "sample-rate", 44100, "sample rate in Hz")
	flag.IntVar(&cfg.BufferSize, "buffer-size", 256, "buffer size in frames")
	flag.IntVar(&cfg.Voices, "voices", 16, "maximum simultaneous voices")
	flag.Float64Var(&cfg.Gain, "gain", 0.8, "master gain")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "minimum level of messages to log to console")
}

func main() {
	log.Logger = zerolog.New(
		zerolog.ConsoleWriter{
			Out: os.Stderr,
		},
	).With().Timestamp().Logger()

	flag.Parse()

	logLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Str("level", cfg.LogLevel).Msg("Unknown log level")
	}
	zerolog.SetGlobalLevel(logLevel)

	eng := engine.New(engine.Config{
		SampleRate: cfg.SampleRate,
		BufferSize: cfg.BufferSize,
		MaxVoices:  cfg.Voices,
		MasterGain: cfg.Gain,
		Logger:     log.Logger,
	})

	eng.AddListener(func(p engine.Parameter, value float64) {
		log.Info().Str("param", p.String()).Float64("value", value).Msg("parameter changed")
	})

	if cfg.Render != "" {
		if err := renderDemo(eng, cfg.Render, cfg.Duration); err != nil {
			log.Fatal().Err(err).Msg("render failed")
		}
		return
	}

	var backend audio.Backend
	switch cfg.Backend {
	case "oto":
		backend, err = audio.NewOto(eng)
	case "pulse":
		backend, err = audio.NewPulse(eng, "sonogram")
	case "none":
		backend = audio.NewHeadless(eng)
	default:
		log.Fatal().Str("backend", cfg.Backend).Msg("Unknown backend")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("opening audio backend failed")
	}
	defer backend.Close()

	eng.Start()
	if err := backend.Start(); err != nil {
		log.Fatal().Err(err).Msg("starting playback failed")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	log.Info().Int("sample_rate", eng.SampleRate()).Int("buffer_size", eng.BufferSize()).Msg("playing, press Ctrl-C to quit")
	playDemo(eng, stop)

	eng.Stop()
	log.Info().Msg("Exit on SIGINT")
}

// demoNotes is a C minor arpeggio across two octaves.
var demoNotes = []int{60, 63, 67, 70, 72, 70, 67, 63}

// playDemo loops the arpeggio until interrupted.
func playDemo(eng *engine.Engine, stop <-chan os.Signal) {
	step := time.NewTicker(250 * time.Millisecond)
	defer step.Stop()

	i := 0
	prev := -1
	for {
		select {
		case <-stop:
			if prev >= 0 {
				eng.NoteOff(prev)
			}
			return
		case <-step.C:
			if prev >= 0 {
				eng.NoteOff(prev)
			}
			note := demoNotes[i%len(demoNotes)]
			eng.NoteOn(note, 100)
			prev = note
			i++
		}
	}
}

// renderDemo bounces the arpeggio to a WAV file faster than real time,
// then reports the dominant frequency of a probe buffer as a sanity check.
func renderDemo(eng *engine.Engine, path string, seconds float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	eng.Start()
	w := audio.NewWAVWriter(eng, f)

	noteDur := seconds / float64(len(demoNotes)*2)
	for _, note := range demoNotes {
		eng.NoteOn(note, 100)
		if err := w.Render(noteDur); err != nil {
			return err
		}
		eng.NoteOff(note)
		if err := w.Render(noteDur); err != nil {
			return err
		}
	}

	probe := make([]float32, 4096)
	eng.NoteOn(69, 100)
	eng.Process(probe)
	eng.Process(probe)
	log.Info().Float64("dominant_hz", analysis.DominantFrequency(probe, float64(eng.SampleRate()))).Msg("probe spectrum")
	eng.NoteOff(69)

	if err := w.Close(); err != nil {
		return err
	}
	log.Info().Str("path", path).Float64("seconds", seconds).Msg("render complete")
	return nil
}
