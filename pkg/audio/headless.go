package audio

import (
	"sync"
	"time"
)

// HeadlessBackend pulls buffers from a Source on the real-time schedule
// without any output device. It is used for tests and for running the
// engine where no audio device exists.
type HeadlessBackend struct {
	src  Source
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewHeadless creates a headless backend.
func NewHeadless(src Source) *HeadlessBackend {
	return &HeadlessBackend{
		src:  src,
		stop: make(chan struct{}),
	}
}

// Start launches the pull loop. Each tick renders one buffer and discards
// it, preserving the engine's buffer-period cadence.
func (b *HeadlessBackend) Start() error {
	period := time.Duration(float64(b.src.BufferSize()) / float64(b.src.SampleRate()) * float64(time.Second))
	buf := make([]float32, b.src.BufferSize())

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-b.stop:
				return
			case <-ticker.C:
				b.src.Process(buf)
			}
		}
	}()
	return nil
}

// Close stops the pull loop.
func (b *HeadlessBackend) Close() error {
	b.once.Do(func() { close(b.stop) })
	b.wg.Wait()
	return nil
}
