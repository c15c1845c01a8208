package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jagtap-suraj/sensai/pkg/audio/pcm"
	"github.com/jagtap-suraj/sensai/pkg/audio/resampler"
)

// Source is a live mono microphone stream of float samples in [-1, 1].
type Source interface {
	// Read fills buf and returns the number of samples read. It may block
	// for up to one device buffer.
	Read(buf []float32) (int, error)

	// SampleRate returns the device sample rate in Hz.
	SampleRate() int

	// Close releases the device.
	Close() error
}

// ErrStarted is returned by Start when the pipeline has already run.
// Pipelines are not restartable.
var ErrStarted = errors.New("capture: pipeline already started")

// Config configures a Pipeline.
type Config struct {
	// Format is the target PCM format sent to the session.
	Format pcm.Format

	// FrameSize is the number of samples per frame (default 2048).
	FrameSize int

	// BlockSize is the number of samples requested per source read
	// (default 1024).
	BlockSize int

	// Tap, if set, receives every raw block read from the source before
	// resampling. The slice is reused after Tap returns.
	Tap func(samples []float32)

	// OnError, if set, receives the error that stopped the pipeline.
	OnError func(error)
}

// Pipeline reads a Source on its own goroutine and emits encoded frames.
type Pipeline struct {
	src Source
	cfg Config
	rs  *resampler.Resampler

	frames chan []byte
	stop   chan struct{}
	done   chan struct{}

	started  atomic.Bool
	stopOnce sync.Once
}

// New prepares a pipeline for src. The resampler is set up here so that an
// unusable device rate fails before the session goes live.
func New(src Source, cfg Config) (*Pipeline, error) {
	if src == nil {
		return nil, errors.New("capture: nil source")
	}
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = DefaultFrameSize
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 1024
	}
	rs, err := resampler.New(src.SampleRate(), cfg.Format.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return &Pipeline{
		src:    src,
		cfg:    cfg,
		rs:     rs,
		frames: make(chan []byte, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Frames returns the channel of little-endian PCM16 frames. It is closed
// when the pipeline stops.
func (p *Pipeline) Frames() <-chan []byte {
	return p.frames
}

// Format returns the frame format.
func (p *Pipeline) Format() pcm.Format {
	return p.cfg.Format
}

// Start launches the capture goroutine.
func (p *Pipeline) Start() error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	go p.run()
	return nil
}

// Stop halts capture and waits for the goroutine to exit. Any partially
// filled frame is discarded. Stop is idempotent and does not close the
// source.
func (p *Pipeline) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
		if p.started.CompareAndSwap(false, true) {
			// Never started: nothing will close the channels.
			close(p.frames)
			close(p.done)
		}
	})
	<-p.done
	p.rs.Close()
}

func (p *Pipeline) stopped() bool {
	select {
	case <-p.stop:
		return true
	default:
		return false
	}
}

func (p *Pipeline) run() {
	defer close(p.done)
	defer close(p.frames)

	enc := NewEncoder(p.cfg.FrameSize, func(frame []int16) {
		data := pcm.AppendInt16LE(make([]byte, 0, len(frame)*2), frame)
		select {
		case p.frames <- data:
		case <-p.stop:
		}
	})

	buf := make([]float32, p.cfg.BlockSize)
	for !p.stopped() {
		n, err := p.src.Read(buf)
		if n > 0 {
			if p.cfg.Tap != nil {
				p.cfg.Tap(buf[:n])
			}
			out, rerr := p.rs.Process(buf[:n])
			if rerr != nil {
				err = rerr
			} else {
				enc.Write(out)
			}
		}
		if err != nil {
			if p.stopped() {
				return
			}
			slog.Error("capture: pipeline stopped", "error", err)
			if p.cfg.OnError != nil {
				p.cfg.OnError(fmt.Errorf("capture: read: %w", err))
			}
			return
		}
	}
}
