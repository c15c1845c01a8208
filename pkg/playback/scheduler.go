package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jagtap-suraj/sensai/pkg/audio/pcm"
)

// ErrOutputClosed is returned by an Output whose device went away. The
// scheduler discards it and opens a new one for the next buffer.
var ErrOutputClosed = errors.New("playback: output closed")

// Output renders float samples on an audio device.
type Output interface {
	// Play renders samples and returns once they have finished playing or
	// ctx is done.
	Play(ctx context.Context, samples []float32) error

	// Close releases the device.
	Close() error
}

// Opener opens an Output at the given format.
type Opener func(format pcm.Format) (Output, error)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithFormat sets the PCM format of enqueued buffers (default 24 kHz mono).
func WithFormat(f pcm.Format) Option {
	return func(s *Scheduler) { s.format = f }
}

// WithErrorHandler sets a hook receiving non-fatal playback errors.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) { s.onError = fn }
}

// Scheduler plays queued buffers in FIFO order with no overlap.
type Scheduler struct {
	open    Opener
	format  pcm.Format
	onError func(error)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	queue   [][]byte
	playing bool
	stopped bool
	out     Output
	idle    *sync.Cond
}

// New creates a Scheduler that opens its output through open.
func New(open Opener, opts ...Option) *Scheduler {
	s := &Scheduler{
		open:   open,
		format: pcm.L16Mono24K,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Enqueue appends a PCM16 buffer to the queue and starts playback if idle.
// Buffers enqueued after Stop are dropped.
func (s *Scheduler) Enqueue(buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.queue = append(s.queue, buf)
	s.processQueueLocked()
}

// Len returns the number of buffers waiting, excluding the one playing.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Playing reports whether a buffer is currently playing.
func (s *Scheduler) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Clear drops every queued buffer. The buffer currently playing finishes.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
	s.idle.Broadcast()
}

// Wait blocks until the queue is empty and nothing is playing, or the
// scheduler is stopped.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.stopped && (s.playing || len(s.queue) > 0) {
		s.idle.Wait()
	}
}

// Stop clears the queue, interrupts the current buffer and releases the
// output. It is idempotent.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.queue = nil
	out := s.out
	s.out = nil
	s.idle.Broadcast()
	s.mu.Unlock()

	s.cancel()
	if out != nil {
		return out.Close()
	}
	return nil
}

// processQueueLocked starts the next buffer when nothing is playing.
func (s *Scheduler) processQueueLocked() {
	if s.playing || s.stopped || len(s.queue) == 0 {
		if !s.playing && len(s.queue) == 0 {
			s.idle.Broadcast()
		}
		return
	}
	buf := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	s.playing = true
	go s.play(buf)
}

func (s *Scheduler) play(buf []byte) {
	defer func() {
		s.mu.Lock()
		s.playing = false
		s.processQueueLocked()
		s.mu.Unlock()
	}()

	samples := pcm.DecodeFloat(buf)
	if len(samples) == 0 {
		return
	}

	out, err := s.output()
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		s.report(fmt.Errorf("playback: open output: %w", err))
		return
	}

	if err := out.Play(s.ctx, samples); err != nil {
		if s.ctx.Err() != nil {
			return
		}
		if errors.Is(err, ErrOutputClosed) {
			s.discard(out)
		}
		s.report(fmt.Errorf("playback: play %d samples: %w", len(samples), err))
	}
}

// output returns the current Output, opening a new one when needed.
func (s *Scheduler) output() (Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrOutputClosed
	}
	if s.out != nil {
		return s.out, nil
	}
	out, err := s.open(s.format)
	if err != nil {
		return nil, err
	}
	s.out = out
	return out, nil
}

func (s *Scheduler) discard(out Output) {
	s.mu.Lock()
	if s.out == out {
		s.out = nil
	}
	s.mu.Unlock()
	if err := out.Close(); err != nil {
		slog.Debug("playback: close dead output", "error", err)
	}
}

func (s *Scheduler) report(err error) {
	slog.Warn("playback: buffer skipped", "error", err)
	if s.onError != nil {
		s.onError(err)
	}
}
