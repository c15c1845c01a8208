package capture

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jagtap-suraj/sensai/pkg/audio/pcm"
)

// fakeSource serves data in blocks and then idles, or fails with err.
type fakeSource struct {
	mu   sync.Mutex
	rate int
	data []float32
	pos  int
	err  error
}

func (s *fakeSource) Read(buf []float32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.data) {
		if s.err != nil {
			return 0, s.err
		}
		s.mu.Unlock()
		time.Sleep(time.Millisecond)
		s.mu.Lock()
		return 0, nil
	}
	n := copy(buf, s.data[s.pos:])
	s.pos += n
	return n, nil
}

func (s *fakeSource) SampleRate() int { return s.rate }
func (s *fakeSource) Close() error    { return nil }

func collect(t *testing.T, p *Pipeline, want int) [][]byte {
	t.Helper()
	var frames [][]byte
	timeout := time.After(5 * time.Second)
	for len(frames) < want {
		select {
		case f, ok := <-p.Frames():
			if !ok {
				return frames
			}
			frames = append(frames, f)
		case <-timeout:
			t.Fatalf("timed out after %d of %d frames", len(frames), want)
		}
	}
	return frames
}

func TestPipelineFrames(t *testing.T) {
	src := &fakeSource{rate: 16000, data: make([]float32, 2048*3+500)}
	for i := range src.data {
		src.data[i] = 0.25
	}
	var tapped int
	var tapMu sync.Mutex
	p, err := New(src, Config{
		Format: pcm.L16Mono16K,
		Tap: func(s []float32) {
			tapMu.Lock()
			tapped += len(s)
			tapMu.Unlock()
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	frames := collect(t, p, 3)
	deadline := time.Now().Add(5 * time.Second)
	for {
		src.mu.Lock()
		drained := src.pos == len(src.data)
		src.mu.Unlock()
		if drained || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	p.Stop()

	for i, f := range frames {
		if len(f) != 2048*2 {
			t.Errorf("frame %d is %d bytes, want %d", i, len(f), 2048*2)
		}
		if got := pcm.Int16LE(f[:2])[0]; got != pcm.FloatToInt16(0.25) {
			t.Errorf("frame %d first sample = %d", i, got)
		}
	}
	// The trailing 500 samples never form a frame.
	if _, ok := <-p.Frames(); ok {
		t.Error("expected frames channel closed after Stop")
	}
	tapMu.Lock()
	defer tapMu.Unlock()
	if tapped != len(src.data) {
		t.Errorf("tap saw %d samples, want %d", tapped, len(src.data))
	}
}

func TestPipelineNotRestartable(t *testing.T) {
	p, err := New(&fakeSource{rate: 16000}, Config{Format: pcm.L16Mono16K})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	if err := p.Start(); !errors.Is(err, ErrStarted) {
		t.Errorf("second Start = %v, want ErrStarted", err)
	}
	p.Stop()
	p.Stop()
}

func TestPipelineStopBeforeStart(t *testing.T) {
	p, err := New(&fakeSource{rate: 16000}, Config{Format: pcm.L16Mono16K})
	if err != nil {
		t.Fatal(err)
	}
	p.Stop()
	if err := p.Start(); !errors.Is(err, ErrStarted) {
		t.Errorf("Start after Stop = %v, want ErrStarted", err)
	}
	if _, ok := <-p.Frames(); ok {
		t.Error("expected closed frames channel")
	}
}

func TestPipelineReadError(t *testing.T) {
	boom := errors.New("device unplugged")
	errCh := make(chan error, 1)
	p, err := New(&fakeSource{rate: 16000, err: boom}, Config{
		Format:  pcm.L16Mono16K,
		OnError: func(err error) { errCh <- err },
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-errCh:
		if !errors.Is(err, boom) {
			t.Errorf("OnError got %v, want %v", err, boom)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnError not called")
	}
	p.Stop()
}

func TestPipelineResamples(t *testing.T) {
	src := &fakeSource{rate: 48000, data: make([]float32, 48000)}
	p, err := New(src, Config{Format: pcm.L16Mono16K})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	// One second at 48 kHz becomes about 16000 samples: at least six frames.
	frames := collect(t, p, 6)
	p.Stop()
	for i, f := range frames {
		if len(f) != 2048*2 {
			t.Errorf("frame %d is %d bytes", i, len(f))
		}
	}
}
