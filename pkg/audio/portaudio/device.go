package portaudio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jagtap-suraj/sensai/pkg/audio/pcm"
	"github.com/jagtap-suraj/sensai/pkg/capture"
	"github.com/jagtap-suraj/sensai/pkg/interview"
	"github.com/jagtap-suraj/sensai/pkg/playback"
)

// DefaultBufferDuration is the device buffer length used when none is set.
const DefaultBufferDuration = 20 * time.Millisecond

// Input is a mono float32 capture stream. It implements capture.Source.
type Input struct {
	s    *stream
	rate int
	once sync.Once
}

// OpenInput opens device (negative for the default input) at sampleRate,
// or at the device default rate when sampleRate is zero.
func OpenInput(device, sampleRate int, buffer time.Duration) (*Input, error) {
	dev, err := lookup(device, true)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		sampleRate = int(dev.DefaultSampleRate)
	}
	if buffer <= 0 {
		buffer = DefaultBufferDuration
	}
	frames := max(int(time.Duration(sampleRate)*buffer/time.Second), 1)
	s, err := openStream(dev, true, float64(sampleRate), frames)
	if err != nil {
		return nil, fmt.Errorf("portaudio: open input %q: %w", dev.Name, err)
	}
	slog.Debug("portaudio: input opened", "device", dev.Name, "rate", sampleRate, "frames", frames)
	return &Input{s: s, rate: sampleRate}, nil
}

// Read blocks for up to one device buffer. It returns io.EOF once closed.
func (in *Input) Read(buf []float32) (int, error) {
	n, err := in.s.read(buf)
	if err == ErrClosed {
		return 0, io.EOF
	}
	return n, err
}

func (in *Input) SampleRate() int { return in.rate }

func (in *Input) Close() error {
	var err error
	in.once.Do(func() { err = in.s.close() })
	return err
}

// Output is a mono float32 playback stream. It implements playback.Output.
type Output struct {
	s    *stream
	rate int
	once sync.Once
}

// OpenOutput opens device (negative for the default output) at sampleRate.
func OpenOutput(device, sampleRate int, buffer time.Duration) (*Output, error) {
	dev, err := lookup(device, false)
	if err != nil {
		return nil, err
	}
	if buffer <= 0 {
		buffer = DefaultBufferDuration
	}
	frames := max(int(time.Duration(sampleRate)*buffer/time.Second), 1)
	s, err := openStream(dev, false, float64(sampleRate), frames)
	if err != nil {
		return nil, fmt.Errorf("portaudio: open output %q: %w", dev.Name, err)
	}
	slog.Debug("portaudio: output opened", "device", dev.Name, "rate", sampleRate, "frames", frames)
	return &Output{s: s, rate: sampleRate}, nil
}

// Play writes samples one buffer at a time and then waits for the device
// latency to drain, so it returns once the audio has actually been heard.
// Cancelling ctx drops whatever is still queued.
func (o *Output) Play(ctx context.Context, samples []float32) error {
	for len(samples) > 0 {
		if ctx.Err() != nil {
			o.s.abort()
			return ctx.Err()
		}
		n, err := o.s.write(samples)
		if err != nil {
			return err
		}
		samples = samples[n:]
	}
	t := time.NewTimer(o.s.latency())
	defer t.Stop()
	select {
	case <-ctx.Done():
		o.s.abort()
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (o *Output) SampleRate() int { return o.rate }

func (o *Output) Close() error {
	var err error
	o.once.Do(func() { err = o.s.close() })
	return err
}

// Microphone acquires an input device on demand. It implements
// interview.Microphone; a device that cannot be opened is reported as a
// denial.
type Microphone struct {
	Device     int           // negative selects the default input
	SampleRate int           // zero uses the device default
	Buffer     time.Duration // zero uses DefaultBufferDuration
}

// Acquire opens the input device.
func (m Microphone) Acquire(ctx context.Context) (capture.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in, err := OpenInput(m.Device, m.SampleRate, m.Buffer)
	if err != nil {
		return nil, err
	}
	return in, nil
}

// Speaker returns a playback.Opener for device (negative for the default
// output).
func Speaker(device int, buffer time.Duration) playback.Opener {
	return func(format pcm.Format) (playback.Output, error) {
		return OpenOutput(device, format.SampleRate(), buffer)
	}
}

var (
	_ capture.Source       = (*Input)(nil)
	_ playback.Output      = (*Output)(nil)
	_ interview.Microphone = Microphone{}
)
