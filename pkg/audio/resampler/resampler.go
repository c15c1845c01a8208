package resampler

import (
	"errors"
	"fmt"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resampler converts a stream of mono float samples from one rate to another.
// When both rates are equal it is a passthrough.
type Resampler struct {
	srcRate int
	dstRate int

	mu     sync.Mutex
	r      resampling.Resampler
	in     []float64
	out    []float32
	closed bool
}

// New creates a Resampler from srcRate to dstRate (Hz).
func New(srcRate, dstRate int) (*Resampler, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("resampler: invalid rates %d -> %d", srcRate, dstRate)
	}
	rs := &Resampler{srcRate: srcRate, dstRate: dstRate}
	if srcRate == dstRate {
		return rs, nil
	}
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("resampler: create %d -> %d: %w", srcRate, dstRate, err)
	}
	rs.r = r
	return rs, nil
}

// SourceRate returns the input sample rate.
func (r *Resampler) SourceRate() int { return r.srcRate }

// TargetRate returns the output sample rate.
func (r *Resampler) TargetRate() int { return r.dstRate }

// Passthrough reports whether no conversion is performed.
func (r *Resampler) Passthrough() bool { return r.srcRate == r.dstRate }

// Process converts one block of samples. The returned slice is reused by the
// next call; callers that retain it must copy.
func (r *Resampler) Process(samples []float32) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errClosed
	}
	if r.r == nil {
		r.out = append(r.out[:0], samples...)
		return r.out, nil
	}

	r.in = r.in[:0]
	for _, s := range samples {
		r.in = append(r.in, float64(s))
	}
	output, err := r.r.Process(r.in)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}

	r.out = r.out[:0]
	for _, s := range output {
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		r.out = append(r.out, float32(s))
	}
	return r.out, nil
}

// Close releases the filter state. Process fails after Close.
func (r *Resampler) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.r = nil
	r.closed = true
	return nil
}

var errClosed = errors.New("resampler: closed")
