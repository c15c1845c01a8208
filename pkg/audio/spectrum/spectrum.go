// Package spectrum turns a stream of mono float32 samples into smoothed,
// byte-scaled frequency magnitudes for level meters and bar displays.
//
// The analysis follows the usual browser analyser conventions: the most
// recent FFTSize samples are Blackman windowed, transformed, smoothed over
// time and mapped from a decibel range onto 0..255.
package spectrum

import (
	"fmt"
	"math"
	"sync"
)

// Config controls the analysis.
type Config struct {
	FFTSize   int     // power of two; yields FFTSize/2 bins
	MinDB     float64 // maps to 0
	MaxDB     float64 // maps to 255
	Smoothing float64 // time constant in [0, 1)
}

// DefaultConfig returns a 256-point analysis with a -100..-30 dB range and
// 0.8 smoothing.
func DefaultConfig() Config {
	return Config{
		FFTSize:   256,
		MinDB:     -100,
		MaxDB:     -30,
		Smoothing: 0.8,
	}
}

func (c Config) validate() error {
	if c.FFTSize < 2 || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("spectrum: fft size %d is not a power of two", c.FFTSize)
	}
	if c.MaxDB <= c.MinDB {
		return fmt.Errorf("spectrum: max dB %v must exceed min dB %v", c.MaxDB, c.MinDB)
	}
	if c.Smoothing < 0 || c.Smoothing >= 1 {
		return fmt.Errorf("spectrum: smoothing %v out of range [0, 1)", c.Smoothing)
	}
	return nil
}

// Analyzer keeps the latest FFTSize samples and computes their spectrum on
// demand. It is safe for concurrent use.
type Analyzer struct {
	cfg    Config
	window []float64

	mu     sync.Mutex
	ring   []float32
	pos    int
	smooth []float64
	re, im []float64
}

// New creates an Analyzer.
func New(cfg Config) (*Analyzer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	n := cfg.FFTSize
	return &Analyzer{
		cfg:    cfg,
		window: blackman(n),
		ring:   make([]float32, n),
		smooth: make([]float64, n/2),
		re:     make([]float64, n),
		im:     make([]float64, n),
	}, nil
}

// Bins returns the number of frequency bins.
func (a *Analyzer) Bins() int { return a.cfg.FFTSize / 2 }

// Write appends samples to the analysis window.
func (a *Analyzer) Write(samples []float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.ring)
	if len(samples) > n {
		samples = samples[len(samples)-n:]
	}
	for _, s := range samples {
		a.ring[a.pos] = s
		a.pos = (a.pos + 1) % n
	}
}

// Reset clears buffered samples and smoothing history.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.ring)
	clear(a.smooth)
	a.pos = 0
}

// ByteFrequencyData computes the spectrum of the current window into dst,
// which is grown to Bins() if needed, and returns it. Each call advances
// the smoothing state by one step.
func (a *Analyzer) ByteFrequencyData(dst []uint8) []uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.cfg.FFTSize
	for i := range n {
		a.re[i] = float64(a.ring[(a.pos+i)%n]) * a.window[i]
		a.im[i] = 0
	}
	fft(a.re, a.im)

	bins := n / 2
	if cap(dst) < bins {
		dst = make([]uint8, bins)
	}
	dst = dst[:bins]

	tau := a.cfg.Smoothing
	span := a.cfg.MaxDB - a.cfg.MinDB
	for k := range bins {
		mag := math.Hypot(a.re[k], a.im[k]) / float64(n)
		a.smooth[k] = tau*a.smooth[k] + (1-tau)*mag
		db := math.Inf(-1)
		if a.smooth[k] > 0 {
			db = 20 * math.Log10(a.smooth[k])
		}
		dst[k] = scale(255*(db-a.cfg.MinDB)/span)
	}
	return dst
}

func scale(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// blackman returns the classic Blackman window (alpha 0.16).
func blackman(n int) []float64 {
	const (
		a0 = 0.42
		a1 = 0.5
		a2 = 0.08
	)
	w := make([]float64, n)
	for i := range n {
		x := 2 * math.Pi * float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return w
}
