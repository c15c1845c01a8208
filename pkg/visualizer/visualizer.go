// Package visualizer renders live microphone energy as a row of bars.
//
// A Visualizer is fed raw samples between Start and Stop; samples written
// while it is stopped are dropped. It never blocks the writer for longer
// than a ring-buffer copy.
package visualizer

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/jagtap-suraj/sensai/pkg/audio/spectrum"
	"github.com/jagtap-suraj/sensai/pkg/interview"
)

var glyphs = []rune(" ▁▂▃▄▅▆▇█")

// Visualizer implements interview.Monitor.
type Visualizer struct {
	analyzer *spectrum.Analyzer
	style    lipgloss.Style

	mu      sync.Mutex
	running bool
	bins    []uint8
}

// Option configures a Visualizer.
type Option func(*Visualizer)

// WithStyle sets the style used to render bars.
func WithStyle(s lipgloss.Style) Option {
	return func(v *Visualizer) { v.style = s }
}

// New creates a Visualizer using the default spectrum analysis.
func New(opts ...Option) *Visualizer {
	a, err := spectrum.New(spectrum.DefaultConfig())
	if err != nil {
		panic(err)
	}
	v := &Visualizer{
		analyzer: a,
		style:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff9f")),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Start begins accepting samples. Calling Start on a running Visualizer
// is a no-op.
func (v *Visualizer) Start() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.running = true
}

// Stop drops buffered samples and rejects later writes until Start.
func (v *Visualizer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.running {
		return
	}
	v.running = false
	v.analyzer.Reset()
}

// Running reports whether the visualizer accepts samples.
func (v *Visualizer) Running() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

// Write feeds mono samples in [-1, 1].
func (v *Visualizer) Write(samples []float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.running {
		return
	}
	v.analyzer.Write(samples)
}

// Bars samples the spectrum and folds it into n levels in 0..255, averaging
// adjacent bins. A stopped visualizer returns all zeros.
func (v *Visualizer) Bars(n int) []uint8 {
	if n <= 0 {
		return nil
	}
	out := make([]uint8, n)
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.running {
		return out
	}
	v.bins = v.analyzer.ByteFrequencyData(v.bins)
	total := len(v.bins)
	for i := range n {
		lo := i * total / n
		hi := max((i+1)*total/n, lo+1)
		sum := 0
		for _, b := range v.bins[lo:min(hi, total)] {
			sum += int(b)
		}
		out[i] = uint8(sum / (min(hi, total) - lo))
	}
	return out
}

// Render draws width bars, height rows tall, styled with the configured
// style. Rows are separated by newlines, top row first.
func (v *Visualizer) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	return v.style.Render(Draw(v.Bars(width), height))
}

// Draw lays levels out as unstyled block glyph columns.
func Draw(levels []uint8, height int) string {
	steps := len(glyphs) - 1
	rows := make([]string, height)
	for r := range height {
		var sb strings.Builder
		floor := (height - 1 - r) * steps
		for _, lv := range levels {
			units := int(lv) * height * steps / 255
			fill := min(max(units-floor, 0), steps)
			sb.WriteRune(glyphs[fill])
		}
		rows[r] = sb.String()
	}
	return strings.Join(rows, "\n")
}

var _ interview.Monitor = (*Visualizer)(nil)
