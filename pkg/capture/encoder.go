package capture

import "github.com/jagtap-suraj/sensai/pkg/audio/pcm"

// DefaultFrameSize is the number of samples in one emitted frame.
const DefaultFrameSize = 2048

// Encoder buffers float samples into fixed-size PCM16 frames.
// It is not safe for concurrent use.
type Encoder struct {
	size  int
	frame []int16
	emit  func(frame []int16)
}

// NewEncoder creates an Encoder emitting frames of size samples. Each
// emitted slice is owned by the callee.
func NewEncoder(size int, emit func(frame []int16)) *Encoder {
	if size <= 0 {
		size = DefaultFrameSize
	}
	return &Encoder{
		size:  size,
		frame: make([]int16, 0, size),
		emit:  emit,
	}
}

// Write converts samples and emits every frame that fills up. It returns the
// number of frames emitted.
func (e *Encoder) Write(samples []float32) int {
	emitted := 0
	for _, s := range samples {
		e.frame = append(e.frame, pcm.FloatToInt16(s))
		if len(e.frame) == e.size {
			full := e.frame
			e.frame = make([]int16, 0, e.size)
			e.emit(full)
			emitted++
		}
	}
	return emitted
}

// Buffered returns the number of samples waiting for the next frame.
func (e *Encoder) Buffered() int {
	return len(e.frame)
}

// FrameSize returns the frame capacity in samples.
func (e *Encoder) FrameSize() int {
	return e.size
}

// Reset drops any partially filled frame.
func (e *Encoder) Reset() {
	e.frame = e.frame[:0]
}
