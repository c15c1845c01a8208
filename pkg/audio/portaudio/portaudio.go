// Package portaudio binds the PortAudio C library for mono float32 audio
// input and output.
//
// Building requires PortAudio discoverable through pkg-config
// (brew install portaudio, apt install portaudio19-dev).
package portaudio

/*
#cgo pkg-config: portaudio-2.0

#include <portaudio.h>
#include <stdlib.h>
#include <string.h>

// PaStream is opaque; pass it around as void* to keep cgo happy.
static PaError pa_open_stream(void **stream,
                              const PaStreamParameters *inputParams,
                              const PaStreamParameters *outputParams,
                              double sampleRate,
                              unsigned long framesPerBuffer) {
    return Pa_OpenStream((PaStream**)stream, inputParams, outputParams, sampleRate,
                         framesPerBuffer, paClipOff, NULL, NULL);
}

static PaError pa_start_stream(void *stream) {
    return Pa_StartStream((PaStream*)stream);
}

static PaError pa_stop_stream(void *stream) {
    return Pa_StopStream((PaStream*)stream);
}

static PaError pa_abort_stream(void *stream) {
    return Pa_AbortStream((PaStream*)stream);
}

static PaError pa_close_stream(void *stream) {
    return Pa_CloseStream((PaStream*)stream);
}

static PaError pa_read_stream(void *stream, void *buffer, unsigned long frames) {
    return Pa_ReadStream((PaStream*)stream, buffer, frames);
}

static PaError pa_write_stream(void *stream, const void *buffer, unsigned long frames) {
    return Pa_WriteStream((PaStream*)stream, buffer, frames);
}

static double pa_output_latency(void *stream) {
    const PaStreamInfo *info = Pa_GetStreamInfo((PaStream*)stream);
    return info ? info->outputLatency : 0;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"time"
	"unsafe"
)

var (
	initOnce sync.Once
	initErr  error
)

// ErrNoDevice is returned when no matching device exists.
var ErrNoDevice = errors.New("portaudio: no such device")

// ErrClosed is returned by operations on a closed stream.
var ErrClosed = errors.New("portaudio: stream closed")

// paInputOverflowed is reported when the caller reads slower than the
// device fills its buffer. Samples are lost but the stream is healthy.
const paInputOverflowed = C.paInputOverflowed

func paError(code C.PaError) error {
	if code == C.paNoError {
		return nil
	}
	return fmt.Errorf("portaudio: %s", C.GoString(C.Pa_GetErrorText(code)))
}

// Initialize initializes the library. It is safe to call more than once.
func Initialize() error {
	initOnce.Do(func() {
		initErr = paError(C.Pa_Initialize())
	})
	return initErr
}

// Terminate releases the library.
func Terminate() error {
	return paError(C.Pa_Terminate())
}

// DeviceInfo describes an audio device.
type DeviceInfo struct {
	Index             int     `json:"index"               yaml:"index"`
	Name              string  `json:"name"                yaml:"name"`
	MaxInputChannels  int     `json:"max_input_channels"  yaml:"max_input_channels"`
	MaxOutputChannels int     `json:"max_output_channels" yaml:"max_output_channels"`
	DefaultSampleRate float64 `json:"default_sample_rate" yaml:"default_sample_rate"`
	IsDefaultInput    bool    `json:"default_input"       yaml:"default_input"`
	IsDefaultOutput   bool    `json:"default_output"      yaml:"default_output"`

	lowInputLatency  float64
	lowOutputLatency float64
}

// Devices lists the available audio devices.
func Devices() ([]DeviceInfo, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	count := int(C.Pa_GetDeviceCount())
	if count < 0 {
		return nil, paError(C.PaError(count))
	}
	devices := make([]DeviceInfo, 0, count)
	for i := range count {
		if d, ok := deviceInfo(C.PaDeviceIndex(i)); ok {
			devices = append(devices, d)
		}
	}
	return devices, nil
}

func deviceInfo(idx C.PaDeviceIndex) (DeviceInfo, bool) {
	info := C.Pa_GetDeviceInfo(idx)
	if info == nil {
		return DeviceInfo{}, false
	}
	return DeviceInfo{
		Index:             int(idx),
		Name:              C.GoString(info.name),
		MaxInputChannels:  int(info.maxInputChannels),
		MaxOutputChannels: int(info.maxOutputChannels),
		DefaultSampleRate: float64(info.defaultSampleRate),
		IsDefaultInput:    idx == C.Pa_GetDefaultInputDevice(),
		IsDefaultOutput:   idx == C.Pa_GetDefaultOutputDevice(),
		lowInputLatency:   float64(info.defaultLowInputLatency),
		lowOutputLatency:  float64(info.defaultLowOutputLatency),
	}, true
}

// lookup resolves a device index; a negative index selects the default
// input or output device.
func lookup(index int, input bool) (DeviceInfo, error) {
	if err := Initialize(); err != nil {
		return DeviceInfo{}, err
	}
	idx := C.PaDeviceIndex(index)
	if index < 0 {
		if input {
			idx = C.Pa_GetDefaultInputDevice()
		} else {
			idx = C.Pa_GetDefaultOutputDevice()
		}
	}
	if idx == C.paNoDevice || int(idx) >= int(C.Pa_GetDeviceCount()) {
		return DeviceInfo{}, ErrNoDevice
	}
	d, ok := deviceInfo(idx)
	if !ok {
		return DeviceInfo{}, ErrNoDevice
	}
	if input && d.MaxInputChannels < 1 {
		return DeviceInfo{}, fmt.Errorf("portaudio: %q has no input channels", d.Name)
	}
	if !input && d.MaxOutputChannels < 1 {
		return DeviceInfo{}, fmt.Errorf("portaudio: %q has no output channels", d.Name)
	}
	return d, nil
}

// stream is a blocking mono float32 PortAudio stream.
type stream struct {
	mu     sync.Mutex
	ptr    unsafe.Pointer
	buf    unsafe.Pointer
	frames int
	closed bool
}

func openStream(dev DeviceInfo, input bool, sampleRate float64, frames int) (*stream, error) {
	params := &C.PaStreamParameters{
		device:       C.PaDeviceIndex(dev.Index),
		channelCount: 1,
		sampleFormat: C.paFloat32,
	}
	var in, out *C.PaStreamParameters
	if input {
		params.suggestedLatency = C.PaTime(dev.lowInputLatency)
		in = params
	} else {
		params.suggestedLatency = C.PaTime(dev.lowOutputLatency)
		out = params
	}

	var ptr unsafe.Pointer
	if err := paError(C.pa_open_stream(&ptr, in, out, C.double(sampleRate), C.ulong(frames))); err != nil {
		return nil, err
	}
	if err := paError(C.pa_start_stream(ptr)); err != nil {
		C.pa_close_stream(ptr)
		return nil, err
	}
	return &stream{
		ptr:    ptr,
		buf:    C.malloc(C.size_t(frames * 4)),
		frames: frames,
	}, nil
}

// read fills dst with up to one buffer of samples.
func (s *stream) read(dst []float32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	n := min(len(dst), s.frames)
	if n == 0 {
		return 0, nil
	}
	code := C.pa_read_stream(s.ptr, s.buf, C.ulong(n))
	if code != C.paNoError && code != paInputOverflowed {
		return 0, paError(code)
	}
	C.memcpy(unsafe.Pointer(&dst[0]), s.buf, C.size_t(n*4))
	return n, nil
}

// write blocks until one buffer of src is queued on the device and
// returns the number of samples written.
func (s *stream) write(src []float32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	n := min(len(src), s.frames)
	if n == 0 {
		return 0, nil
	}
	C.memcpy(s.buf, unsafe.Pointer(&src[0]), C.size_t(n*4))
	if err := paError(C.pa_write_stream(s.ptr, s.buf, C.ulong(n))); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *stream) latency() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	return time.Duration(float64(C.pa_output_latency(s.ptr)) * float64(time.Second))
}

// abort drops queued audio immediately.
func (s *stream) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		C.pa_abort_stream(s.ptr)
		C.pa_start_stream(s.ptr)
	}
}

func (s *stream) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	C.pa_stop_stream(s.ptr)
	err := paError(C.pa_close_stream(s.ptr))
	C.free(s.buf)
	return err
}
