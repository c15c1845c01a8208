package pcm

import (
	"fmt"
	"time"
)

// Format is a mono 16-bit little-endian PCM format at a fixed sample rate.
type Format int

const (
	L16Mono16K Format = iota // capture input for both transports
	L16Mono24K               // model speech output
	L16Mono48K               // typical device rate
)

// bytesPerSample is fixed by the 16-bit mono layout.
const bytesPerSample = 2

var rates = [...]int{
	L16Mono16K: 16000,
	L16Mono24K: 24000,
	L16Mono48K: 48000,
}

// FormatForRate returns the format with the given sample rate.
func FormatForRate(rate int) (Format, error) {
	for f, r := range rates {
		if r == rate {
			return Format(f), nil
		}
	}
	return 0, fmt.Errorf("pcm: unsupported sample rate %d", rate)
}

// SampleRate returns the sample rate in Hz. It panics on an unknown format.
func (f Format) SampleRate() int {
	if f < 0 || int(f) >= len(rates) {
		panic(fmt.Sprintf("pcm: invalid format %d", int(f)))
	}
	return rates[f]
}

// BytesInDuration returns the size of d worth of audio.
func (f Format) BytesInDuration(d time.Duration) int64 {
	return int64(time.Duration(f.SampleRate())*d/time.Second) * bytesPerSample
}

// Duration returns how long n bytes of audio play for.
func (f Format) Duration(n int64) time.Duration {
	return time.Duration(n/bytesPerSample) * time.Second / time.Duration(f.SampleRate())
}

// MIMEType returns the mime hint sent alongside realtime audio,
// e.g. "audio/pcm;rate=16000".
func (f Format) MIMEType() string {
	return fmt.Sprintf("audio/pcm;rate=%d", f.SampleRate())
}

func (f Format) String() string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=1", f.SampleRate())
}
