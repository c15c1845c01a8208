package pcm

import (
	"encoding/binary"
	"math"
)

// FloatToInt16 converts a float sample to PCM16. The sample is clamped to
// [-1, 1]; negative values scale by 0x8000 and non-negative values by 0x7FFF.
func FloatToInt16(s float32) int16 {
	v := float64(s)
	switch {
	case v != v: // NaN
		return 0
	case v < -1:
		v = -1
	case v > 1:
		v = 1
	}
	if v < 0 {
		return int16(math.Round(v * 0x8000))
	}
	return int16(math.Round(v * 0x7FFF))
}

// Int16ToFloat is the inverse of FloatToInt16.
func Int16ToFloat(v int16) float32 {
	if v < 0 {
		return float32(v) / 0x8000
	}
	return float32(v) / 0x7FFF
}

// DecodeFloat decodes little-endian PCM16 into float samples by dividing
// each sample by 32768. A trailing odd byte is ignored.
func DecodeFloat(data []byte) []float32 {
	out := make([]float32, len(data)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(data[i*2:]))) / 32768
	}
	return out
}

// AppendInt16LE appends samples to dst as little-endian PCM16.
func AppendInt16LE(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(s))
	}
	return dst
}

// Int16LE decodes little-endian PCM16 bytes into samples.
func Int16LE(data []byte) []int16 {
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}
