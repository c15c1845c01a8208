// Package pcm describes the 16-bit linear PCM formats exchanged with the
// remote speech model and converts between float samples and PCM16.
//
// Key types and functions:
//   - Format: sample rate, channels and bit depth of a stream
//   - FloatToInt16 / Int16ToFloat: symmetric sample conversion
//   - DecodeFloat: playback-side conversion that divides by 32768
//   - AppendInt16LE / Int16LE: little-endian byte packing
//
// Example usage:
//
//	// Bytes needed for 100ms of capture audio
//	n := pcm.L16Mono16K.BytesInDuration(100 * time.Millisecond)
//
//	// Pack a frame for the wire
//	data := pcm.AppendInt16LE(nil, frame)
//	mime := pcm.L16Mono16K.MIMEType() // "audio/pcm;rate=16000"
package pcm
