// Package capture turns a live microphone stream into fixed-size PCM16
// frames for a realtime speech session.
//
// The Encoder clamps and scales float samples into 16-bit PCM and emits a
// frame only when it is full, so consumers never see partial frames. The
// Pipeline runs the encoder on its own goroutine together with the source
// reads and any sample-rate conversion; it hands frames to the session
// through a channel and never touches session state.
//
// Example usage:
//
//	p, err := capture.New(mic, capture.Config{Format: pcm.L16Mono16K})
//	if err != nil {
//	    return err
//	}
//	if err := p.Start(); err != nil {
//	    return err
//	}
//	for frame := range p.Frames() {
//	    session.SendAudio(frame, pcm.L16Mono16K.MIMEType())
//	}
package capture
