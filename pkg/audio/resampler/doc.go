// Package resampler converts mono float audio between sample rates.
//
// Microphones usually run at 44.1 kHz or 48 kHz while the realtime speech
// services expect 16 kHz or 24 kHz input. The Resampler is streaming: feed
// it device-sized blocks and it returns whatever output is ready, keeping
// filter state between calls. It uses a pure Go resampler (no CGO).
//
// Example usage:
//
//	r, err := resampler.New(48000, 16000)
//	if err != nil {
//	    return err
//	}
//	out, err := r.Process(block)
package resampler
