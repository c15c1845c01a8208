// Package playback plays synthesized speech buffers strictly in arrival
// order, one at a time.
//
// A Scheduler owns a FIFO of raw PCM16 buffers. A buffer is dequeued only
// when nothing is playing, and the return of Output.Play (its completion)
// dequeues the next one. The output device is opened lazily and reopened
// after it reports ErrOutputClosed; when it cannot be opened the buffer is
// dropped so the queue never stalls on a dead device.
package playback
