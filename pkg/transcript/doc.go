// Package transcript assembles streamed transcription fragments into
// ordered speaker turns.
//
// User speech arrives as many small fragments; the Assembler accumulates
// them and commits one entry after a quiet period (the debounce window).
// Agent text flushes any pending user text first so turns never interleave
// out of order. Committed entries are never modified.
package transcript
