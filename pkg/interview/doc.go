// Package interview drives one live voice interview from microphone
// permission to generated feedback.
//
// A Controller owns every per-interview resource: the transport session,
// the capture pipeline, the playback scheduler, the transcript assembler and
// the visualizer. All of them are created by the Controller and torn down by
// it exactly once. The Controller is the only component that moves the
// session State:
//
//	INITIALIZING → MIC_PERMISSION_PENDING → MIC_PERMISSION_GRANTED
//	  → READY_TO_START → CONNECTING → LIVE_CONNECTED → ACTIVE_LISTENING
//	  → FINALIZING → COMPLETED | ERROR_FINALIZING
//
// Errors move the session into ERROR_MIC_PERMISSION (retryable),
// ERROR_LIVE_API (restartable until a session has opened),
// LIVE_DISCONNECTED or ERROR_AUDIO_RECORDING (both finalize), or ERROR
// (setup missing, terminal).
//
// Finalization runs once no matter how many paths request it: an explicit
// End, an unexpected close, a stream error or a capture failure.
package interview
