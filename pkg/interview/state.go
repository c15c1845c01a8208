package interview

import "encoding/json"

// State is the lifecycle state of an interview session.
type State int

const (
	StateInitializing State = iota
	StateMicPermissionPending
	StateMicPermissionGranted
	StateErrorMicPermission
	StateReadyToStart
	StateConnecting
	StateLiveConnected
	StateActiveListening
	StateErrorLiveAPI
	StateLiveDisconnected
	StateErrorAudioRecording
	StateFinalizing
	StateCompleted
	StateErrorFinalizing
	StateError
)

var stateNames = [...]string{
	StateInitializing:         "INITIALIZING",
	StateMicPermissionPending: "MIC_PERMISSION_PENDING",
	StateMicPermissionGranted: "MIC_PERMISSION_GRANTED",
	StateErrorMicPermission:   "ERROR_MIC_PERMISSION",
	StateReadyToStart:         "READY_TO_START",
	StateConnecting:           "CONNECTING",
	StateLiveConnected:        "LIVE_CONNECTED",
	StateActiveListening:      "ACTIVE_LISTENING",
	StateErrorLiveAPI:         "ERROR_LIVE_API",
	StateLiveDisconnected:     "LIVE_DISCONNECTED",
	StateErrorAudioRecording:  "ERROR_AUDIO_RECORDING",
	StateFinalizing:           "FINALIZING",
	StateCompleted:            "COMPLETED",
	StateErrorFinalizing:      "ERROR_FINALIZING",
	StateError:                "ERROR",
}

// String returns the upper snake case name of the state.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}

// IsLive reports whether the microphone is streaming to the model.
func (s State) IsLive() bool {
	return s == StateLiveConnected || s == StateActiveListening
}

// IsTerminal reports whether no further transition can happen.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateErrorFinalizing, StateError:
		return true
	}
	return false
}

// IsError reports whether the state represents a failure.
func (s State) IsError() bool {
	switch s {
	case StateErrorMicPermission, StateErrorLiveAPI, StateErrorAudioRecording,
		StateErrorFinalizing, StateError:
		return true
	}
	return false
}

// ParseState returns the state named name, or false.
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return 0, false
}

// MarshalJSON implements json.Marshaler.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler. Unknown names decode to
// StateInitializing.
func (s *State) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	*s, _ = ParseState(name)
	return nil
}
