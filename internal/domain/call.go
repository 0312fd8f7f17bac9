package domain

import "errors"

// CallID identifies a single two-party call session for its whole
// lifetime (ringing through hangup). Every signaling event after
// initiate is routed by it, never by "whoever is in a call".
type CallID string

type CallType string

const (
	CallAudio CallType = "audio"
	CallVideo CallType = "video"
)

var ErrBadCallType = errors.New("unknown call type")

func (t CallType) Validate() error {
	switch t {
	case CallAudio, CallVideo:
		return nil
	}
	return ErrBadCallType
}

// CallState is the per-user signaling state. Terminal state is always
// StateIdle; there is no error state, any failure path resets to idle.
type CallState string

const (
	StateIdle       CallState = "idle"
	StateRingingOut CallState = "ringing_out"
	StateRingingIn  CallState = "ringing_in"
	StateInCall     CallState = "in_call"
)
