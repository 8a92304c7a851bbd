// Package voice manages duplex audio sessions with the live model. Each
// session is a small state machine; closing it always stops and releases
// whatever playback audio is still buffered.
package voice

import (
	"errors"
	"fmt"
)

type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateActive     State = "active"
	StateError      State = "error"
)

var (
	ErrInvalidTransition = errors.New("invalid voice state transition")
	ErrNotActive         = errors.New("voice session not active")
	ErrSessionNotFound   = errors.New("voice session not found")
)

// transitions lists the legal moves. Any state may fail into error.
var transitions = map[State][]State{
	StateIdle:       {StateConnecting},
	StateConnecting: {StateActive, StateIdle},
	StateActive:     {StateIdle},
	StateError:      {StateIdle},
}

func canTransition(from, to State) bool {
	if to == StateError {
		return from != StateError
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to State) error {
	if !canTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
