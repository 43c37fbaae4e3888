package verne

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of an Orchestrator.
type State string

const (
	StateIdle             State = "Idle"
	StateParsed           State = "Parsed"
	StateConnectionOpen   State = "ConnectionOpen"
	StateConnectionClosed State = "ConnectionClosed"
)

// ErrInvalidTransition is returned when an operation is attempted from a
// state that does not allow it.
var ErrInvalidTransition = errors.New("invalid state transition")

// allowedTransitions lists, for each target state, the states it may be
// entered from.
var allowedTransitions = map[State][]State{
	// Parse is idempotent, so Parsed may be re-entered.
	StateParsed:           {StateIdle, StateParsed},
	StateConnectionOpen:   {StateParsed},
	StateConnectionClosed: {StateConnectionOpen},
	StateIdle:             {StateParsed, StateConnectionClosed, StateIdle},
}

// canTransition reports whether from → to is a legal move.
func canTransition(from, to State) bool {
	for _, s := range allowedTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

// transition moves the orchestrator to the target state.
func (o *Orchestrator) transition(to State) error {
	if !canTransition(o.state, to) {
		return fmt.Errorf("%w: cannot move to %s from %s", ErrInvalidTransition, to, o.state)
	}

	o.log.WithField("from", o.state).WithField("to", to).Debug("State transition")
	o.state = to
	return nil
}
