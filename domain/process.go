package domain

import "time"

// State of the single logical session.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Reconnecting:
		return "Reconnecting"
	default:
		return "Unknown"
	}
}

// Status is the only signal surfaced to the user about the session.
type Status struct {
	State    State
	Attempt  int
	Identity *Identity
	Delay    time.Duration // pending reconnect delay, zero unless Reconnecting
}

// Text is the persistent status string shown to the user.
// Reconnecting is reported as Connecting: a retry is in progress.
func (s Status) Text() string {
	switch s.State {
	case Connected:
		return "Connected"
	case Connecting, Reconnecting:
		return "Connecting"
	default:
		return "Disconnected"
	}
}
