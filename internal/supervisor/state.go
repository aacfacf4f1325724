package supervisor

import "time"

// State represents the lifecycle state of a supervised task.
type State string

// Task states.
const (
	StateIdle     State = "idle"     // Registered, not started
	StateRunning  State = "running"  // Loop active
	StateStopping State = "stopping" // Cancellation requested
	StateStopped  State = "stopped"  // Exited on shutdown
	StateError    State = "error"    // Exited with an error
)

// Info describes one supervised task.
type Info struct {
	Name      string
	State     State
	StartedAt time.Time
	LastError error
}

// StateChangeCallback is called on every state transition.
type StateChangeCallback func(name string, oldState, newState State, err error)
