package events

import "time"

// Event type constants for kelindar/event.
const (
	TypeLEDChanged uint32 = iota + 1
	TypeStateReset
	TypeHALError
	TypeTaskStateChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LEDChangedEvent is published by a task machine after each guarded mutation.
type LEDChangedEvent struct {
	Task      string    `json:"task" example:"red" doc:"Task machine name"`
	Channel   string    `json:"channel" example:"red" doc:"LED channel"`
	On        bool      `json:"on" example:"true" doc:"Channel level after the mutation"`
	Timestamp time.Time `json:"timestamp" doc:"Clock time of the mutation"`
}

// Type returns the event type identifier for LEDChangedEvent.
func (e LEDChangedEvent) Type() uint32 { return TypeLEDChanged }

// StateResetEvent is published when a task machine found its state outside
// the known set and reset it.
type StateResetEvent struct {
	Task      string    `json:"task"`
	Raw       int       `json:"raw"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for StateResetEvent.
func (e StateResetEvent) Type() uint32 { return TypeStateReset }

// HALErrorEvent is published when the LED hardware rejected a mutation.
type HALErrorEvent struct {
	Task      string    `json:"task"`
	Channel   string    `json:"channel"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for HALErrorEvent.
func (e HALErrorEvent) Type() uint32 { return TypeHALError }

// TaskStateChangedEvent is published by the supervisor on lifecycle changes.
type TaskStateChangedEvent struct {
	Task      string    `json:"task"`
	OldState  string    `json:"old_state"`
	NewState  string    `json:"new_state"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for TaskStateChangedEvent.
func (e TaskStateChangedEvent) Type() uint32 { return TypeTaskStateChanged }
