package supervisor

import (
	"time"

	"github.com/smazurov/ledsync/internal/events"
)

// PublishStateChanges returns a callback that publishes every transition as a
// TaskStateChangedEvent on bus.
func PublishStateChanges(bus *events.Bus) StateChangeCallback {
	return func(name string, oldState, newState State, err error) {
		ev := events.TaskStateChangedEvent{
			Task:      name,
			OldState:  string(oldState),
			NewState:  string(newState),
			Timestamp: time.Now(),
		}
		if err != nil {
			ev.Error = err.Error()
		}
		bus.Publish(ev)
	}
}
