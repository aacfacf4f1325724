package metrics

import "github.com/smazurov/ledsync/internal/events"

// Subscribe wires bus events into the metrics and returns the unsubscribe
// function.
func Subscribe(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(e events.LEDChangedEvent) {
			RecordMutation(e.Channel, e.On)
		}),
		bus.Subscribe(func(e events.HALErrorEvent) {
			RecordHALError(e.Channel)
		}),
		bus.Subscribe(func(e events.StateResetEvent) {
			RecordStateReset(e.Task)
		}),
		bus.Subscribe(func(e events.TaskStateChangedEvent) {
			SetTaskState(e.Task, e.NewState)
		}),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
