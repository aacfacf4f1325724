// Package supervisor runs the fixed set of task machines registered at
// startup, each on its own goroutine, and tracks their lifecycle.
//
// Tasks are registered before Start and never added or removed afterwards.
// There is no restart: a task that fails stays in the error state. StopAll
// cancels the shared context; a task parked in a guard acquire does not
// observe cancellation and is reported after the stop timeout.
package supervisor
