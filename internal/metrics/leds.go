// Package metrics provides Prometheus metrics for the LED task machines and
// the shared guard.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledsync",
		Subsystem: "led",
		Name:      "mutations_total",
		Help:      "Guarded LED channel mutations",
	}, []string{"channel", "level"})

	ledLevel = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ledsync",
		Subsystem: "led",
		Name:      "level",
		Help:      "Last written LED channel level (1 on, 0 off)",
	}, []string{"channel"})

	ledHALErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledsync",
		Subsystem: "led",
		Name:      "hal_errors_total",
		Help:      "LED mutations rejected by the hardware layer",
	}, []string{"channel"})

	taskStateResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledsync",
		Subsystem: "task",
		Name:      "state_resets_total",
		Help:      "Unrecognised task states reset to on",
	}, []string{"task"})

	taskState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ledsync",
		Subsystem: "task",
		Name:      "state",
		Help:      "Current supervisor state of a task (1 for the active state)",
	}, []string{"task", "state"})

	taskStatesMu sync.Mutex
	taskStates   = make(map[string]string)
)

// RecordMutation counts one LED mutation and updates the level gauge.
func RecordMutation(channel string, on bool) {
	level := "off"
	value := 0.0
	if on {
		level = "on"
		value = 1
	}
	ledMutations.WithLabelValues(channel, level).Inc()
	ledLevel.WithLabelValues(channel).Set(value)
}

// RecordHALError counts a rejected mutation.
func RecordHALError(channel string) {
	ledHALErrors.WithLabelValues(channel).Inc()
}

// RecordStateReset counts an unrecognised-state reset.
func RecordStateReset(task string) {
	taskStateResets.WithLabelValues(task).Inc()
}

// SetTaskState moves the task's state gauge to state.
func SetTaskState(task, state string) {
	taskStatesMu.Lock()
	defer taskStatesMu.Unlock()

	if prev, ok := taskStates[task]; ok {
		taskState.DeleteLabelValues(task, prev)
	}
	taskStates[task] = state
	taskState.WithLabelValues(task, state).Set(1)
}

// DeleteTaskMetrics removes the per-task series.
func DeleteTaskMetrics(task string) {
	taskStatesMu.Lock()
	defer taskStatesMu.Unlock()

	if prev, ok := taskStates[task]; ok {
		taskState.DeleteLabelValues(task, prev)
		delete(taskStates, task)
	}
	taskStateResets.DeleteLabelValues(task)
}
