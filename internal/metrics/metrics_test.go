package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/smazurov/ledsync/internal/events"
)

func TestRecordMutation(t *testing.T) {
	before := testutil.ToFloat64(ledMutations.WithLabelValues("mut-test", "on"))

	RecordMutation("mut-test", true)
	if v := testutil.ToFloat64(ledLevel.WithLabelValues("mut-test")); v != 1 {
		t.Errorf("ledLevel = %v, want 1", v)
	}

	RecordMutation("mut-test", false)
	if v := testutil.ToFloat64(ledLevel.WithLabelValues("mut-test")); v != 0 {
		t.Errorf("ledLevel = %v, want 0", v)
	}

	after := testutil.ToFloat64(ledMutations.WithLabelValues("mut-test", "on"))
	if after-before != 1 {
		t.Errorf("on mutations delta = %v, want 1", after-before)
	}
}

func TestSetTaskStateMovesGauge(t *testing.T) {
	SetTaskState("state-test", "running")
	SetTaskState("state-test", "stopped")

	if n := testutil.CollectAndCount(taskState); n < 1 {
		t.Fatalf("expected task state series, got %d", n)
	}
	if v := testutil.ToFloat64(taskState.WithLabelValues("state-test", "stopped")); v != 1 {
		t.Errorf("stopped gauge = %v, want 1", v)
	}

	DeleteTaskMetrics("state-test")
	DeleteTaskMetrics("state-test")
}

func TestGuardObserver(t *testing.T) {
	before := GetGuardStats()

	var obs GuardObserver
	obs.Acquired(3 * time.Millisecond)
	obs.Released(time.Hour)

	after := GetGuardStats()
	if after.Acquisitions-before.Acquisitions != 1 {
		t.Errorf("acquisitions delta = %d, want 1", after.Acquisitions-before.Acquisitions)
	}
	if after.Releases-before.Releases != 1 {
		t.Errorf("releases delta = %d, want 1", after.Releases-before.Releases)
	}
	if after.MaxHeld != time.Hour {
		t.Errorf("MaxHeld = %v, want 1h", after.MaxHeld)
	}
	if after.TotalWait-before.TotalWait != 3*time.Millisecond {
		t.Errorf("TotalWait delta = %v, want 3ms", after.TotalWait-before.TotalWait)
	}
}

func TestSubscribe(t *testing.T) {
	bus := events.New()
	defer bus.Close()

	unsub := Subscribe(bus)
	defer unsub()

	before := testutil.ToFloat64(taskStateResets.WithLabelValues("sub-test"))
	bus.Publish(events.StateResetEvent{Task: "sub-test", Raw: 7})
	bus.Publish(events.HALErrorEvent{Task: "sub-test", Channel: "sub-test"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if testutil.ToFloat64(taskStateResets.WithLabelValues("sub-test"))-before == 1 &&
			testutil.ToFloat64(ledHALErrors.WithLabelValues("sub-test")) >= 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("events were not reflected in metrics")
}
