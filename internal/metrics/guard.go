package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	guardWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ledsync",
		Subsystem: "guard",
		Name:      "wait_seconds",
		Help:      "Time spent blocked before taking the guard",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 8),
	})

	guardHold = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ledsync",
		Subsystem: "guard",
		Name:      "hold_seconds",
		Help:      "Time the guard was held per critical section",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 8),
	})

	// Local cache for the status API.
	guardStats   GuardStats
	guardStatsMu sync.RWMutex
)

// GuardStats summarises guard usage since start.
type GuardStats struct {
	Acquisitions uint64
	Releases     uint64
	TotalWait    time.Duration
	MaxWait      time.Duration
	TotalHeld    time.Duration
	MaxHeld      time.Duration
}

// GuardObserver feeds guard timings into the metrics. It satisfies
// guard.Observer.
type GuardObserver struct{}

// Acquired records the time spent waiting for the guard.
func (GuardObserver) Acquired(waited time.Duration) {
	guardWait.Observe(waited.Seconds())

	guardStatsMu.Lock()
	defer guardStatsMu.Unlock()
	guardStats.Acquisitions++
	guardStats.TotalWait += waited
	if waited > guardStats.MaxWait {
		guardStats.MaxWait = waited
	}
}

// Released records how long the guard was held.
func (GuardObserver) Released(held time.Duration) {
	guardHold.Observe(held.Seconds())

	guardStatsMu.Lock()
	defer guardStatsMu.Unlock()
	guardStats.Releases++
	guardStats.TotalHeld += held
	if held > guardStats.MaxHeld {
		guardStats.MaxHeld = held
	}
}

// GetGuardStats returns a copy of the guard usage summary.
func GetGuardStats() GuardStats {
	guardStatsMu.RLock()
	defer guardStatsMu.RUnlock()
	return guardStats
}
