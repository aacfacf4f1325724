//go:build !guard_semaphore

package guard

import (
	"sync"
	"time"
)

// StrategyName identifies the compiled-in strategy.
const StrategyName = "mutex"

// Guard is an exclusive lock (Strategy A). The zero value is not usable;
// construct with New.
type Guard struct {
	mu sync.Mutex
	instrument
}

// New creates the guard. A non-nil error means the guard is unusable and the
// caller must not start any task.
func New(opts ...Option) (*Guard, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	g := &Guard{}
	g.observers = o.observers
	return g, nil
}

// Lock blocks until the guard is free, then holds it. The same goroutine
// must not call Lock twice without an Unlock in between.
func (g *Guard) Lock() {
	start := time.Now()
	g.mu.Lock()
	g.acquired(start)
}

// Unlock frees the guard and wakes one waiter. Unlocking a free guard is a
// fatal runtime error, as with sync.Mutex.
func (g *Guard) Unlock() {
	g.releasing()
	g.mu.Unlock()
}

// TryAcquire takes the guard if it is free and reports whether it did.
func (g *Guard) TryAcquire() bool {
	start := time.Now()
	if !g.mu.TryLock() {
		return false
	}
	g.acquired(start)
	return true
}

// Acquire is Lock.
func (g *Guard) Acquire() { g.Lock() }

// Release is Unlock.
func (g *Guard) Release() { g.Unlock() }
