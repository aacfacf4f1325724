//go:build guard_semaphore

package guard

import "time"

// StrategyName identifies the compiled-in strategy.
const StrategyName = "semaphore"

// Guard is a binary signal (Strategy B). A token in the channel means the
// guard is available. The zero value is not usable; construct with New.
type Guard struct {
	tokens chan struct{}
	instrument
}

// WithInitialCount sets the starting count. 1 (the default) gives mutual
// exclusion through Acquire/Release; 0 starts consumed for hand-off use where
// one side only signals and the other only waits.
func WithInitialCount(n int) Option {
	return func(opts *options) {
		opts.initialCount = n
	}
}

// New creates the guard. A non-nil error means the guard is unusable and the
// caller must not start any task.
func New(opts ...Option) (*Guard, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	g := &Guard{tokens: make(chan struct{}, 1)}
	g.observers = o.observers
	if o.initialCount == 1 {
		g.tokens <- struct{}{}
	}
	return g, nil
}

// Wait blocks until the count is non-zero, then consumes it.
func (g *Guard) Wait() {
	start := time.Now()
	<-g.tokens
	g.acquired(start)
}

// Signal makes the guard available and releases one waiter. The count
// saturates at one: signalling an available guard changes nothing.
func (g *Guard) Signal() {
	g.releasing()
	select {
	case g.tokens <- struct{}{}:
	default:
	}
}

// TryAcquire consumes the signal if it is available and reports whether it did.
func (g *Guard) TryAcquire() bool {
	start := time.Now()
	select {
	case <-g.tokens:
		g.acquired(start)
		return true
	default:
		return false
	}
}

// Acquire is Wait.
func (g *Guard) Acquire() { g.Wait() }

// Release is Signal.
func (g *Guard) Release() { g.Signal() }
