package guard

import (
	"errors"
	"sync/atomic"
	"time"
)

var (
	// ErrNilObserver is returned by New when WithObserver receives nil.
	ErrNilObserver = errors.New("guard: nil observer")
	// ErrInvalidCount is returned by New when the initial count is not 0 or 1.
	ErrInvalidCount = errors.New("guard: initial count must be 0 or 1")
)

// Observer is notified around every guarded section. Acquired runs while the
// guard is held, right after it was taken; Released runs while it is still
// held, right before it is given back.
type Observer interface {
	Acquired(waited time.Duration)
	Released(held time.Duration)
}

// Option configures a Guard.
type Option func(*options)

type options struct {
	observers    []Observer
	initialCount int
	err          error
}

// WithObserver registers an instrumentation hook.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o == nil {
			opts.err = ErrNilObserver
			return
		}
		opts.observers = append(opts.observers, o)
	}
}

func buildOptions(opts []Option) (options, error) {
	o := options{initialCount: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return o, o.err
	}
	if o.initialCount != 0 && o.initialCount != 1 {
		return o, ErrInvalidCount
	}
	return o, nil
}

// Do runs fn while holding g. The guard is released on every exit path,
// including a panic inside fn, which is re-raised after release.
func (g *Guard) Do(fn func() error) error {
	g.Acquire()
	defer g.Release()
	return fn()
}

// Strategy returns the name of the compiled-in strategy.
func (g *Guard) Strategy() string { return StrategyName }

// instrument tracks hold windows for observers. heldSince is zero whenever
// the guard is not held through Acquire.
type instrument struct {
	observers []Observer
	heldSince atomic.Int64
}

func (in *instrument) acquired(start time.Time) {
	if len(in.observers) == 0 {
		return
	}
	now := time.Now()
	in.heldSince.Store(now.UnixNano())
	for _, o := range in.observers {
		o.Acquired(now.Sub(start))
	}
}

func (in *instrument) releasing() {
	if len(in.observers) == 0 {
		return
	}
	since := in.heldSince.Swap(0)
	if since == 0 {
		return
	}
	held := time.Duration(time.Now().UnixNano() - since)
	for _, o := range in.observers {
		o.Released(held)
	}
}
