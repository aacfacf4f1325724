// Package clock is the scheduler delay primitive the task machines suspend on.
//
// Production code uses the wall clock. Tests and the trace command use a
// virtual clock so that periods are exact and runs are reproducible.
package clock

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock provides monotonic time and a cancellable delay.
type Clock interface {
	Now() time.Time
	// Sleep parks the caller for d. It returns early with ctx.Err() only
	// when ctx ends first.
	Sleep(ctx context.Context, d time.Duration) error
}

type wrapped struct {
	c clockwork.Clock
}

// Real returns a Clock backed by the wall clock.
func Real() Clock {
	return wrapped{c: clockwork.NewRealClock()}
}

// From adapts any clockwork clock.
func From(c clockwork.Clock) Clock {
	return wrapped{c: c}
}

func (w wrapped) Now() time.Time { return w.c.Now() }

func (w wrapped) Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, w.c, d)
}

func sleep(ctx context.Context, c clockwork.Clock, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := c.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
