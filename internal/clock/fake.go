package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Epoch is the start instant of virtual clocks created by NewFake.
var Epoch = time.Unix(0, 0).UTC()

// Fake is a virtual clock. Time only moves when Advance is called.
type Fake struct {
	fc *clockwork.FakeClock
}

// NewFake returns a virtual clock positioned at Epoch.
func NewFake() *Fake {
	return &Fake{fc: clockwork.NewFakeClockAt(Epoch)}
}

// Now implements Clock.
func (f *Fake) Now() time.Time { return f.fc.Now() }

// Sleep implements Clock.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, f.fc, d)
}

// Elapsed returns the virtual time since Epoch.
func (f *Fake) Elapsed() time.Duration { return f.fc.Since(Epoch) }

// Advance moves virtual time forward and fires due sleepers.
func (f *Fake) Advance(d time.Duration) { f.fc.Advance(d) }

// BlockUntil waits until n goroutines are parked in Sleep.
func (f *Fake) BlockUntil(ctx context.Context, n int) error {
	return f.fc.BlockUntilContext(ctx, n)
}

// Drive advances the clock in steps of tick until exactly total has elapsed;
// the last step is shortened so time never passes total. Before every step it
// waits for sleepers goroutines to be parked, so all work due at the current
// instant has completed before time moves on.
func (f *Fake) Drive(ctx context.Context, sleepers int, tick, total time.Duration) error {
	if tick <= 0 {
		return fmt.Errorf("clock: drive tick must be positive, got %s", tick)
	}
	for {
		left := total - f.Elapsed()
		if left <= 0 {
			break
		}
		if err := f.BlockUntil(ctx, sleepers); err != nil {
			return err
		}
		f.Advance(min(tick, left))
	}
	return f.BlockUntil(ctx, sleepers)
}
