package guard

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// overlapObserver records the number of concurrent holders.
type overlapObserver struct {
	holders  atomic.Int32
	overlaps atomic.Int32
	acquires atomic.Int64
	releases atomic.Int64
}

func (o *overlapObserver) Acquired(time.Duration) {
	o.acquires.Add(1)
	if o.holders.Add(1) > 1 {
		o.overlaps.Add(1)
	}
}

func (o *overlapObserver) Released(time.Duration) {
	o.releases.Add(1)
	o.holders.Add(-1)
}

func TestNewRejectsNilObserver(t *testing.T) {
	g, err := New(WithObserver(nil))
	assert.Nil(t, g)
	assert.ErrorIs(t, err, ErrNilObserver)
}

func TestStrategyMatchesBuild(t *testing.T) {
	g, err := New()
	require.NoError(t, err)
	assert.Equal(t, StrategyName, g.Strategy())
}

func TestMutualExclusionUnderContention(t *testing.T) {
	const iterations = 10000

	obs := &overlapObserver{}
	g, err := New(WithObserver(obs))
	require.NoError(t, err)

	var shared int
	var wg sync.WaitGroup
	for worker := 0; worker < 2; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_ = g.Do(func() error {
					shared++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2*iterations, shared)
	assert.Zero(t, obs.overlaps.Load(), "two holders observed inside the guard")
	assert.Equal(t, int64(2*iterations), obs.acquires.Load())
	assert.Equal(t, obs.acquires.Load(), obs.releases.Load())
}

func TestAcquireBlocksUntilRelease(t *testing.T) {
	g, err := New()
	require.NoError(t, err)

	g.Acquire()

	entered := make(chan struct{})
	go func() {
		g.Acquire()
		close(entered)
		g.Release()
	}()

	select {
	case <-entered:
		t.Fatal("second Acquire proceeded while the guard was held")
	case <-time.After(30 * time.Millisecond):
	}

	g.Release()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("waiter never proceeded after Release")
	}
}

func TestTryAcquire(t *testing.T) {
	g, err := New()
	require.NoError(t, err)

	require.True(t, g.TryAcquire())
	assert.False(t, g.TryAcquire(), "guard handed out twice")
	g.Release()
	assert.True(t, g.TryAcquire())
	g.Release()
}

func TestDoReleasesOnError(t *testing.T) {
	g, err := New()
	require.NoError(t, err)

	boom := errors.New("hal fault")
	assert.ErrorIs(t, g.Do(func() error { return boom }), boom)

	require.True(t, g.TryAcquire(), "guard left held after an error")
	g.Release()
}

func TestDoReleasesOnPanic(t *testing.T) {
	obs := &overlapObserver{}
	g, err := New(WithObserver(obs))
	require.NoError(t, err)

	assert.PanicsWithValue(t, "fault between mutation and release", func() {
		_ = g.Do(func() error {
			panic("fault between mutation and release")
		})
	})

	require.True(t, g.TryAcquire(), "guard left held after a panic")
	g.Release()
	assert.Equal(t, obs.acquires.Load(), obs.releases.Load())
}

func TestObserverSeesWaitAndHold(t *testing.T) {
	var waited, held time.Duration
	obs := observerFuncs{
		acquired: func(d time.Duration) { waited = d },
		released: func(d time.Duration) { held = d },
	}
	g, err := New(WithObserver(obs))
	require.NoError(t, err)

	_ = g.Do(func() error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	assert.GreaterOrEqual(t, waited, time.Duration(0))
	assert.GreaterOrEqual(t, held, 10*time.Millisecond)
}

type observerFuncs struct {
	acquired func(time.Duration)
	released func(time.Duration)
}

func (o observerFuncs) Acquired(d time.Duration) { o.acquired(d) }
func (o observerFuncs) Released(d time.Duration) { o.released(d) }
