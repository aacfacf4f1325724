//go:build guard_semaphore

package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemaphoreStrategyName(t *testing.T) {
	assert.Equal(t, "semaphore", StrategyName)
}

func TestInitialCountValidation(t *testing.T) {
	for _, n := range []int{-1, 2, 5} {
		g, err := New(WithInitialCount(n))
		assert.Nil(t, g)
		assert.ErrorIs(t, err, ErrInvalidCount, "count %d", n)
	}
}

func TestSignalSaturatesAtOne(t *testing.T) {
	g, err := New(WithInitialCount(0))
	require.NoError(t, err)

	g.Signal()
	g.Signal()
	g.Signal()

	assert.True(t, g.TryAcquire())
	assert.False(t, g.TryAcquire(), "binary signal counted past one")
}

func TestProducerConsumerHandOff(t *testing.T) {
	g, err := New(WithInitialCount(0))
	require.NoError(t, err)

	const rounds = 100
	received := make(chan int, rounds)
	go func() {
		for i := 0; i < rounds; i++ {
			g.Wait()
			received <- i
		}
	}()

	for i := 0; i < rounds; i++ {
		g.Signal()
		select {
		case got := <-received:
			assert.Equal(t, i, got)
		case <-time.After(5 * time.Second):
			t.Fatalf("consumer stalled at round %d", i)
		}
	}
}

func TestStartConsumedBlocksWaiter(t *testing.T) {
	g, err := New(WithInitialCount(0))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned without a signal")
	case <-time.After(30 * time.Millisecond):
	}

	g.Signal()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait never returned after Signal")
	}
}
