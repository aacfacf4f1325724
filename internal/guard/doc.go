// Package guard provides the single synchronisation primitive that serialises
// access to the LED hardware.
//
// The strategy is chosen at build time and exactly one is compiled in:
//
//	go build ./...                        # Strategy A: exclusive lock (Lock/Unlock)
//	go build -tags guard_semaphore ./...  # Strategy B: binary signal (Wait/Signal)
//
// Both builds export the same Guard type with Acquire, Release, TryAcquire and
// Do, so callers do not change with the strategy. Strategy B additionally
// supports asymmetric producer/consumer use through Signal and Wait with an
// initial count of zero.
//
// Acquire never times out and never spins: the calling goroutine parks until
// the guard is handed over. A holder that never releases blocks every other
// contender forever. There is no detection and no recovery for that case; use
// Do so that release happens on every exit path.
package guard
