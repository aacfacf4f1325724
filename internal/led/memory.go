package led

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/smazurov/ledsync/internal/clock"
)

const defaultMemoryLogSize = 4096

// Entry is one recorded mutation, timed from the controller's creation.
type Entry struct {
	At      time.Duration
	Channel Channel
	On      bool
}

// String renders the entry as "[t=<ms>,<channel>,<ON|OFF>]".
func (e Entry) String() string {
	return fmt.Sprintf("[t=%d,%s,%s]", e.At.Milliseconds(), e.Channel, LevelString(e.On))
}

// SortEntries orders entries by time. Two channels mutated at the same
// instant may be recorded in either order, so ties follow the position of the
// channel in order; channels missing from order come last, by name.
func SortEntries(entries []Entry, order ...Channel) {
	rank := make(map[Channel]int, len(order))
	for i, ch := range order {
		if _, seen := rank[ch]; !seen {
			rank[ch] = i
		}
	}
	position := func(ch Channel) int {
		if r, ok := rank[ch]; ok {
			return r
		}
		return len(order)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.At != b.At {
			return a.At < b.At
		}
		if pa, pb := position(a.Channel), position(b.Channel); pa != pb {
			return pa < pb
		}
		return a.Channel < b.Channel
	})
}

// FormatLog concatenates entries into a single mutation log line.
func FormatLog(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
	}
	return sb.String()
}

// Memory is a simulated LED that keeps channel levels and a bounded
// mutation log. It backs the "sim" backend, the trace command and tests.
type Memory struct {
	clock   clock.Clock
	start   time.Time
	limit   int
	mu      sync.Mutex
	levels  map[Channel]bool
	inits   map[Channel]int
	log     []Entry
	dropped int
}

// MemoryOption configures a Memory.
type MemoryOption func(*Memory)

// WithLogLimit keeps at most n log entries, discarding the oldest once full.
// n <= 0 keeps every entry.
func WithLogLimit(n int) MemoryOption {
	return func(m *Memory) {
		m.limit = n
	}
}

// NewMemory creates a simulated LED timed by clk. The log holds 4096
// entries unless WithLogLimit says otherwise.
func NewMemory(clk clock.Clock, opts ...MemoryOption) *Memory {
	m := &Memory{
		clock:  clk,
		start:  clk.Now(),
		limit:  defaultMemoryLogSize,
		levels: make(map[Channel]bool),
		inits:  make(map[Channel]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init implements Controller.
func (m *Memory) Init(ch Channel) error {
	if _, err := ParseChannel(string(ch)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inits[ch]++
	m.levels[ch] = false
	return nil
}

// Set implements Controller.
func (m *Memory) Set(ch Channel, on bool) error {
	if _, err := ParseChannel(string(ch)); err != nil {
		return err
	}
	at := m.clock.Now().Sub(m.start)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[ch] = on
	m.log = append(m.log, Entry{At: at, Channel: ch, On: on})
	if m.limit > 0 && len(m.log) > m.limit {
		over := len(m.log) - m.limit
		m.dropped += over
		m.log = append(m.log[:0], m.log[over:]...)
	}
	return nil
}

// Available implements Controller.
func (m *Memory) Available() []Channel {
	return Channels()
}

// Level returns the current level of a channel.
func (m *Memory) Level(ch Channel) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.levels[ch]
}

// InitCount returns how many times Init ran for a channel.
func (m *Memory) InitCount(ch Channel) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inits[ch]
}

// Dropped returns how many entries were discarded to respect the log limit.
func (m *Memory) Dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Entries returns a copy of the mutation log, oldest first.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.log...)
}
