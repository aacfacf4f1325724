package led

import (
	"sync"
	"time"

	"github.com/smazurov/ledsync/internal/events"
)

// ChannelStatus is the last observed level of one channel.
type ChannelStatus struct {
	Channel   Channel
	On        bool
	Task      string
	Changes   uint64
	Errors    uint64
	UpdatedAt time.Time
	LastError string
}

// Monitor keeps the last known level of every channel from bus events.
// Task machines own their state; readers only ever see this snapshot.
type Monitor struct {
	mu       sync.RWMutex
	channels map[Channel]*ChannelStatus
	unsubs   []func()
}

// NewMonitor creates a monitor seeded with the given channels (all off).
func NewMonitor(channels ...Channel) *Monitor {
	m := &Monitor{channels: make(map[Channel]*ChannelStatus)}
	for _, ch := range channels {
		m.channels[ch] = &ChannelStatus{Channel: ch}
	}
	return m
}

// Attach subscribes the monitor to bus.
func (m *Monitor) Attach(bus *events.Bus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsubs = append(m.unsubs,
		bus.Subscribe(m.handleChanged),
		bus.Subscribe(m.handleError),
	)
}

// Detach removes every subscription made by Attach.
func (m *Monitor) Detach() {
	m.mu.Lock()
	unsubs := m.unsubs
	m.unsubs = nil
	m.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func (m *Monitor) entry(name string) *ChannelStatus {
	ch := Channel(name)
	st, ok := m.channels[ch]
	if !ok {
		st = &ChannelStatus{Channel: ch}
		m.channels[ch] = st
	}
	return st
}

func (m *Monitor) handleChanged(e events.LEDChangedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.entry(e.Channel)
	st.On = e.On
	st.Task = e.Task
	st.Changes++
	st.UpdatedAt = e.Timestamp
}

func (m *Monitor) handleError(e events.HALErrorEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.entry(e.Channel)
	st.Task = e.Task
	st.Errors++
	st.LastError = e.Error
}

// Snapshot returns a copy of every channel status in channel order.
func (m *Monitor) Snapshot() []ChannelStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ChannelStatus, 0, len(m.channels))
	for _, ch := range sortedChannels(m.channels) {
		out = append(out, *m.channels[ch])
	}
	return out
}

// Get returns the status of a single channel.
func (m *Monitor) Get(ch Channel) (ChannelStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.channels[ch]
	if !ok {
		return ChannelStatus{}, false
	}
	return *st, true
}
