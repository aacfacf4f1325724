package nats

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/smazurov/ledsync/internal/events"
	"github.com/smazurov/ledsync/internal/led"
)

type marshaler interface {
	Marshal() ([]byte, error)
}

// Publisher forwards event bus traffic to NATS.
type Publisher struct {
	url       string
	eventBus  *events.Bus
	conn      *nats.Conn
	unsubs    []func()
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool
}

// NewPublisher creates a new EventBus-to-NATS publisher.
func NewPublisher(url string, eventBus *events.Bus, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Publisher{
		url:      url,
		eventBus: eventBus,
		logger:   logger.With("component", "nats-publisher"),
	}
}

// Start connects to NATS and subscribes to the event bus.
// On connection failure the error is returned and nothing is subscribed.
func (p *Publisher) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := nats.Connect(p.url,
		nats.Name("ledsync"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			p.setConnected(false)
			if err != nil {
				p.logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			p.setConnected(true)
			p.logger.Info("NATS reconnected")
		}),
	)
	if err != nil {
		p.logger.Warn("Failed to connect to NATS, events stay local", "error", err)
		return err
	}

	p.conn = conn
	p.connected = true
	p.logger.Info("NATS publisher connected", "url", p.url)

	p.unsubs = append(p.unsubs,
		p.eventBus.Subscribe(p.handleLEDChanged),
		p.eventBus.Subscribe(p.handleTaskState),
	)
	return nil
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

func (p *Publisher) handleLEDChanged(e events.LEDChangedEvent) {
	p.publish(SubjectLED(e.Channel), LEDMessage{
		Task:      e.Task,
		Channel:   e.Channel,
		Level:     led.LevelString(e.On),
		Timestamp: e.Timestamp.Format(time.RFC3339Nano),
	})
}

func (p *Publisher) handleTaskState(e events.TaskStateChangedEvent) {
	p.publish(SubjectTaskState(e.Task), TaskStateMessage{
		Task:      e.Task,
		OldState:  e.OldState,
		NewState:  e.NewState,
		Error:     e.Error,
		Timestamp: e.Timestamp.Format(time.RFC3339),
	})
}

// publish is a no-op while disconnected.
func (p *Publisher) publish(subject string, m marshaler) {
	p.mu.RLock()
	conn := p.conn
	connected := p.connected
	p.mu.RUnlock()

	if conn == nil || !connected {
		return
	}

	data, err := m.Marshal()
	if err != nil {
		p.logger.Warn("Failed to marshal message", "subject", subject, "error", err)
		return
	}
	if err := conn.Publish(subject, data); err != nil {
		p.logger.Warn("Failed to publish", "subject", subject, "error", err)
	}
}

// Stop unsubscribes from the bus and closes the connection.
func (p *Publisher) Stop() {
	p.mu.Lock()
	unsubs := p.unsubs
	p.unsubs = nil
	conn := p.conn
	p.conn = nil
	p.connected = false
	p.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	if conn != nil {
		_ = conn.Drain()
	}
	p.logger.Info("NATS publisher stopped")
}

// IsConnected returns true if the publisher is connected to NATS.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected && p.conn != nil
}
