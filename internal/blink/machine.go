// Package blink implements the periodic task machine that toggles one LED
// channel. Each machine owns its state; the only thing it shares with other
// machines is the guard around hardware mutations and the LED itself.
package blink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/smazurov/ledsync/internal/clock"
	"github.com/smazurov/ledsync/internal/events"
	"github.com/smazurov/ledsync/internal/guard"
	"github.com/smazurov/ledsync/internal/led"
)

// ErrInvalidConfig is returned by New for an unusable Config.
var ErrInvalidConfig = errors.New("invalid task config")

// Config describes one task machine.
type Config struct {
	Name    string
	Channel led.Channel
	Period  time.Duration
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidConfig)
	}
	if _, err := led.ParseChannel(string(c.Channel)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %s", ErrInvalidConfig, c.Period)
	}
	return nil
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the machine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithEventBus publishes mutation events to bus.
func WithEventBus(bus *events.Bus) Option {
	return func(m *Machine) {
		m.bus = bus
	}
}

// Machine alternates one LED channel between on and off every Period.
type Machine struct {
	cfg    Config
	guard  *guard.Guard
	ctrl   led.Controller
	clock  clock.Clock
	bus    *events.Bus
	logger *slog.Logger

	// state is only touched by the goroutine running the machine.
	state State
}

// New creates a machine in StateOn.
func New(cfg Config, g *guard.Guard, ctrl led.Controller, clk clock.Clock, opts ...Option) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g == nil || ctrl == nil || clk == nil {
		return nil, fmt.Errorf("%w: guard, controller and clock are required", ErrInvalidConfig)
	}

	m := &Machine{
		cfg:    cfg,
		guard:  g,
		ctrl:   ctrl,
		clock:  clk,
		logger: slog.Default(),
		state:  StateOn,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("task", cfg.Name, "channel", cfg.Channel)
	return m, nil
}

// Name returns the task name.
func (m *Machine) Name() string { return m.cfg.Name }

// Config returns the machine configuration.
func (m *Machine) Config() Config { return m.cfg }

// Init prepares the channel. It runs once before the loop and outside the
// guard, since no other task touches this channel yet.
func (m *Machine) Init() error {
	if err := m.ctrl.Init(m.cfg.Channel); err != nil {
		return fmt.Errorf("init %s channel: %w", m.cfg.Channel, err)
	}
	return nil
}

// Run initialises the channel and then steps until ctx ends. It returns
// ctx.Err() on shutdown, or the Init error.
func (m *Machine) Run(ctx context.Context) error {
	if err := m.Init(); err != nil {
		return err
	}
	m.logger.Info("Task started", "period", m.cfg.Period, "guard", m.guard.Strategy())

	for {
		if err := m.Step(ctx); err != nil {
			m.logger.Info("Task stopped", "reason", err)
			return err
		}
	}
}

// Step runs one iteration: take the guard, drive the channel for the current
// state, release, wait one period, then advance. An unrecognised state is
// reset to StateOn without delay. Step returns ctx.Err() if the context ends
// during the delay; the state is then left unchanged.
func (m *Machine) Step(ctx context.Context) error {
	var on bool
	var next State

	switch m.state {
	case StateOn:
		on, next = true, StateOff
	case StateOff:
		on, next = false, StateOn
	default:
		m.publish(events.StateResetEvent{
			Task:      m.cfg.Name,
			Raw:       int(m.state),
			Timestamp: m.clock.Now(),
		})
		m.state = StateOn
		return nil
	}

	m.mutate(on)

	if err := m.clock.Sleep(ctx, m.cfg.Period); err != nil {
		return err
	}
	m.state = next
	return nil
}

// mutate drives the channel inside the guard. Hardware errors are reported
// and do not stop the machine.
func (m *Machine) mutate(on bool) {
	err := m.guard.Do(func() error {
		return m.ctrl.Set(m.cfg.Channel, on)
	})
	now := m.clock.Now()

	if err != nil {
		m.logger.Warn("LED mutation failed", "on", on, "error", err)
		m.publish(events.HALErrorEvent{
			Task:      m.cfg.Name,
			Channel:   m.cfg.Channel.String(),
			Error:     err.Error(),
			Timestamp: now,
		})
		return
	}

	m.logger.Debug("Channel set", "level", led.LevelString(on))
	m.publish(events.LEDChangedEvent{
		Task:      m.cfg.Name,
		Channel:   m.cfg.Channel.String(),
		On:        on,
		Timestamp: now,
	})
}

func (m *Machine) publish(ev events.Event) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}
