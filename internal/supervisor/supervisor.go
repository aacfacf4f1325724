package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

var (
	// ErrStarted is returned when registering or starting after Start.
	ErrStarted = errors.New("supervisor already started")
	// ErrDuplicate is returned when a task name is registered twice.
	ErrDuplicate = errors.New("task already registered")
)

const defaultStopTimeout = 10 * time.Second

// Runnable is a long-running task.
type Runnable interface {
	Name() string
	Run(ctx context.Context) error
}

// Options configures a Supervisor.
type Options struct {
	// OnStateChange is called when a task changes state (optional).
	OnStateChange StateChangeCallback

	// StopTimeout bounds StopAll. Zero means 10s.
	StopTimeout time.Duration

	// Logger for supervisor operations. If nil, uses slog.Default().
	Logger *slog.Logger
}

type managedTask struct {
	task      Runnable
	state     State
	startedAt time.Time
	lastError error
}

// Supervisor owns the task goroutines.
type Supervisor struct {
	opts    Options
	tasks   map[string]*managedTask
	order   []string
	mu      sync.RWMutex
	logger  *slog.Logger
	cancel  context.CancelFunc
	started bool
	wg      sync.WaitGroup
}

// New creates a supervisor.
func New(opts *Options) *Supervisor {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = defaultStopTimeout
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		opts:   o,
		tasks:  make(map[string]*managedTask),
		logger: logger,
	}
}

// Add registers a task. It must be called before Start.
func (s *Supervisor) Add(task Runnable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrStarted
	}
	name := task.Name()
	if _, exists := s.tasks[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	s.tasks[name] = &managedTask{task: task, state: StateIdle}
	s.order = append(s.order, name)
	return nil
}

// Start launches every registered task on its own goroutine.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	names := append([]string(nil), s.order...)
	s.mu.Unlock()

	for _, name := range names {
		s.wg.Add(1)
		go func(name string) {
			defer s.wg.Done()
			s.runTask(ctx, name)
		}(name)
	}
	s.logger.Info("Tasks started", "count", len(names))
	return nil
}

func (s *Supervisor) runTask(ctx context.Context, name string) {
	s.mu.Lock()
	mt := s.tasks[name]
	mt.startedAt = time.Now()
	s.mu.Unlock()
	s.setState(name, StateRunning, nil)

	err := mt.task.Run(ctx)

	switch {
	case err == nil, errors.Is(err, context.Canceled) && ctx.Err() != nil:
		s.setState(name, StateStopped, nil)
	default:
		s.logger.Error("Task failed", "task", name, "error", err)
		s.setState(name, StateError, err)
	}
}

func (s *Supervisor) setState(name string, newState State, err error) {
	s.mu.Lock()
	mt := s.tasks[name]
	oldState := mt.state
	mt.state = newState
	if err != nil {
		mt.lastError = err
	}
	s.mu.Unlock()

	if oldState == newState {
		return
	}
	if s.opts.OnStateChange != nil {
		s.opts.OnStateChange(name, oldState, newState, err)
	}
}

// Status returns the task info. Unknown names report StateIdle.
func (s *Supervisor) Status(name string) Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mt, exists := s.tasks[name]
	if !exists {
		return Info{Name: name, State: StateIdle}
	}
	return Info{
		Name:      name,
		State:     mt.state,
		StartedAt: mt.startedAt,
		LastError: mt.lastError,
	}
}

// List returns the info of every task sorted by name.
func (s *Supervisor) List() []Info {
	s.mu.RLock()
	names := append([]string(nil), s.order...)
	s.mu.RUnlock()

	sort.Strings(names)
	infos := make([]Info, 0, len(names))
	for _, name := range names {
		infos = append(infos, s.Status(name))
	}
	return infos
}

// Wait blocks until every task has exited and returns their joined errors.
func (s *Supervisor) Wait() error {
	s.wg.Wait()

	s.mu.RLock()
	defer s.mu.RUnlock()
	var errs []error
	for _, name := range s.order {
		if mt := s.tasks[name]; mt.state == StateError {
			errs = append(errs, fmt.Errorf("%s: %w", name, mt.lastError))
		}
	}
	return errors.Join(errs...)
}

// StopAll cancels every task and waits up to the stop timeout.
func (s *Supervisor) StopAll() {
	s.mu.RLock()
	cancel := s.cancel
	var running []string
	for _, name := range s.order {
		if s.tasks[name].state == StateRunning {
			running = append(running, name)
		}
	}
	s.mu.RUnlock()

	if cancel == nil {
		return
	}
	s.logger.Info("Stopping all tasks")
	for _, name := range running {
		s.setState(name, StateStopping, nil)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("All tasks stopped")
	case <-time.After(s.opts.StopTimeout):
		for _, info := range s.List() {
			if info.State == StateStopping {
				s.logger.Warn("Task did not stop, likely blocked on the guard", "task", info.Name)
			}
		}
	}
}
