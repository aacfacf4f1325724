package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTask struct {
	name string
	run  func(ctx context.Context) error
}

func (f *fakeTask) Name() string { return f.name }

func (f *fakeTask) Run(ctx context.Context) error { return f.run(ctx) }

func blockingTask(name string) *fakeTask {
	return &fakeTask{name: name, run: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
}

func waitForState(t *testing.T, s *Supervisor, name string, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Status(name).State == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s: expected state %s, got %s", name, want, s.Status(name).State)
}

func TestSupervisorStartStop(t *testing.T) {
	s := New(&Options{Logger: testLogger()})
	if err := s.Add(blockingTask("red")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Add(blockingTask("green")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if got := s.Status("red").State; got != StateIdle {
		t.Errorf("expected idle before start, got %s", got)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, s, "red", StateRunning)
	waitForState(t, s, "green", StateRunning)

	s.StopAll()

	for _, info := range s.List() {
		if info.State != StateStopped {
			t.Errorf("task %s: expected stopped, got %s", info.Name, info.State)
		}
	}
	if err := s.Wait(); err != nil {
		t.Errorf("expected no error after clean stop, got %v", err)
	}
}

func TestSupervisorDuplicateAndLateAdd(t *testing.T) {
	s := New(&Options{Logger: testLogger()})
	if err := s.Add(blockingTask("red")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Add(blockingTask("red")); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.StopAll()

	if err := s.Add(blockingTask("green")); !errors.Is(err, ErrStarted) {
		t.Errorf("expected ErrStarted on late Add, got %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrStarted) {
		t.Errorf("expected ErrStarted on second Start, got %v", err)
	}
}

func TestSupervisorTaskError(t *testing.T) {
	boom := errors.New("boom")
	s := New(&Options{Logger: testLogger()})
	if err := s.Add(&fakeTask{name: "red", run: func(context.Context) error { return boom }}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	err := s.Wait()
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to wrap boom, got %v", err)
	}

	info := s.Status("red")
	if info.State != StateError {
		t.Errorf("expected error state, got %s", info.State)
	}
	if !errors.Is(info.LastError, boom) {
		t.Errorf("expected LastError boom, got %v", info.LastError)
	}
	if info.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
}

func TestSupervisorStateCallback(t *testing.T) {
	var mu sync.Mutex
	var transitions []string

	s := New(&Options{
		Logger: testLogger(),
		OnStateChange: func(name string, oldState, newState State, _ error) {
			mu.Lock()
			defer mu.Unlock()
			transitions = append(transitions, name+":"+string(oldState)+"->"+string(newState))
		},
	})
	if err := s.Add(blockingTask("red")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, s, "red", StateRunning)
	s.StopAll()

	mu.Lock()
	defer mu.Unlock()
	want := []string{
		"red:idle->running",
		"red:running->stopping",
		"red:stopping->stopped",
	}
	if len(transitions) != len(want) {
		t.Fatalf("expected %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], transitions[i])
		}
	}
}

func TestSupervisorStopTimeout(t *testing.T) {
	release := make(chan struct{})
	s := New(&Options{Logger: testLogger(), StopTimeout: 20 * time.Millisecond})
	if err := s.Add(&fakeTask{name: "stuck", run: func(context.Context) error {
		<-release
		return nil
	}}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, s, "stuck", StateRunning)

	start := time.Now()
	s.StopAll()
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("StopAll did not honour its timeout: %v", elapsed)
	}
	if got := s.Status("stuck").State; got != StateStopping {
		t.Errorf("expected stopping while task is stuck, got %s", got)
	}

	close(release)
	if err := s.Wait(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSupervisorListSorted(t *testing.T) {
	s := New(nil)
	for _, name := range []string{"red", "green", "blue"} {
		if err := s.Add(blockingTask(name)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	infos := s.List()
	want := []string{"blue", "green", "red"}
	for i, info := range infos {
		if info.Name != want[i] {
			t.Errorf("index %d: expected %s, got %s", i, want[i], info.Name)
		}
	}
}

func TestStatusUnknownTask(t *testing.T) {
	s := New(nil)
	if got := s.Status("missing").State; got != StateIdle {
		t.Errorf("expected idle for unknown task, got %s", got)
	}
}
