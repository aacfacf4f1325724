package nats

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/smazurov/ledsync/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startServer(t *testing.T, port int) *Server {
	t.Helper()
	server := NewServer(ServerOptions{Port: port, Logger: testLogger()})
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(server.Stop)
	return server
}

func TestServerStartStop(t *testing.T) {
	server := NewServer(ServerOptions{Port: 14322, Logger: testLogger()})
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	if !server.IsRunning() {
		t.Error("Server should be running after Start()")
	}
	if server.ClientURL() == "" {
		t.Error("ClientURL should not be empty")
	}

	server.Stop()

	if server.IsRunning() {
		t.Error("Server should not be running after Stop()")
	}
}

func TestServerRejectsZeroPort(t *testing.T) {
	server := NewServer(ServerOptions{Logger: testLogger()})
	if err := server.Start(); err == nil {
		server.Stop()
		t.Fatal("expected error for zero port")
	}
}

func TestPublisherGracefulDegradation(t *testing.T) {
	bus := events.New()
	defer bus.Close()

	publisher := NewPublisher("nats://localhost:59998", bus, testLogger())
	if err := publisher.Start(); err == nil {
		t.Error("Start should fail with non-existent server")
	}

	// Must not panic while disconnected.
	publisher.handleLEDChanged(events.LEDChangedEvent{Task: "red", Channel: "red", On: true})

	if publisher.IsConnected() {
		t.Error("Publisher should not be connected")
	}
	publisher.Stop()
}

func TestPublisherForwardsEvents(t *testing.T) {
	server := startServer(t, 14323)

	bus := events.New()
	defer bus.Close()

	publisher := NewPublisher(server.ClientURL(), bus, testLogger())
	if err := publisher.Start(); err != nil {
		t.Fatalf("Failed to start publisher: %v", err)
	}
	defer publisher.Stop()

	if !publisher.IsConnected() {
		t.Fatal("Publisher should be connected")
	}

	sub, err := nats.Connect(server.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect subscriber: %v", err)
	}
	defer sub.Close()

	ledMsgs := make(chan *nats.Msg, 4)
	if _, err := sub.ChanSubscribe(SubjectLEDsPrefix+".>", ledMsgs); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	stateMsgs := make(chan *nats.Msg, 4)
	if _, err := sub.ChanSubscribe(SubjectTasksPrefix+".*.state", stateMsgs); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := sub.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	bus.Publish(events.LEDChangedEvent{Task: "green", Channel: "green", On: true, Timestamp: time.Now()})
	bus.Publish(events.TaskStateChangedEvent{Task: "green", OldState: "idle", NewState: "running", Timestamp: time.Now()})

	select {
	case msg := <-ledMsgs:
		if msg.Subject != "ledsync.leds.green" {
			t.Errorf("subject = %s, want ledsync.leds.green", msg.Subject)
		}
		m, err := UnmarshalLED(msg.Data)
		if err != nil {
			t.Fatalf("UnmarshalLED failed: %v", err)
		}
		if m.Level != "ON" || m.Task != "green" {
			t.Errorf("unexpected LED message: %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("LED message not received")
	}

	select {
	case msg := <-stateMsgs:
		m, err := UnmarshalTaskState(msg.Data)
		if err != nil {
			t.Fatalf("UnmarshalTaskState failed: %v", err)
		}
		if m.NewState != "running" {
			t.Errorf("NewState = %s, want running", m.NewState)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task state message not received")
	}
}

func TestSubjectFunctions(t *testing.T) {
	tests := []struct {
		fn       func(string) string
		arg      string
		expected string
	}{
		{SubjectLED, "red", "ledsync.leds.red"},
		{SubjectTaskState, "green", "ledsync.tasks.green.state"},
	}

	for _, tt := range tests {
		result := tt.fn(tt.arg)
		if result != tt.expected {
			t.Errorf("Got %s, want %s", result, tt.expected)
		}
	}
}
