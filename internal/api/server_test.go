package api

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/ledsync/internal/api/models"
	"github.com/smazurov/ledsync/internal/blink"
	"github.com/smazurov/ledsync/internal/events"
	"github.com/smazurov/ledsync/internal/led"
	"github.com/smazurov/ledsync/internal/logging"
	"github.com/smazurov/ledsync/internal/supervisor"
)

type stubTasks []supervisor.Info

func (s stubTasks) List() []supervisor.Info { return s }

func newTestServer(t *testing.T, opts *Options) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t, &Options{Strategy: "mutex"})

	var health models.HealthData
	getJSON(t, ts.URL+"/api/health", &health)
	if health.Status != "ok" {
		t.Errorf("health status = %q, want ok", health.Status)
	}

	var ver models.VersionData
	getJSON(t, ts.URL+"/api/version", &ver)
	if ver.Strategy != "mutex" {
		t.Errorf("strategy = %q, want mutex", ver.Strategy)
	}
	if ver.GoVersion == "" {
		t.Error("expected go version")
	}
}

func TestLEDsEndpoint(t *testing.T) {
	bus := events.New()
	defer bus.Close()

	monitor := led.NewMonitor(led.Channels()...)
	monitor.Attach(bus)
	defer monitor.Detach()

	bus.Publish(events.LEDChangedEvent{Task: "red", Channel: "red", On: true, Timestamp: time.Now()})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st, _ := monitor.Get(led.Red); st.Changes == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	ts := newTestServer(t, &Options{Backend: "sim", Monitor: monitor})

	var data models.LEDsData
	getJSON(t, ts.URL+"/api/leds", &data)

	if data.Backend != "sim" {
		t.Errorf("backend = %q, want sim", data.Backend)
	}
	if len(data.Channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(data.Channels))
	}
	red := data.Channels[1]
	if red.Channel != "red" || red.Level != "ON" || red.Changes != 1 {
		t.Errorf("unexpected red channel: %+v", red)
	}
}

func TestLEDsEndpointWithoutMonitor(t *testing.T) {
	ts := newTestServer(t, &Options{})
	resp, err := http.Get(ts.URL + "/api/leds")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Error("LED route should not be registered without a monitor")
	}
}

func TestTasksEndpoint(t *testing.T) {
	ts := newTestServer(t, &Options{
		Tasks: []blink.Config{
			{Name: "red", Channel: led.Red, Period: 500 * time.Millisecond},
			{Name: "green", Channel: led.Green, Period: 300 * time.Millisecond},
		},
		Supervisor: stubTasks{
			{Name: "red", State: supervisor.StateRunning},
			{Name: "green", State: supervisor.StateError, LastError: fmt.Errorf("boom")},
		},
	})

	var data models.TasksData
	getJSON(t, ts.URL+"/api/tasks", &data)

	if len(data.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(data.Tasks))
	}
	if data.Tasks[0].PeriodMs != 500 || data.Tasks[0].State != "running" {
		t.Errorf("unexpected red task: %+v", data.Tasks[0])
	}
	if data.Tasks[1].LastError != "boom" || data.Tasks[1].Channel != "green" {
		t.Errorf("unexpected green task: %+v", data.Tasks[1])
	}
}

func TestGuardEndpoint(t *testing.T) {
	ts := newTestServer(t, &Options{Strategy: "semaphore"})

	var data models.GuardData
	getJSON(t, ts.URL+"/api/guard", &data)
	if data.Strategy != "semaphore" {
		t.Errorf("strategy = %q, want semaphore", data.Strategy)
	}
}

func TestLogsEndpoint(t *testing.T) {
	logging.GetLogger("apitest").Info("first")
	logging.GetLogger("apitest").Info("second")
	logging.GetLogger("other").Info("noise")

	ts := newTestServer(t, &Options{})

	var data models.LogsData
	getJSON(t, ts.URL+"/api/logs?module=apitest&limit=1", &data)

	if data.Count != 1 || len(data.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", data.Count)
	}
	if data.Entries[0].Message != "second" {
		t.Errorf("expected newest entry, got %q", data.Entries[0].Message)
	}
}

func TestSetLogLevel(t *testing.T) {
	ts := newTestServer(t, &Options{})

	put := func(level string) int {
		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/logs/levels/blink",
			strings.NewReader(fmt.Sprintf(`{"level":%q}`, level)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := put("debug"); code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
	if !logging.GetLogger("blink").Enabled(t.Context(), -4) {
		t.Error("expected blink debug logging to be enabled")
	}
	if code := put("loud"); code < 400 || code >= 500 {
		t.Errorf("status = %d, want a client error", code)
	}
	logging.SetModuleLevel("blink", "info")
}

func TestBasicAuth(t *testing.T) {
	ts := newTestServer(t, &Options{AuthUsername: "admin", AuthPassword: "secret", Strategy: "mutex"})

	resp, err := http.Get(ts.URL + "/api/guard")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/guard", nil)
	req.SetBasicAuth("admin", "secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	// Health stays public.
	resp, err = http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
}

func TestMetricsHandlerMounted(t *testing.T) {
	called := false
	ts := newTestServer(t, &Options{
		PrometheusHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}),
	})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if !called {
		t.Error("expected prometheus handler to be called")
	}
}

func TestSSEStreamsLEDEvents(t *testing.T) {
	bus := events.New()
	defer bus.Close()

	ts := newTestServer(t, &Options{AuthUsername: "test", AuthPassword: "test", EventBus: bus})

	credentials := base64.StdEncoding.EncodeToString([]byte("test:test"))
	resp, err := http.Get(fmt.Sprintf("%s/api/events?auth=%s", ts.URL, credentials))
	if err != nil {
		t.Fatalf("Failed to connect to SSE: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("Expected SSE content type, got %s", resp.Header.Get("Content-Type"))
	}

	messages := make(chan string, 10)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data:") {
				messages <- line
			}
		}
	}()

	select {
	case msg := <-messages:
		if !strings.Contains(msg, "SSE connection established") {
			t.Errorf("Expected connection message, got: %s", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for initial SSE message")
	}

	bus.Publish(events.LEDChangedEvent{Task: "green", Channel: "green", On: true, Timestamp: time.Now()})

	select {
	case msg := <-messages:
		if !strings.Contains(msg, `"channel":"green"`) {
			t.Errorf("Expected LED event, got: %s", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for LED event")
	}
}
