package led

import (
	"errors"
	"testing"
	"time"

	"github.com/smazurov/ledsync/internal/clock"
)

func TestNewBackends(t *testing.T) {
	fc := clock.NewFake()

	tests := []struct {
		name    string
		opts    Options
		check   func(Controller) bool
		wantErr error
	}{
		{
			name:  "sim",
			opts:  Options{Backend: BackendSim},
			check: func(c Controller) bool { _, ok := c.(*Memory); return ok },
		},
		{
			name:  "noop",
			opts:  Options{Backend: "NOOP"},
			check: func(c Controller) bool { _, ok := c.(*noop); return ok },
		},
		{
			name:  "sysfs",
			opts:  Options{Backend: BackendSysfs, RedName: "r", GreenName: "g"},
			check: func(c Controller) bool { _, ok := c.(*sysfs); return ok },
		},
		{
			name:  "auto falls back to sim",
			opts:  Options{SysfsRoot: t.TempDir(), RedName: "missing:red", GreenName: "missing:green"},
			check: func(c Controller) bool { _, ok := c.(*Memory); return ok },
		},
		{
			name:    "unknown",
			opts:    Options{Backend: "laser"},
			wantErr: ErrUnknownBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, err := New(tt.opts, fc, testLogger())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if !tt.check(ctrl) {
				t.Errorf("New() returned %T", ctrl)
			}
		})
	}
}

func TestNewAutoPrefersSysfs(t *testing.T) {
	root := makeSysfsTree(t, "rgb:red", "rgb:green")
	ctrl, err := New(Options{SysfsRoot: root, RedName: "rgb:red", GreenName: "rgb:green"}, clock.NewFake(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ctrl.(*sysfs); !ok {
		t.Errorf("auto backend returned %T, want sysfs", ctrl)
	}
}

func TestDetectBoard(t *testing.T) {
	if model := detectBoard(); model == "" {
		t.Error("detectBoard() returned empty string")
	}
}

func TestBackendOf(t *testing.T) {
	fc := clock.NewFake()
	tests := []struct {
		ctrl Controller
		want string
	}{
		{NewMemory(fc), BackendSim},
		{newNoop(testLogger()), BackendNoop},
		{newSysfs(t.TempDir(), nil), BackendSysfs},
		{newGPIOPins(nil), BackendGPIO},
	}
	for _, tt := range tests {
		if got := BackendOf(tt.ctrl); got != tt.want {
			t.Errorf("BackendOf(%T) = %q, want %q", tt.ctrl, got, tt.want)
		}
	}
}

func TestSortEntries(t *testing.T) {
	entries := []Entry{
		{At: 300 * time.Millisecond, Channel: Green},
		{At: 0, Channel: Red},
		{At: 0, Channel: Green, On: true},
	}
	SortEntries(entries)
	if got := FormatLog(entries); got != "[t=0,green,ON][t=0,red,OFF][t=300,green,OFF]" {
		t.Errorf("unexpected order: %s", got)
	}
}

func TestSortEntriesTiesFollowOrder(t *testing.T) {
	entries := []Entry{
		{At: 500 * time.Millisecond, Channel: Green},
		{At: 0, Channel: Green, On: true},
		{At: 0, Channel: Red, On: true},
		{At: 500 * time.Millisecond, Channel: Red},
	}
	SortEntries(entries, Red, Green)
	want := "[t=0,red,ON][t=0,green,ON][t=500,red,OFF][t=500,green,OFF]"
	if got := FormatLog(entries); got != want {
		t.Errorf("log = %s, want %s", got, want)
	}

	SortEntries(entries, Green)
	want = "[t=0,green,ON][t=0,red,ON][t=500,green,OFF][t=500,red,OFF]"
	if got := FormatLog(entries); got != want {
		t.Errorf("partial order: log = %s, want %s", got, want)
	}
}
