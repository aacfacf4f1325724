package led

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/smazurov/ledsync/internal/clock"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown LED backend")

// Backend names accepted by New.
const (
	BackendAuto  = "auto"
	BackendSysfs = "sysfs"
	BackendGPIO  = "gpio"
	BackendSim   = "sim"
	BackendNoop  = "noop"
)

// Options selects and configures the LED backend.
type Options struct {
	Backend   string
	SysfsRoot string // defaults to /sys/class/leds
	RedName   string // sysfs LED name of the red channel
	GreenName string
	RedPin    string // GPIO line of the red channel
	GreenPin  string
}

// New creates the controller for the configured backend. The auto backend
// uses sysfs when both named LEDs exist and otherwise falls back to the
// simulator so the tasks still run on a development machine.
func New(opts Options, clk clock.Clock, logger *slog.Logger) (Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backend := strings.ToLower(opts.Backend)
	if backend == "" {
		backend = BackendAuto
	}

	switch backend {
	case BackendAuto:
		model := detectBoard()
		s := newSysfs(opts.SysfsRoot, sysfsNames(opts))
		if s.present() {
			logger.Info("Using sysfs LED controller", "board_model", model, "red", opts.RedName, "green", opts.GreenName)
			return s, nil
		}
		logger.Info("No RGB LED found, using simulated LED", "board_model", model)
		return NewMemory(clk), nil

	case BackendSysfs:
		return newSysfs(opts.SysfsRoot, sysfsNames(opts)), nil

	case BackendGPIO:
		return newGPIO(map[Channel]string{Red: opts.RedPin, Green: opts.GreenPin})

	case BackendSim:
		return NewMemory(clk), nil

	case BackendNoop:
		return newNoop(logger), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

func sysfsNames(opts Options) map[Channel]string {
	return map[Channel]string{Red: opts.RedName, Green: opts.GreenName}
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}
	return strings.TrimRight(string(data), "\x00")
}

// BackendOf names the backend behind a controller returned by New.
func BackendOf(c Controller) string {
	switch c.(type) {
	case *sysfs:
		return BackendSysfs
	case *gpioLEDs:
		return BackendGPIO
	case *Memory:
		return BackendSim
	case *noop:
		return BackendNoop
	default:
		return "custom"
	}
}
