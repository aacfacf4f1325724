package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/ledsync/internal/blink"
	"github.com/smazurov/ledsync/internal/clock"
	"github.com/smazurov/ledsync/internal/console"
	"github.com/smazurov/ledsync/internal/guard"
	"github.com/smazurov/ledsync/internal/led"
	"github.com/smazurov/ledsync/internal/supervisor"
)

const traceDriveTimeout = 30 * time.Second

// TraceOptions configures a virtual-time run.
type TraceOptions struct {
	Tasks    []blink.Config
	Duration time.Duration
	Logger   *slog.Logger
}

// RunTrace runs the task machines against a simulated LED on a virtual clock
// for opts.Duration and returns the mutation log in time order.
func RunTrace(ctx context.Context, opts TraceOptions) ([]led.Entry, error) {
	if len(opts.Tasks) == 0 {
		return nil, fmt.Errorf("trace: no tasks")
	}
	if opts.Duration < 0 {
		return nil, fmt.Errorf("trace: negative duration %s", opts.Duration)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	for _, cfg := range opts.Tasks {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	fc := clock.NewFake()
	mem := led.NewMemory(fc, led.WithLogLimit(traceLogSize(opts.Tasks, opts.Duration)))
	g, err := guard.New()
	if err != nil {
		return nil, fmt.Errorf("trace: guard: %w", err)
	}

	sup := supervisor.New(&supervisor.Options{Logger: logger})
	tick := time.Duration(0)
	order := make([]led.Channel, 0, len(opts.Tasks))
	for _, cfg := range opts.Tasks {
		order = append(order, cfg.Channel)
		m, err := blink.New(cfg, g, mem, fc, blink.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := sup.Add(m); err != nil {
			return nil, err
		}
		tick = gcd(tick, cfg.Period)
	}

	if err := sup.Start(ctx); err != nil {
		return nil, err
	}

	driveCtx, cancel := context.WithTimeout(ctx, traceDriveTimeout)
	defer cancel()
	driveErr := fc.Drive(driveCtx, len(opts.Tasks), tick, opts.Duration)

	sup.StopAll()
	if err := sup.Wait(); err != nil {
		return nil, err
	}
	if driveErr != nil {
		return nil, fmt.Errorf("trace: %w", driveErr)
	}

	if dropped := mem.Dropped(); dropped > 0 {
		return nil, fmt.Errorf("trace: mutation log overflowed, %d entries lost", dropped)
	}

	entries := mem.Entries()
	led.SortEntries(entries, order...)
	return entries, nil
}

// traceLogSize is the number of mutations the tasks make in [0, d]: one at
// t=0 and one per elapsed period.
func traceLogSize(tasks []blink.Config, d time.Duration) int {
	n := 0
	for _, cfg := range tasks {
		n += int(d/cfg.Period) + 1
	}
	return n
}

func gcd(a, b time.Duration) time.Duration {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// CreateTraceCmd creates the trace command.
func CreateTraceCmd() *cobra.Command {
	var duration, redPeriod, greenPeriod time.Duration
	var perLine bool

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the LED mutation log of a virtual-time run",
		Long: `Runs the red and green task machines against a simulated LED on a virtual clock ` +
			`and prints every guarded mutation as [t=<ms>,<channel>,<ON|OFF>]. No hardware is touched.`,
		RunE: func(c *cobra.Command, _ []string) error {
			entries, err := RunTrace(c.Context(), TraceOptions{
				Tasks: []blink.Config{
					{Name: "red", Channel: led.Red, Period: redPeriod},
					{Name: "green", Channel: led.Green, Period: greenPeriod},
				},
				Duration: duration,
			})
			if err != nil {
				return err
			}

			if perLine {
				for _, e := range entries {
					_, _ = console.Printf("%s\n", e)
				}
				return nil
			}
			_, _ = console.Printf("%s\n", led.FormatLog(entries))
			return nil
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 1500*time.Millisecond, "Virtual time to simulate")
	cmd.Flags().DurationVar(&redPeriod, "red-period", 500*time.Millisecond, "Red task period")
	cmd.Flags().DurationVar(&greenPeriod, "green-period", 300*time.Millisecond, "Green task period")
	cmd.Flags().BoolVar(&perLine, "lines", false, "Print one mutation per line")
	return cmd
}
