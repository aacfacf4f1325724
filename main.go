package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/ledsync/cmd"
	"github.com/smazurov/ledsync/internal/api"
	"github.com/smazurov/ledsync/internal/blink"
	"github.com/smazurov/ledsync/internal/clock"
	"github.com/smazurov/ledsync/internal/config"
	"github.com/smazurov/ledsync/internal/console"
	"github.com/smazurov/ledsync/internal/events"
	"github.com/smazurov/ledsync/internal/guard"
	"github.com/smazurov/ledsync/internal/led"
	"github.com/smazurov/ledsync/internal/logging"
	"github.com/smazurov/ledsync/internal/metrics"
	"github.com/smazurov/ledsync/internal/metrics/exporters"
	"github.com/smazurov/ledsync/internal/nats"
	"github.com/smazurov/ledsync/internal/supervisor"
	"github.com/smazurov/ledsync/internal/systemd"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"ledsync.toml"`

	// Task settings
	RedPeriodMs   int `help:"Red task period in milliseconds" default:"500" toml:"tasks.red_period_ms" env:"TASKS_RED_PERIOD_MS"`
	GreenPeriodMs int `help:"Green task period in milliseconds" default:"300" toml:"tasks.green_period_ms" env:"TASKS_GREEN_PERIOD_MS"`

	// LED settings
	LedBackend   string `help:"LED backend (auto, sysfs, gpio, sim, noop)" default:"auto" toml:"led.backend" env:"LED_BACKEND"`
	LedRedName   string `help:"sysfs name of the red LED" default:"rgb:red" toml:"led.red_name" env:"LED_RED_NAME"`
	LedGreenName string `help:"sysfs name of the green LED" default:"rgb:green" toml:"led.green_name" env:"LED_GREEN_NAME"`
	LedRedPin    string `help:"GPIO line of the red LED" default:"" toml:"led.red_pin" env:"LED_RED_PIN"`
	LedGreenPin  string `help:"GPIO line of the green LED" default:"" toml:"led.green_pin" env:"LED_GREEN_PIN"`

	// Server settings
	Port       string `help:"Status API address, empty to disable" short:"p" default:"" toml:"server.port" env:"SERVER_PORT"`
	CorsOrigin string `help:"Origin allowed to call the status API" default:"*" toml:"server.cors_origin" env:"SERVER_CORS_ORIGIN"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// NATS settings
	NatsURL          string `help:"NATS server URL, empty to disable" default:"" toml:"nats.url" env:"NATS_URL"`
	NatsEmbeddedPort int    `help:"Run an embedded NATS server on this port, 0 to disable" default:"0" toml:"nats.embedded_port" env:"NATS_EMBEDDED_PORT"`

	// Console settings
	ConsoleEnabled bool `help:"Echo every LED mutation to stdout" default:"false" toml:"console.enabled" env:"CONSOLE_ENABLED"`

	// Logging settings
	LoggingLevel      string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat     string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingGuard      string `help:"Guard logging level" default:"info" toml:"logging.guard" env:"LOGGING_GUARD"`
	LoggingBlink      string `help:"Task machine logging level" default:"info" toml:"logging.blink" env:"LOGGING_BLINK"`
	LoggingLed        string `help:"LED backend logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingSupervisor string `help:"Supervisor logging level" default:"info" toml:"logging.supervisor" env:"LOGGING_SUPERVISOR"`
	LoggingAPI        string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingNats       string `help:"NATS logging level" default:"info" toml:"logging.nats" env:"LOGGING_NATS"`
	LoggingConfig     string `help:"Config watcher logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
}

func (o *Options) tasks() []blink.Config {
	return []blink.Config{
		{Name: "red", Channel: led.Red, Period: time.Duration(o.RedPeriodMs) * time.Millisecond},
		{Name: "green", Channel: led.Green, Period: time.Duration(o.GreenPeriodMs) * time.Millisecond},
	}
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"guard":      opts.LoggingGuard,
				"blink":      opts.LoggingBlink,
				"led":        opts.LoggingLed,
				"supervisor": opts.LoggingSupervisor,
				"api":        opts.LoggingAPI,
				"http":       opts.LoggingAPI,
				"nats":       opts.LoggingNats,
				"config":     opts.LoggingConfig,
			},
		})

		svc := &service{opts: opts, logger: logging.GetLogger("main")}

		hooks.OnStart(func() {
			if err := svc.start(); err != nil {
				svc.logger.Error("Failed to start", "error", err)
				os.Exit(1)
			}
			if err := svc.wait(); err != nil {
				svc.logger.Error("Task failed", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(svc.stop)
	})

	cli.Root().Use = "ledsync"
	cli.Root().Short = "Two guarded task machines blinking an RGB LED"
	cli.Root().AddCommand(cmd.CreateTraceCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	cli.Run()
}

// service holds the running components between the start and stop hooks.
type service struct {
	opts   *Options
	logger *slog.Logger

	bus        *events.Bus
	monitor    *led.Monitor
	sup        *supervisor.Supervisor
	server     *api.Server
	natsServer *nats.Server
	publisher  *nats.Publisher
	watcher    *config.Watcher[logging.Config]
	notifier   *systemd.Notifier
	cancel     context.CancelFunc
	unsubs     []func()
}

func (s *service) start() error {
	opts := s.opts
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	g, err := guard.New(guard.WithObserver(metrics.GuardObserver{}))
	if err != nil {
		return fmt.Errorf("guard init: %w", err)
	}
	logging.GetLogger("guard").Info("Guard ready", "strategy", g.Strategy())

	clk := clock.Real()
	ctrl, err := led.New(led.Options{
		Backend:   opts.LedBackend,
		RedName:   opts.LedRedName,
		GreenName: opts.LedGreenName,
		RedPin:    opts.LedRedPin,
		GreenPin:  opts.LedGreenPin,
	}, clk, logging.GetLogger("led"))
	if err != nil {
		return fmt.Errorf("led init: %w", err)
	}

	s.bus = events.New()
	s.unsubs = append(s.unsubs, metrics.Subscribe(s.bus))

	s.monitor = led.NewMonitor(ctrl.Available()...)
	s.monitor.Attach(s.bus)

	if opts.ConsoleEnabled {
		start := clk.Now()
		s.unsubs = append(s.unsubs, s.bus.Subscribe(func(e events.LEDChangedEvent) {
			_, _ = console.Printf("[t=%d,%s,%s]\n", e.Timestamp.Sub(start).Milliseconds(), e.Channel, led.LevelString(e.On))
		}))
	}

	s.sup = supervisor.New(&supervisor.Options{
		OnStateChange: supervisor.PublishStateChanges(s.bus),
		Logger:        logging.GetLogger("supervisor"),
	})
	tasks := opts.tasks()
	for _, cfg := range tasks {
		m, err := blink.New(cfg, g, ctrl, clk,
			blink.WithLogger(logging.GetLogger("blink")),
			blink.WithEventBus(s.bus))
		if err != nil {
			return err
		}
		if err := s.sup.Add(m); err != nil {
			return err
		}
	}

	s.startNATS()
	s.startConfigWatcher()

	if opts.Port != "" {
		s.server = api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			CORSOrigin:        opts.CorsOrigin,
			Backend:           led.BackendOf(ctrl),
			Strategy:          g.Strategy(),
			Monitor:           s.monitor,
			Tasks:             tasks,
			Supervisor:        s.sup,
			EventBus:          s.bus,
			PrometheusHandler: exporters.HTTPHandler(logging.GetLogger("api")),
		})
		go func() {
			if err := s.server.Start(opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("HTTP server failed", "error", err)
			}
		}()
	}

	if err := s.sup.Start(ctx); err != nil {
		return err
	}

	s.notifier = systemd.NewNotifier(s.logger)
	s.notifier.Ready()
	s.notifier.Status(fmt.Sprintf("red %dms, green %dms, guard %s", opts.RedPeriodMs, opts.GreenPeriodMs, g.Strategy()))
	go s.notifier.Watchdog(ctx)

	s.logger.Info("ledsync running",
		"backend", led.BackendOf(ctrl),
		"strategy", g.Strategy(),
		"red_period_ms", opts.RedPeriodMs,
		"green_period_ms", opts.GreenPeriodMs)
	return nil
}

func (s *service) startNATS() {
	logger := logging.GetLogger("nats")
	url := s.opts.NatsURL

	if s.opts.NatsEmbeddedPort > 0 {
		s.natsServer = nats.NewServer(nats.ServerOptions{Port: s.opts.NatsEmbeddedPort, Logger: logger})
		if err := s.natsServer.Start(); err != nil {
			logger.Warn("Embedded NATS server unavailable", "error", err)
			s.natsServer = nil
		} else if url == "" {
			url = s.natsServer.ClientURL()
		}
	}

	if url == "" {
		return
	}
	s.publisher = nats.NewPublisher(url, s.bus, logger)
	if err := s.publisher.Start(); err != nil {
		s.publisher = nil
	}
}

func (s *service) startConfigWatcher() {
	if _, err := os.Stat(s.opts.Config); err != nil {
		return
	}
	w, err := config.WatchLogging(s.opts.Config, logging.GetLogger("config"))
	if err != nil {
		s.logger.Warn("Config watcher unavailable", "error", err)
		return
	}
	s.watcher = w
}

func (s *service) wait() error {
	return s.sup.Wait()
}

func (s *service) stop() {
	s.logger.Info("Shutting down")
	if s.notifier != nil {
		s.notifier.Stopping()
	}

	if s.server != nil {
		if err := s.server.Stop(); err != nil {
			s.logger.Error("Error stopping HTTP server", "error", err)
		}
	}
	if s.sup != nil {
		s.sup.StopAll()
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.watcher != nil {
		_ = s.watcher.Stop()
	}
	if s.publisher != nil {
		s.publisher.Stop()
	}
	if s.natsServer != nil {
		s.natsServer.Stop()
	}
	for _, unsub := range s.unsubs {
		unsub()
	}
	if s.monitor != nil {
		s.monitor.Detach()
	}
	if s.bus != nil {
		_ = s.bus.Close()
	}
}
