// Package logging provides structured logging with per-module log levels.
//
// Records are routed automatically:
//   - to the systemd journal when journald is reachable
//   - to stdout when a terminal, pipe, socket or file is attached
//   - always to an in-memory ring buffer served by the status API
//
// Initialize once at startup, then fetch module loggers:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"blink": "debug",
//			"guard": "warn",
//		},
//	})
//
//	logger := logging.GetLogger("blink").With("task", "red")
//	logger.Info("Task started", "period", period)
//
// Module levels live in slog.LevelVar values, so loggers handed out before
// Initialize (or before a config reload through SetModuleLevel) pick up the
// new level without being recreated.
//
// Journal fields are upper-cased attribute keys:
//
//	journalctl -t ledsync MODULE=blink
//	journalctl -t ledsync TASK=green -f
//
// Example TOML:
//
//	[logging]
//	level = "info"
//	format = "text"
//	blink = "debug"
package logging
