// Package nats mirrors LED and task events onto NATS subjects so external
// tools can watch the blink pattern without touching the process.
//
// # Architecture
//
//   - Server: optional embedded NATS server (nats.embedded_port)
//   - Publisher: subscribes to the event bus and publishes to NATS
//
// # Subject Hierarchy
//
//	ledsync.leds.{channel}      # LED level after each guarded mutation
//	ledsync.tasks.{task}.state  # Supervisor state transitions
//
// Messaging is fire-and-forget (core NATS, no JetStream). The publisher
// degrades to a no-op while NATS is unreachable; the task machines never
// wait on it.
//
// # Debugging with nats CLI
//
// Watch every channel:
//
//	nats sub "ledsync.leds.>"
//
// Watch task lifecycle:
//
//	nats sub "ledsync.tasks.*.state" | jq .
//
// # Message Formats
//
// LEDMessage (ledsync.leds.{channel}):
//
//	{
//	  "task": "red",
//	  "channel": "red",
//	  "level": "ON",
//	  "timestamp": "2024-01-01T12:00:00.5Z"
//	}
//
// TaskStateMessage (ledsync.tasks.{task}.state):
//
//	{
//	  "task": "green",
//	  "old_state": "idle",
//	  "new_state": "running",
//	  "timestamp": "2024-01-01T12:00:00Z"
//	}
package nats
