package nats

import (
	"encoding/json"
	"fmt"
)

// Subject prefixes for NATS topics.
const (
	SubjectLEDsPrefix  = "ledsync.leds"
	SubjectTasksPrefix = "ledsync.tasks"
)

// SubjectLED returns the NATS subject for a channel's level changes.
func SubjectLED(channel string) string {
	return fmt.Sprintf("%s.%s", SubjectLEDsPrefix, channel)
}

// SubjectTaskState returns the NATS subject for task state changes.
func SubjectTaskState(task string) string {
	return fmt.Sprintf("%s.%s.state", SubjectTasksPrefix, task)
}

// LEDMessage represents one LED mutation sent over NATS.
type LEDMessage struct {
	Task      string `json:"task"`
	Channel   string `json:"channel"`
	Level     string `json:"level"` // ON, OFF
	Timestamp string `json:"timestamp"`
}

// Marshal serializes the message to JSON.
func (m LEDMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// TaskStateMessage represents a task lifecycle change sent over NATS.
type TaskStateMessage struct {
	Task      string `json:"task"`
	OldState  string `json:"old_state"`
	NewState  string `json:"new_state"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Marshal serializes the message to JSON.
func (m TaskStateMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalLED deserializes an LEDMessage from JSON.
func UnmarshalLED(data []byte) (LEDMessage, error) {
	var m LEDMessage
	err := json.Unmarshal(data, &m)
	return m, err
}

// UnmarshalTaskState deserializes a TaskStateMessage from JSON.
func UnmarshalTaskState(data []byte) (TaskStateMessage, error) {
	var m TaskStateMessage
	err := json.Unmarshal(data, &m)
	return m, err
}
