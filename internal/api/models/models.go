// Package models holds the request and response bodies of the status API.
package models

import "time"

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.0.0" doc:"Release version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Source revision"`
	BuildDate string `json:"build_date" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go runtime version"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"OS and architecture"`
	Strategy  string `json:"strategy" example:"mutex" doc:"Guard strategy compiled into this binary"`
}

type VersionResponse struct {
	Body VersionData
}

// LED models
type LEDChannel struct {
	Channel   string    `json:"channel" example:"red" doc:"LED channel"`
	On        bool      `json:"on" doc:"Last written level"`
	Level     string    `json:"level" example:"ON" doc:"Last written level as ON or OFF"`
	Task      string    `json:"task,omitempty" example:"red" doc:"Task that last touched the channel"`
	Changes   uint64    `json:"changes" doc:"Successful mutations"`
	Errors    uint64    `json:"errors" doc:"Rejected mutations"`
	LastError string    `json:"last_error,omitempty" doc:"Most recent hardware error"`
	UpdatedAt time.Time `json:"updated_at" doc:"Time of the last successful mutation"`
}

type LEDsData struct {
	Backend  string       `json:"backend" example:"sysfs" doc:"Active LED backend"`
	Channels []LEDChannel `json:"channels" doc:"Per-channel status"`
}

type LEDsResponse struct {
	Body LEDsData
}

// Task models
type TaskData struct {
	Name      string    `json:"name" example:"red" doc:"Task name"`
	Channel   string    `json:"channel" example:"red" doc:"Channel the task drives"`
	PeriodMs  int64     `json:"period_ms" example:"500" doc:"Delay between mutations"`
	State     string    `json:"state" example:"running" doc:"Supervisor state"`
	StartedAt time.Time `json:"started_at,omitempty" doc:"Start time"`
	LastError string    `json:"last_error,omitempty" doc:"Error that stopped the task"`
}

type TasksData struct {
	Tasks []TaskData `json:"tasks"`
}

type TasksResponse struct {
	Body TasksData
}

// Guard models
type GuardData struct {
	Strategy     string  `json:"strategy" example:"mutex" doc:"mutex or semaphore"`
	Acquisitions uint64  `json:"acquisitions" doc:"Completed acquisitions"`
	Releases     uint64  `json:"releases" doc:"Completed releases"`
	AvgWaitMs    float64 `json:"avg_wait_ms" doc:"Mean time blocked before acquiring"`
	MaxWaitMs    float64 `json:"max_wait_ms" doc:"Longest time blocked before acquiring"`
	AvgHoldMs    float64 `json:"avg_hold_ms" doc:"Mean critical section length"`
	MaxHoldMs    float64 `json:"max_hold_ms" doc:"Longest critical section"`
}

type GuardResponse struct {
	Body GuardData
}

// Log models
type LogsRequest struct {
	Limit  int    `query:"limit" minimum:"0" maximum:"500" default:"100" doc:"Newest entries to return"`
	Module string `query:"module" doc:"Only entries from this module"`
}

type LogEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level" example:"INFO"`
	Module     string         `json:"module,omitempty" example:"blink"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type LogsData struct {
	Entries []LogEntry `json:"entries"`
	Count   int        `json:"count"`
}

type LogsResponse struct {
	Body LogsData
}

type LogLevelRequest struct {
	Module string `path:"module" example:"blink" doc:"Logger module"`
	Body   struct {
		Level string `json:"level" enum:"debug,info,warn,error" doc:"New level"`
	}
}

type LogLevelData struct {
	Module string `json:"module"`
	Level  string `json:"level"`
}

type LogLevelResponse struct {
	Body LogLevelData
}

// SSE models
type ConnectedEvent struct {
	Message   string    `json:"message" example:"SSE connection established"`
	Timestamp time.Time `json:"timestamp"`
}
