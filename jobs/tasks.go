package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskQuotationsReround rewrites quotations stored with legacy rounding.
	TaskQuotationsReround = "quotations:reround"
	// TaskSettingsWarmup reloads the settings cache.
	TaskSettingsWarmup = "settings:warmup"
)

// ReroundPayload bounds one re-rounding run. A zero Limit uses the job default.
type ReroundPayload struct {
	Limit int `json:"limit"`
}

// NewReroundTask constructs a re-rounding task.
func NewReroundTask(limit int) (*asynq.Task, error) {
	data, err := json.Marshal(ReroundPayload{Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuotationsReround, data), nil
}

// SettingsWarmupPayload controls a settings warmup. Invalidate drops every
// instance's copy before reloading.
type SettingsWarmupPayload struct {
	Invalidate bool `json:"invalidate"`
}

// NewSettingsWarmupTask constructs a settings warmup task.
func NewSettingsWarmupTask(invalidate bool) (*asynq.Task, error) {
	data, err := json.Marshal(SettingsWarmupPayload{Invalidate: invalidate})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSettingsWarmup, data), nil
}

// decodePayload treats an empty payload as the zero value.
func decodePayload(data []byte, target any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return asynq.SkipRetry
	}
	return nil
}
