package devicesync

import (
	"time"

	"device-sync/feature/devicesync/store"
)

// Config holds the reconciliation engine's tuning knobs.
type Config struct {
	// Enabled turns the device-sync feature on or off.
	Enabled bool `mapstructure:"enabled" default:"true"`

	// BatchSize is the number of documents per bulk write.
	BatchSize int `mapstructure:"batch_size" default:"100"`

	// MaxRetryAttempts bounds retries of individual throttled writes.
	MaxRetryAttempts int `mapstructure:"max_retry_attempts" default:"5"`

	// RetryBaseDelayMs is the initial backoff delay in milliseconds,
	// doubled on every retry.
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" default:"100"`

	// ScheduleHours is the interval between scheduled runs.
	ScheduleHours int `mapstructure:"schedule_hours" default:"6"`

	// ScheduleEnabled turns the background scheduler on or off.
	ScheduleEnabled bool `mapstructure:"schedule_enabled" default:"true"`
}

// StoreConfig derives the store's batching and retry policy.
func (c Config) StoreConfig() store.Config {
	return store.Config{
		BatchSize:        c.BatchSize,
		MaxRetryAttempts: c.MaxRetryAttempts,
		RetryBaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
	}
}

// ScheduleInterval is the configured gap between scheduled runs.
func (c Config) ScheduleInterval() time.Duration {
	return time.Duration(c.ScheduleHours) * time.Hour
}
