package config

import "time"

// TickConfig holds the sweep scheduling configuration. The daemon owns
// the interval; the engine itself never self-schedules.
type TickConfig struct {
	// Interval between sweeps
	Interval time.Duration `mapstructure:"interval" validate:"min=1s"`

	// MaxPerSecond caps how fast sweeps may run even when the
	// interval is set aggressively low
	MaxPerSecond float64 `mapstructure:"max_per_second" validate:"gt=0"`
}

// MetricsConfig holds the Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Level: "debug", "info", "warn" or "error"
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}
