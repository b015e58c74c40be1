// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error kinds.
package config

import (
	"runtime"
	"time"

	"github.com/lmduc2309/english-music-app/internal/domain/pitch"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory frame queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of render workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many frame ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// BarCount and BarHeight are the default visualizer geometry.
	BarCount  int     `koanf:"bar_count"`
	BarHeight float64 `koanf:"bar_height"`

	// FloorHeight keeps silent bars visible.
	FloorHeight float64 `koanf:"floor_height"`

	// ClampHeights clamps pitch values to [0,100] before mapping heights.
	ClampHeights bool `koanf:"clamp_heights"`

	// MaxBarCount caps per-request bar counts.
	MaxBarCount int `koanf:"max_bar_count"`

	// MaxSamples caps the length of submitted pitch series.
	MaxSamples int `koanf:"max_samples"`

	// SessionTTLSeconds expires idle sessions; 0 keeps them forever.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU() * 2,
		DedupeSize:        50_000,
		BarCount:          pitch.DefaultBarCount,
		BarHeight:         pitch.DefaultHeight,
		FloorHeight:       pitch.DefaultFloorHeight,
		ClampHeights:      true,
		MaxBarCount:       200,
		MaxSamples:        4096,
		SessionTTLSeconds: 600,
	}
}

// SessionTTL returns SessionTTLSeconds as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}
