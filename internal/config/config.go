// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New(ctx) to build a Config with defaults.
//   - Interval and timeout keys are integers in milliseconds (suffix _ms).
//   - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"runtime"
	"time"
)

// DefaultStatKeys lists the statistic keys a card displays, in grid order.
var DefaultStatKeys = []string{ //nolint:gochecknoglobals // read-only defaults
	"ballPossession",
	"expectedGoals",
	"bigChanceCreated",
	"totalShotsOnGoal",
	"shotsOnGoal",
	"cornerKicks",
	"fouls",
	"yellowCards",
	"redCards",
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BaseURL is the upstream API root, without a trailing slash.
	BaseURL string `koanf:"base_url" validate:"required,url"`
	// UpstreamHost and APIKey enable the relay header variant when set.
	UpstreamHost string `koanf:"upstream_host"`
	APIKey       string `koanf:"api_key"`
	// UpstreamTimeoutMS bounds a single upstream request.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms" validate:"gt=0"`

	// ScoresIntervalMS and StatsIntervalMS drive the two reconciliation tasks.
	ScoresIntervalMS int `koanf:"scores_interval_ms" validate:"gt=0"`
	StatsIntervalMS  int `koanf:"stats_interval_ms" validate:"gt=0"`

	// WidgetURL is the embedded widget template; %d is replaced by the match ID.
	WidgetURL string `koanf:"widget_url" validate:"required,contains=%d"`

	// CardBatchSize caps cards created per render or LoadMore call. Zero means all.
	CardBatchSize int `koanf:"card_batch_size" validate:"gte=0"`
	// AutoAddCards creates cards for new qualifying matches on every scores tick.
	AutoAddCards bool `koanf:"auto_add_cards"`
	// RequireStatistics and RequireHeatmap decide which matches qualify for a card.
	RequireStatistics bool `koanf:"require_statistics"`
	RequireHeatmap    bool `koanf:"require_heatmap"`
	// StatKeys lists the statistic keys shown on each card.
	StatKeys []string `koanf:"stat_keys" validate:"min=1,dive,required"`

	// WorkerCount sets the number of stats workers.
	WorkerCount int `koanf:"worker_count" validate:"gt=0"`
	// QueueSize bounds the stats job queue.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`
	// DedupeSize bounds the new-match tracker.
	DedupeSize int `koanf:"dedupe_size" validate:"gt=0"`

	// WSBroadcastBuffer bounds the card events queued for WebSocket clients.
	WSBroadcastBuffer int `koanf:"ws_broadcast_buffer" validate:"gt=0"`

	// RedisURL enables the card event stream when set.
	RedisURL    string `koanf:"redis_url" validate:"omitempty,url"`
	RedisStream string `koanf:"redis_stream" validate:"required_with=RedisURL"`

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// New creates a Config holding defaults. Context is accepted first to
// satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		BaseURL:           "https://www.sofascore.com/api/v1",
		UpstreamTimeoutMS: 10_000,
		ScoresIntervalMS:  5_000,
		StatsIntervalMS:   30_000,
		WidgetURL:         "https://widgets.sofascore.com/embed/attackMomentum?id=%d&widgetBackground=Gray&v=2",
		CardBatchSize:     10,
		AutoAddCards:      false,
		RequireStatistics: true,
		RequireHeatmap:    false,
		StatKeys:          append([]string(nil), DefaultStatKeys...),
		WorkerCount:       runtime.NumCPU(),
		QueueSize:         1_024,
		DedupeSize:        10_000,
		WSBroadcastBuffer: 1_000,
		RedisStream:       "matchboard:cards",
		CORSOrigins:       []string{"*"},
	}
}

// UpstreamTimeout returns UpstreamTimeoutMS as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// ScoresInterval returns ScoresIntervalMS as a duration.
func (c *Config) ScoresInterval() time.Duration {
	return time.Duration(c.ScoresIntervalMS) * time.Millisecond
}

// StatsInterval returns StatsIntervalMS as a duration.
func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalMS) * time.Millisecond
}
