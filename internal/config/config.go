// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package config

import (
	"fmt"
	"time"
)

// Config is the complete runtime configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Queue      QueueConfig      `koanf:"queue"`
	Labeling   LabelingConfig   `koanf:"labeling"`
	Translator TranslatorConfig `koanf:"translator"`
	Streaks    StreaksConfig    `koanf:"streaks"`
	API        APIConfig        `koanf:"api"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"` // 0 = use runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
	SeedMockData           bool   `koanf:"seed_mock_data"`
}

// QueueConfig configures the in-process message router that drives
// asynchronous label processing and reconciliation.
type QueueConfig struct {
	OutputBufferSize     int           `koanf:"output_buffer_size"`
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	PoisonQueueEnabled   bool          `koanf:"poison_queue_enabled"`
	PoisonQueueTopic     string        `koanf:"poison_queue_topic"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// LabelingConfig configures content label enrichment: external metadata
// lookups and LLM-backed language detection.
type LabelingConfig struct {
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// YouTube oEmbed lookups.
	YouTubeOEmbedURL    string  `koanf:"youtube_oembed_url"`
	YouTubeRatePerSec   float64 `koanf:"youtube_rate_per_sec"`
	YouTubeRateBurst    int     `koanf:"youtube_rate_burst"`
	BreakerMaxRequests  uint32  `koanf:"breaker_max_requests"`
	BreakerFailureRatio float64 `koanf:"breaker_failure_ratio"`

	// Language detection via an OpenAI-compatible API. Detection is
	// skipped (labels complete without a language) when no API key is set
	// and the source carries its own language metadata.
	LLMAPIKey  string `koanf:"llm_api_key"`
	LLMBaseURL string `koanf:"llm_base_url"`
	LLMModel   string `koanf:"llm_model"`

	// Detection-result cache.
	CachePath string        `koanf:"cache_path"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// TranslatorConfig configures the batch session reconstructor.
type TranslatorConfig struct {
	Enabled          bool          `koanf:"enabled"`
	Interval         time.Duration `koanf:"interval"`
	EventLimit       int           `koanf:"event_limit"`
	ExecutionTimeout time.Duration `koanf:"execution_timeout"`

	// Session folding parameters.
	GapTimeout      time.Duration `koanf:"gap_timeout"`
	MinimumDuration time.Duration `koanf:"minimum_duration"`
}

// StreaksConfig configures the optional streak service integration used
// for XP bonuses and inactivity nudges.
type StreaksConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	Timeout       time.Duration `koanf:"timeout"`
	NudgeEnabled  bool          `koanf:"nudge_enabled"`
	NudgeInterval time.Duration `koanf:"nudge_interval"`
	NudgeAfter    time.Duration `koanf:"nudge_after"`
}

// APIConfig configures response shaping.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig configures structured log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would make the
// process misbehave at runtime rather than fail at startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Translator.Interval <= 0 {
		return fmt.Errorf("translator.interval must be positive, got %s", c.Translator.Interval)
	}
	if c.Translator.EventLimit <= 0 {
		return fmt.Errorf("translator.event_limit must be positive, got %d", c.Translator.EventLimit)
	}
	if c.Translator.GapTimeout <= 0 {
		return fmt.Errorf("translator.gap_timeout must be positive, got %s", c.Translator.GapTimeout)
	}
	if c.Translator.MinimumDuration < 0 {
		return fmt.Errorf("translator.minimum_duration must not be negative, got %s", c.Translator.MinimumDuration)
	}
	if c.Translator.MinimumDuration >= c.Translator.GapTimeout {
		return fmt.Errorf("translator.minimum_duration (%s) must be below translator.gap_timeout (%s)",
			c.Translator.MinimumDuration, c.Translator.GapTimeout)
	}
	if c.Queue.RetryCount < 0 {
		return fmt.Errorf("queue.retry_count must not be negative, got %d", c.Queue.RetryCount)
	}
	if c.Streaks.Enabled && c.Streaks.URL == "" {
		return fmt.Errorf("streaks.url is required when streaks.enabled is true")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
