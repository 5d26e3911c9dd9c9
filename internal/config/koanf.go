// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/stupidneko/config.yaml",
	"/etc/stupidneko/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. These are
// layered first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8468,
			Timeout:           30 * time.Second,
			Environment:       "development",
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Database: DatabaseConfig{
			Path:                   "/data/stupidneko.duckdb",
			MaxMemory:              "1GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
			SeedMockData:           false,
		},
		Queue: QueueConfig{
			OutputBufferSize:     256,
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			PoisonQueueEnabled:   true,
			PoisonQueueTopic:     "labels.poison",
			CloseTimeout:         30 * time.Second,
		},
		Labeling: LabelingConfig{
			RequestTimeout:      15 * time.Second,
			YouTubeOEmbedURL:    "https://www.youtube.com/oembed",
			YouTubeRatePerSec:   2,
			YouTubeRateBurst:    4,
			BreakerMaxRequests:  3,
			BreakerFailureRatio: 0.6,
			LLMAPIKey:           "",
			LLMBaseURL:          "",
			LLMModel:            "gpt-4o-mini",
			CachePath:           "/data/labelcache",
			CacheTTL:            30 * 24 * time.Hour,
		},
		Translator: TranslatorConfig{
			Enabled:          true,
			Interval:         time.Minute,
			EventLimit:       500,
			ExecutionTimeout: 2 * time.Minute,
			GapTimeout:       2 * time.Minute,
			MinimumDuration:  time.Minute,
		},
		Streaks: StreaksConfig{
			Enabled:       false,
			URL:           "",
			Timeout:       10 * time.Second,
			NudgeEnabled:  false,
			NudgeInterval: time.Hour,
			NudgeAfter:    26 * time.Hour,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
//
// Precedence: ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// SN_HTTP_PORT -> server.port, SN_LLM_API_KEY -> labeling.llm_api_key
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file).
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Only SN_-prefixed variables listed here are honored; everything else is
// skipped so random environment variables do not pollute config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"sn_http_host":           "server.host",
		"sn_http_port":           "server.port",
		"sn_http_timeout":        "server.timeout",
		"sn_environment":         "server.environment",
		"sn_rate_limit_requests": "server.rate_limit_reqs",
		"sn_rate_limit_window":   "server.rate_limit_window",
		"sn_disable_rate_limit":  "server.rate_limit_disabled",
		"sn_cors_origins":        "server.cors_origins",

		// Database mappings
		"sn_duckdb_path":       "database.path",
		"sn_duckdb_max_memory": "database.max_memory",
		"sn_duckdb_threads":    "database.threads",
		"sn_seed_mock_data":    "database.seed_mock_data",

		// Queue mappings
		"sn_queue_buffer_size":    "queue.output_buffer_size",
		"sn_queue_retry_count":    "queue.retry_count",
		"sn_queue_retry_interval": "queue.retry_initial_interval",
		"sn_queue_poison_enabled": "queue.poison_queue_enabled",
		"sn_queue_poison_topic":   "queue.poison_queue_topic",
		"sn_queue_close_timeout":  "queue.close_timeout",

		// Labeling mappings
		"sn_label_request_timeout": "labeling.request_timeout",
		"sn_youtube_oembed_url":    "labeling.youtube_oembed_url",
		"sn_youtube_rate_per_sec":  "labeling.youtube_rate_per_sec",
		"sn_youtube_rate_burst":    "labeling.youtube_rate_burst",
		"sn_breaker_max_requests":  "labeling.breaker_max_requests",
		"sn_breaker_failure_ratio": "labeling.breaker_failure_ratio",
		"sn_llm_api_key":           "labeling.llm_api_key",
		"sn_llm_base_url":          "labeling.llm_base_url",
		"sn_llm_model":             "labeling.llm_model",
		"sn_label_cache_path":      "labeling.cache_path",
		"sn_label_cache_ttl":       "labeling.cache_ttl",

		// Translator mappings
		"sn_translator_enabled":      "translator.enabled",
		"sn_translator_interval":     "translator.interval",
		"sn_translator_event_limit":  "translator.event_limit",
		"sn_translator_exec_timeout": "translator.execution_timeout",
		"sn_gap_timeout":             "translator.gap_timeout",
		"sn_minimum_duration":        "translator.minimum_duration",

		// Streaks mappings
		"sn_streaks_enabled":        "streaks.enabled",
		"sn_streaks_url":            "streaks.url",
		"sn_streaks_timeout":        "streaks.timeout",
		"sn_streaks_nudge_enabled":  "streaks.nudge_enabled",
		"sn_streaks_nudge_interval": "streaks.nudge_interval",
		"sn_streaks_nudge_after":    "streaks.nudge_after",

		// API mappings
		"sn_api_default_page_size": "api.default_page_size",
		"sn_api_max_page_size":     "api.max_page_size",

		// Logging mappings
		"sn_log_level":  "logging.level",
		"sn_log_format": "logging.format",
		"sn_log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Skip unmapped keys.
	return ""
}
