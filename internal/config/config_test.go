// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package config

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should validate, got: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults pass",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port above range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "non-positive translator interval",
			mutate:  func(c *Config) { c.Translator.Interval = 0 },
			wantErr: true,
		},
		{
			name:    "non-positive event limit",
			mutate:  func(c *Config) { c.Translator.EventLimit = 0 },
			wantErr: true,
		},
		{
			name: "minimum duration at or above gap timeout",
			mutate: func(c *Config) {
				c.Translator.GapTimeout = time.Minute
				c.Translator.MinimumDuration = time.Minute
			},
			wantErr: true,
		},
		{
			name:    "negative retry count",
			mutate:  func(c *Config) { c.Queue.RetryCount = -1 },
			wantErr: true,
		},
		{
			name:    "streaks enabled without url",
			mutate:  func(c *Config) { c.Streaks.Enabled = true; c.Streaks.URL = "" },
			wantErr: true,
		},
		{
			name: "max page size below default page size",
			mutate: func(c *Config) {
				c.API.DefaultPageSize = 50
				c.API.MaxPageSize = 20
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"SN_HTTP_PORT", "server.port"},
		{"SN_DUCKDB_PATH", "database.path"},
		{"SN_LLM_API_KEY", "labeling.llm_api_key"},
		{"SN_GAP_TIMEOUT", "translator.gap_timeout"},
		{"SN_STREAKS_URL", "streaks.url"},
		{"SN_LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
		{"RANDOM_UNRELATED_VAR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestServerConfigAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8468}
	if got := s.Addr(); got != "127.0.0.1:8468" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("SN_HTTP_PORT", "9999")
	t.Setenv("SN_LOG_LEVEL", "debug")
	t.Setenv("SN_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != "https://a.example" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}
