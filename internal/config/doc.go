// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

// Package config loads runtime configuration from layered sources:
// built-in defaults, an optional YAML file, and environment variables,
// with environment variables taking highest precedence.
package config
