// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for semchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServiceConfig: Query service URL, timeout and health path
//   - UIConfig: Theme and answer rendering
//   - LoggingConfig: Log level and log file
//   - ExportConfig: Transcript export directory and format
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (SEMCHAT_*), including those from ./.env
//   - ~/.semchat/config.toml
//   - ~/.semchat/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	config.LoadDotEnv()
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	url := cfg.Service.URL
//	timeout := cfg.RequestTimeout()
package config
