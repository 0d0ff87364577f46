// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog loggers used across semchat.
//
// CLI commands log to stderr through a console writer. The TUI logs to a
// file, since bubbletea owns the terminal. Tests use Nop.
//
// # Usage
//
//	logger := logging.NewConsole(os.Stderr, cfg.Logging.Level, false)
//	logger.Debug().Str("url", cfg.Service.URL).Msg("starting")
package logging
