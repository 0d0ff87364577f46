// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the semchat command line.

Commands:

	semchat                     Full-screen chat (same as "semchat tui")
	semchat ask <question...>   Ask one question and print the answer
	semchat chat                Line-mode chat with input history
	semchat status              Check the query service health endpoint
	semchat config <action>     show | get | set | path | init
	semchat version             Print version information

Global flags:

	--config PATH      Config file (default ~/.semchat/config.toml)
	--url URL          Query service base URL
	--log-level LEVEL  debug, info, warn, error or disabled

Output honours NO_COLOR and drops styling when stdout is not a terminal.
ask, status and version accept --json for machine-readable output.
*/
package cli
