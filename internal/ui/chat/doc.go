// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen chat view for semchat.

The Model is a Bubble Tea model built around a conversation.Controller. A
submit runs in two halves: Update calls Controller.Begin, which appends the
user turn and marks the conversation busy, then a tea.Cmd performs the HTTP
query off the update loop. The queryResultMsg it returns is handed to
Controller.Resolve back inside Update, so the controller is only ever
touched by the update goroutine.

# Layout

	+------------------------------------------------+
	| Semantic Cache Chat        [OK] service healthy |  header
	+------------------------------------------------+
	| You                                            |
	|   What's the weather today?                    |  transcript
	| Assistant                                      |  (viewport)
	|   It is sunny.                                 |
	|   Source: llm  Type: Time-Sensitive            |
	+------------------------------------------------+
	| > _                                            |  input / spinner
	| 1 answered | 0 failed | ...      ? help        |  status bar
	+------------------------------------------------+

# Key Bindings

  - Enter - Submit the pending input (ignored while a query is outstanding)
  - ? - Toggle help (on an empty input)
  - Ctrl+Y - Copy the last answer to the clipboard
  - Ctrl+S - Export the transcript
  - Ctrl+L - Clear the pending input
  - PgUp/PgDn - Scroll the transcript
  - Ctrl+C - Quit
*/
package chat
