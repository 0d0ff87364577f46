// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/jeranaias/semchat/internal/conversation"
	"github.com/jeranaias/semchat/internal/export"
)

// errNoService is reported when the model was built without a service.
var errNoService = errors.New("no query service configured")

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// queryCmd sends one query off the update loop. A panic in the querier is
// returned as an error so the conversation always leaves the busy state.
func queryCmd(q conversation.Querier, text string) tea.Cmd {
	return func() (msg tea.Msg) {
		if q == nil {
			return queryResultMsg{Err: errNoService}
		}
		defer func() {
			if r := recover(); r != nil {
				msg = queryResultMsg{Err: fmt.Errorf("%v", r)}
			}
		}()
		resp, err := q.Query(context.Background(), text)
		return queryResultMsg{Response: resp, Err: err}
	}
}

// healthCmd runs one health check bounded by timeout.
func healthCmd(s Service, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		if s == nil {
			return healthMsg{Err: errNoService}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		status, err := s.Health(ctx)
		return healthMsg{Status: status, Err: err}
	}
}

// exportCmd writes a transcript snapshot to disk.
func exportCmd(doc *export.Document, format string, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		path, err := export.Export(doc, format, opts)
		return exportCompleteMsg{Path: path, Err: err}
	}
}

// copyCmd writes text to the clipboard.
func copyCmd(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		if err := write(text); err != nil {
			return copyCompleteMsg{Err: err}
		}
		return copyCompleteMsg{Chars: len([]rune(text))}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func matches(msg tea.KeyMsg, bindings ...key.Binding) bool {
	return key.Matches(msg, bindings...)
}

func formatChars(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d chars", n)
	}
	return fmt.Sprintf("%.1fK chars", float64(n)/1000)
}
