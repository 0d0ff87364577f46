// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/semchat/internal/conversation"
	"github.com/jeranaias/semchat/internal/model"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var (
	markdownRenderer     *glamour.TermRenderer
	markdownRendererOnce sync.Once
)

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if the renderer is unavailable.
func renderMarkdown(content string) string {
	markdownRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(GetTerminalWidth()-4),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// TURN OUTPUT
// =============================================================================

// printTurn writes an assistant turn. Markdown is only rendered when w is a
// terminal so piped output stays plain.
func (a *App) printTurn(w io.Writer, turn model.Turn) {
	if turn.IsError() {
		fmt.Fprintln(w, ErrorStyle.Render(turn.Content))
		return
	}

	content := turn.Content
	if a.cfg.UI.Markdown && isTerminalWriter(w) {
		content = renderMarkdown(content)
	}
	fmt.Fprintln(w, strings.TrimRight(content, "\n"))

	if !a.cfg.UI.ShowProvenance {
		return
	}
	if line := formatProvenance(turn, a.cfg.UI.ShowSimilarity); line != "" {
		fmt.Fprintln(w, line)
	}
}

// formatProvenance renders "Source: <s>  Type: <label>" for an answered turn.
// Turns without a source get no line; the type appears only when the service
// classified the query.
func formatProvenance(turn model.Turn, showSimilarity bool) string {
	if turn.Source == "" {
		return ""
	}

	parts := []string{DimStyle.Render("Source:") + " " + turn.Source}
	if turn.HasQueryType() {
		p := conversation.DerivePresentation(turn)
		labelStyle := DefaultLabelStyle
		if p.Emphasis == conversation.EmphasisAlert {
			labelStyle = AlertLabelStyle
		}
		parts = append(parts, DimStyle.Render("Type:")+" "+labelStyle.Render(p.Label))
	}
	if showSimilarity && turn.SimilarityScore != nil {
		parts = append(parts, DimStyle.Render("Similarity:")+" "+turn.FormatScore())
	}
	return strings.Join(parts, "  ")
}
