// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jeranaias/semchat/internal/conversation"
	"github.com/jeranaias/semchat/internal/model"
)

var (
	errNilDocument   = errors.New("document is nil")
	errEmptyDocument = errors.New("transcript has no turns")
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a document to Markdown format.
func (e *MarkdownExporter) Export(doc *Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	now := e.options.now()
	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(doc.Title)))
		sb.WriteString(fmt.Sprintf("session: %s\n", doc.SessionID))
		if doc.ServiceURL != "" {
			sb.WriteString(fmt.Sprintf("service: %s\n", escapeYAML(doc.ServiceURL)))
		}
		if doc.Transcript != nil {
			sb.WriteString(fmt.Sprintf("started: %s\n", doc.Transcript.StartedAt.Format(time.RFC3339)))
		}
		sb.WriteString(fmt.Sprintf("turns: %d\n", len(doc.Turns)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", now.Format(time.RFC3339)))
		sb.WriteString("generator: semchat\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(doc.Title)))

	if e.options.IncludeMetadata {
		sb.WriteString("## Session Information\n\n")
		if doc.ServiceURL != "" {
			sb.WriteString(fmt.Sprintf("- **Service**: %s\n", doc.ServiceURL))
		}
		if doc.Transcript != nil {
			sb.WriteString(fmt.Sprintf("- **Started**: %s\n", formatTimestamp(doc.Transcript.StartedAt)))
		}
		sb.WriteString(fmt.Sprintf("- **Turns**: %d\n", len(doc.Turns)))
		sb.WriteString(fmt.Sprintf("- **Answered**: %d\n", doc.Stats.Answered))
		if doc.Stats.Errors > 0 {
			sb.WriteString(fmt.Sprintf("- **Errors**: %d\n", doc.Stats.Errors))
		}
		if doc.Stats.Answered > 0 {
			sb.WriteString(fmt.Sprintf("- **Cache Hit Rate**: %.0f%%\n", doc.Stats.CacheHitRate()))
		}
		if avg := doc.Stats.AverageLatency(); avg > 0 {
			sb.WriteString(fmt.Sprintf("- **Average Latency**: %s\n", formatLatency(avg)))
		}
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString("## Conversation\n\n")

	for i, turn := range doc.Turns {
		label := formatRoleLabel(turn)
		if e.options.IncludeTimestamps && !turn.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(turn.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", label))
		}

		sb.WriteString(strings.TrimSpace(turn.Content))
		sb.WriteString("\n\n")

		if line := formatProvenance(turn); turn.IsAnswer() && line != "" {
			sb.WriteString(line)
			sb.WriteString("\n\n")
		}

		if i < len(doc.Turns)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from semchat on %s*\n", now.Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// formatRoleLabel returns a heading label for the turn.
func formatRoleLabel(turn model.Turn) string {
	switch {
	case turn.IsUser():
		return "[User]"
	case turn.IsError():
		return "[Assistant - Error]"
	case turn.Role == model.RoleAssistant:
		return "[Assistant]"
	default:
		return "Unknown"
	}
}

// formatProvenance renders the source/type line of an answered turn, or ""
// when the turn has no source.
func formatProvenance(turn model.Turn) string {
	if turn.Source == "" {
		return ""
	}
	parts := []string{fmt.Sprintf("Source: `%s`", turn.Source)}
	if turn.HasQueryType() {
		parts = append(parts, fmt.Sprintf("Type: %s", conversation.DerivePresentation(turn).Label))
	}
	if score := turn.FormatScore(); score != "" {
		parts = append(parts, fmt.Sprintf("Similarity: %s", score))
	}
	return fmt.Sprintf("<sub>%s</sub>", strings.Join(parts, " | "))
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
