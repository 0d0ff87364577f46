// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/semchat/internal/conversation"
	"github.com/jeranaias/semchat/internal/model"
	"github.com/jeranaias/semchat/internal/ui/styles"
	"github.com/jeranaias/semchat/internal/util"
)

// Title is shown in the header.
const Title = "Semantic Cache Chat"

const emptyTranscriptText = "Ask anything. Answers come from the semantic cache or a fresh model call."

// =============================================================================
// MAIN VIEW
// =============================================================================

// View renders the chat interface.
func (m Model) View() string {
	body := m.viewport.View()
	if m.showHelp {
		body = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render(Title)
	status := m.renderServiceState()

	// Header style adds a border and one column of padding on each side
	inner := m.width - 4
	gap := inner - lipgloss.Width(title) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}

	line := title + strings.Repeat(" ", gap) + status
	return m.theme.Header.Width(max(inner+2, 1)).Render(line)
}

func (m Model) renderServiceState() string {
	switch m.health {
	case serviceHealthy:
		return m.theme.ServiceHealthy.Render(styles.StatusIndicators.Success + " " + m.health.String())
	case serviceUnhealthy:
		text := styles.StatusIndicators.Warning + " " + m.health.String()
		if m.healthDetail != "" && m.width >= 80 {
			text += ": " + util.TruncateWidth(m.healthDetail, 30)
		}
		return m.theme.ServiceUnhealthy.Render(text)
	case serviceUnreachable:
		return m.theme.ServiceUnreachable.Render(styles.StatusIndicators.Error + " " + m.health.String())
	default:
		return m.theme.ServiceUnknown.Render(m.health.String())
	}
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func (m Model) renderTranscript() string {
	if m.ctrl.Transcript().IsEmpty() {
		return m.theme.EmptyTranscript.Render(emptyTranscriptText)
	}

	turns := m.ctrl.Turns()
	blocks := make([]string, 0, len(turns))
	for _, turn := range turns {
		blocks = append(blocks, m.renderTurn(turn))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderTurn(turn model.Turn) string {
	contentWidth := m.width - 8
	if contentWidth < 10 {
		contentWidth = 10
	}

	var sb strings.Builder
	switch {
	case turn.IsUser():
		sb.WriteString(m.theme.InputPrompt.Render(turn.Role.DisplayName()))
		sb.WriteString("\n")
		sb.WriteString(m.theme.UserBubble.Width(contentWidth).Render(turn.Content))

	case turn.IsError():
		sb.WriteString(m.theme.AssistantLabel.Render(turn.Role.DisplayName()))
		sb.WriteString("\n")
		sb.WriteString(m.theme.ErrorBubble.Width(contentWidth).
			Render(styles.StatusIndicators.Error + " " + turn.Content))

	default:
		sb.WriteString(m.theme.AssistantLabel.Render(turn.Role.DisplayName()))
		sb.WriteString("\n")
		if m.markdown != nil {
			sb.WriteString(m.markdown.Render(turn.Content, contentWidth))
		} else {
			sb.WriteString(m.theme.AssistantText.Width(contentWidth).Render(turn.Content))
		}
		if line := m.renderProvenance(turn); m.opts.ShowProvenance && line != "" {
			sb.WriteString("\n")
			sb.WriteString(line)
		}
	}
	return sb.String()
}

// renderProvenance renders "Source: <s>  Type: <label>" with the label
// coloured by its emphasis. It is empty for a turn without a source, and the
// type is left out when the query was not classified.
func (m Model) renderProvenance(turn model.Turn) string {
	if turn.Source == "" {
		return ""
	}

	parts := []string{
		m.theme.ProvenanceKey.Render("Source:") + " " + m.theme.ProvenanceValue.Render(turn.Source),
	}
	if turn.HasQueryType() {
		p := conversation.DerivePresentation(turn)
		label := m.theme.ProvenanceStyle(p.Emphasis == conversation.EmphasisAlert).Render(p.Label)
		parts = append(parts, m.theme.ProvenanceKey.Render("Type:")+" "+label)
	}
	if m.opts.ShowSimilarity && turn.SimilarityScore != nil {
		parts = append(parts,
			m.theme.ProvenanceKey.Render("Similarity:")+" "+m.theme.ProvenanceValue.Render(turn.FormatScore()))
	}
	return "  " + strings.Join(parts, "  ")
}

// =============================================================================
// INPUT AREA
// =============================================================================

func (m Model) renderInput() string {
	var line string
	if m.ctrl.Busy() {
		line = m.spinner.View() + " " + m.theme.Thinking.Render("Thinking...")
	} else {
		line = m.input.View()
	}
	return m.theme.InputContainer.Width(max(m.width-2, 1)).Render(line)
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	left := m.statusMsg
	style := m.theme.StatusMsg
	if left == "" {
		left = m.ctrl.Stats().Summary()
		style = m.theme.StatusBar.UnsetBackground().UnsetPadding()
	}
	right := m.theme.ShortcutKey.Render("?") + " " + m.theme.ShortcutDesc.Render("help")

	// Status bar padding takes one column on each side
	inner := m.width - 2
	avail := inner - lipgloss.Width(right) - 1
	if avail < 1 {
		avail = 1
	}
	left = style.Render(util.TruncateWidth(left, avail))

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelp() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.HelpTitle.Render("Keyboard Shortcuts"),
		m.help.FullHelpView(m.keyMap.FullHelp()),
		"",
		m.theme.ShortcutDesc.Render("Press ? or Esc to close"),
	)
	overlay := m.theme.HelpOverlay.Render(content)
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, overlay)
}
