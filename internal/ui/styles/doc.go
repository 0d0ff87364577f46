// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for semchat.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection; the theme mode can also be forced.

# Color System (colors.go)

  - Purple - Header, assistant labels
  - Cyan - Prompt, shortcuts
  - Emerald - Healthy service, evergreen answers
  - Rose - Errors, time-sensitive answers
  - Amber - Degraded service

Status helpers (RenderSuccess, RenderError, ...) pair every color with an
ASCII indicator such as [OK] or [X].

# Theme System (theme.go)

	theme := styles.NewTheme("auto")
	label := theme.ProvenanceStyle(alert).Render("Time-Sensitive")
*/
package styles
