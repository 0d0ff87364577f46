// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeranaias/semchat/internal/logging"
	"github.com/jeranaias/semchat/internal/ui/chat"
	"github.com/jeranaias/semchat/internal/ui/styles"
)

// errNotInteractive is returned when the TUI is started without a terminal.
var errNotInteractive = errors.New("the full-screen chat needs an interactive terminal; use 'semchat ask' or 'semchat chat' instead")

func (a *App) newTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}

// runTUI starts the Bubble Tea program. Bubble Tea owns the terminal, so logs
// go to the log file instead of stderr.
func (a *App) runTUI(cmd *cobra.Command) error {
	if !IsTTY() || !IsStdoutTTY() {
		return errNotInteractive
	}

	// The console logger would write into the alternate screen
	a.logger = logging.Nop()
	path, err := a.cfg.LogFilePath()
	if err == nil {
		var logger zerolog.Logger
		var closer io.Closer
		logger, closer, err = logging.NewFile(path, a.cfg.Logging.Level)
		if err == nil {
			a.closers = append(a.closers, closer)
			a.logger = logger
		}
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v (logging disabled)\n", WarningStyle.Render("Warning:"), err)
	}

	client := a.newClient()
	exportOpts, err := a.exportOptions()
	if err != nil {
		return err
	}

	m := chat.New(chat.Options{
		Service:        client,
		ServiceURL:     client.BaseURL(),
		Port:           client.Port(),
		Theme:          styles.NewTheme(a.cfg.UI.Theme),
		Markdown:       a.cfg.UI.Markdown,
		ShowProvenance: a.cfg.UI.ShowProvenance,
		ShowSimilarity: a.cfg.UI.ShowSimilarity,
		Export:         exportOpts,
		ExportFormat:   a.cfg.Export.Format,
		Logger:         a.logger,
	})

	a.logger.Info().Str("service", client.BaseURL()).Msg("starting tui")
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "tui failed")
	}
	return nil
}
