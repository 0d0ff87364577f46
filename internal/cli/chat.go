// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/semchat/internal/config"
	"github.com/jeranaias/semchat/internal/conversation"
	"github.com/jeranaias/semchat/internal/export"
	"github.com/jeranaias/semchat/internal/queryapi"
	"github.com/jeranaias/semchat/internal/util"
)

// historyFileName is the input history file inside the config directory.
const historyFileName = "chat_history"

func (a *App) newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a line-mode chat session",
		Long: `Chat starts an interactive line-mode session with input history.

Commands during chat:
  /help, /h            Show available commands
  /history             Show the conversation so far
  /export [md|json]    Export the conversation
  /status, /s          Show session statistics and service health
  /exit, /quit, /q     Exit chat (Ctrl+D also exits)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := NewChatCLI()
			defer in.Close()

			client := a.newClient()
			r := &repl{
				app:    a,
				ctrl:   a.newController(client),
				health: client,
				in:     in,
				out:    cmd.OutOrStdout(),
			}
			return r.run(cmd.Context())
		},
	}
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader reads one line of user input.
type lineReader interface {
	ReadInput(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads saved history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, historyFileName),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

type healthChecker interface {
	Health(ctx context.Context) (*queryapi.HealthStatus, error)
}

// repl is one line-mode chat session.
type repl struct {
	app    *App
	ctrl   *conversation.Controller
	health healthChecker
	in     lineReader
	out    io.Writer
}

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintln(r.out, TitleStyle.Render("semchat")+" "+DimStyle.Render("connected to "+r.app.cfg.Service.URL))
	fmt.Fprintln(r.out, DimStyle.Render("Type /help for commands, /exit or Ctrl+D to quit."))
	fmt.Fprintln(r.out)

	for {
		input, err := r.in.ReadInput(PromptStyle.Render("semchat> "))
		if err != nil {
			// Ctrl+C (liner.ErrPromptAborted), Ctrl+D (io.EOF) or a closed input
			fmt.Fprintln(r.out)
			r.printExitSummary()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			cont, err := r.handleSlashCommand(ctx, input)
			if err != nil {
				fmt.Fprintf(r.out, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !cont {
				r.printExitSummary()
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			r.printExitSummary()
			return nil
		}

		r.ctrl.SetPendingInput(input)
		turn, ok := r.ctrl.Submit(ctx)
		if ok {
			r.app.printTurn(r.out, turn)
			fmt.Fprintln(r.out)
		}
	}
}

// handleSlashCommand runs a /command. It returns false when the session should end.
func (r *repl) handleSlashCommand(ctx context.Context, input string) (bool, error) {
	fields := strings.Fields(input)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "/help", "/h", "/?":
		r.printHelp()
	case "/history":
		r.printHistory()
	case "/export":
		format := r.app.cfg.Export.Format
		if len(args) > 0 {
			format = args[0]
		}
		path, err := r.export(format)
		if err != nil {
			return true, err
		}
		fmt.Fprintf(r.out, "%s Exported to %s\n", SuccessStyle.Render("[OK]"), path)
	case "/status", "/s":
		r.printStatus(ctx)
	case "/exit", "/quit", "/q":
		return false, nil
	default:
		return true, errors.Errorf("unknown command %q (type /help)", name)
	}
	return true, nil
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.out, TitleStyle.Render("Commands"))
	rows := [][2]string{
		{"/help", "Show this help"},
		{"/history", "Show the conversation so far"},
		{"/export [md|json]", "Export the conversation"},
		{"/status", "Show session statistics and service health"},
		{"/exit", "Exit chat"},
	}
	for _, row := range rows {
		printRow(r.out, row[0], row[1])
	}
}

func (r *repl) printHistory() {
	turns := r.ctrl.Turns()
	if len(turns) == 0 {
		fmt.Fprintln(r.out, DimStyle.Render("No conversation yet."))
		return
	}
	width := GetTerminalWidth() - 16
	for i, t := range turns {
		label := t.Role.DisplayName()
		line := util.Preview(t.Content, width)
		switch {
		case t.IsError():
			line = ErrorStyle.Render(line)
		case t.IsAnswer():
			line += "  " + DimStyle.Render("["+t.Source+"]")
		}
		fmt.Fprintf(r.out, "%3d. %-9s %s\n", i+1, label+":", line)
	}
}

func (r *repl) export(format string) (string, error) {
	if r.ctrl.Len() == 0 {
		return "", errors.New("nothing to export yet")
	}
	opts, err := r.app.exportOptions()
	if err != nil {
		return "", err
	}
	doc := export.NewDocument(r.ctrl, r.app.cfg.Service.URL)
	return export.Export(doc, format, opts)
}

func (r *repl) printStatus(ctx context.Context) {
	stats := r.ctrl.Stats()
	fmt.Fprintln(r.out, TitleStyle.Render("Session"))
	printRow(r.out, "Summary", stats.Summary())
	if stats.Completed() > 0 {
		printRow(r.out, "Average latency", stats.AverageLatency().Round(time.Millisecond).String())
	}

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()
	fmt.Fprintln(r.out, TitleStyle.Render("Service"))
	printRow(r.out, "URL", r.app.cfg.Service.URL)
	health, err := r.health.Health(ctx)
	if err != nil {
		printRow(r.out, "Status", statusWord(false)+" "+err.Error())
		return
	}
	printRow(r.out, "Status", statusWord(health.IsHealthy())+" "+health.Status)
}

func (r *repl) printExitSummary() {
	stats := r.ctrl.Stats()
	if stats.Submitted == 0 {
		fmt.Fprintln(r.out, DimStyle.Render("Goodbye."))
		return
	}
	fmt.Fprintln(r.out, DimStyle.Render("Session: "+stats.Summary()))
}
