// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeranaias/semchat/internal/config"
	"github.com/jeranaias/semchat/internal/conversation"
	"github.com/jeranaias/semchat/internal/export"
	"github.com/jeranaias/semchat/internal/logging"
	"github.com/jeranaias/semchat/internal/queryapi"
)

// Version information (set at build time from main)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// APPLICATION STATE
// =============================================================================

// App carries the state shared by all commands: the resolved configuration,
// the logger and anything to close on exit.
type App struct {
	cfg     *config.Config
	logger  zerolog.Logger
	closers []io.Closer

	// Global flags
	configPath string
	serviceURL string
	logLevel   string
}

func newApp() *App {
	return &App{
		cfg:    config.Default(),
		logger: logging.Nop(),
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := newApp()
	defer app.close()

	root := app.newRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				fmt.Fprintf(stderr, "%s %v\n", ErrorStyle.Render("Error:"), exitErr.Err)
			}
			return exitErr.Code
		}
		fmt.Fprintf(stderr, "%s %v\n", ErrorStyle.Render("Error:"), err)
		return 1
	}
	return 0
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "semchat",
		Short: "Terminal chat client for a semantic-cache query service",
		Long: `semchat sends your questions to a semantic-cache query service and shows
each answer with its provenance: where it came from (for example the cache
or a fresh model call) and whether the question is time-sensitive.

Run without a command to start the full-screen chat.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.semchat/config.toml)")
	flags.StringVar(&a.serviceURL, "url", "", "query service base URL (default http://localhost:8000)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error, disabled")

	root.AddCommand(
		a.newTUICommand(),
		a.newAskCommand(),
		a.newChatCommand(),
		a.newStatusCommand(),
		a.newConfigCommand(),
		a.newVersionCommand(),
	)
	return root
}

// setup resolves configuration (.env, config file, environment, flags) and
// builds the console logger. Commands under "config" tolerate an invalid
// configuration so that it can be inspected and repaired.
func (a *App) setup(cmd *cobra.Command) error {
	stderr := cmd.ErrOrStderr()

	if _, err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(stderr, "%s %v\n", WarningStyle.Render("Warning:"), err)
	}

	var cfg *config.Config
	var err error
	if a.configPath != "" {
		cfg, err = config.LoadFromPath(a.configPath)
		if err != nil && !isConfigCommand(cmd) {
			return err
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			fmt.Fprintf(stderr, "%s %v (using defaults)\n", WarningStyle.Render("Warning:"), err)
		}
	}
	if cfg == nil {
		cfg = config.Default()
	}

	if a.serviceURL != "" {
		cfg.Service.URL = a.serviceURL
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		if !isConfigCommand(cmd) {
			return errors.Wrap(err, "invalid configuration")
		}
		fmt.Fprintf(stderr, "%s %v\n", WarningStyle.Render("Warning:"), err)
	}

	a.cfg = cfg
	a.logger = logging.NewConsole(stderr, cfg.Logging.Level, !ColorsEnabled())
	a.logger.Debug().Str("command", cmd.CommandPath()).Str("service", cfg.Service.URL).Msg("configuration loaded")
	return nil
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" && c.HasParent() {
			return true
		}
	}
	return false
}

func (a *App) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	a.closers = nil
}

// =============================================================================
// SHARED BUILDERS
// =============================================================================

// newClient builds a query client from the resolved configuration.
func (a *App) newClient() *queryapi.Client {
	return queryapi.NewClient(a.cfg.Service.URL).
		WithTimeout(a.cfg.RequestTimeout()).
		WithHealthPath(a.cfg.Service.HealthPath).
		WithLogger(a.logger)
}

// newController builds a conversation whose error turns name the client's port.
func (a *App) newController(client *queryapi.Client) *conversation.Controller {
	return conversation.New(client,
		conversation.WithPort(client.Port()),
		conversation.WithLogger(a.logger),
	)
}

// exportOptions returns export options writing into the configured directory.
func (a *App) exportOptions() (*export.Options, error) {
	dir, err := a.cfg.ExportDir()
	if err != nil {
		return nil, err
	}
	opts := export.DefaultOptions()
	opts.OutputDir = dir
	return opts, nil
}
