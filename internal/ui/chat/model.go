// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/semchat/internal/conversation"
	"github.com/jeranaias/semchat/internal/export"
	"github.com/jeranaias/semchat/internal/queryapi"
	"github.com/jeranaias/semchat/internal/ui/styles"
)

// HealthCheckTimeout bounds the startup health check.
const HealthCheckTimeout = 5 * time.Second

// Service is the remote query service as seen by the chat view.
// *queryapi.Client satisfies it.
type Service interface {
	conversation.Querier
	Health(ctx context.Context) (*queryapi.HealthStatus, error)
}

// Options configures a chat Model.
type Options struct {
	// Service answers queries and reports health. Required.
	Service Service

	// ServiceURL is shown in exports.
	ServiceURL string

	// Port is named in error turns; defaults to conversation.DefaultPort.
	Port string

	// Theme defaults to an auto-detected theme.
	Theme *styles.Theme

	// Markdown renders answers with glamour.
	Markdown bool

	// ShowProvenance shows the source and type line under answers.
	ShowProvenance bool

	// ShowSimilarity adds the similarity score for cache hits.
	ShowSimilarity bool

	// Export controls where ctrl+s writes the transcript.
	Export       *export.Options
	ExportFormat string

	Logger zerolog.Logger
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctrl    *conversation.Controller
	service Service
	opts    Options
	theme   *styles.Theme
	logger  zerolog.Logger

	// Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keyMap   KeyMap
	markdown *markdownRenderer

	// Layout
	width  int
	height int

	// UI state
	showHelp     bool
	health       serviceState
	healthDetail string
	statusMsg    string

	clipboardWrite func(string) error
}

// New creates a chat model with an empty conversation.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("auto")
	}
	if opts.ExportFormat == "" {
		opts.ExportFormat = export.FormatMarkdown
	}
	if opts.Export == nil {
		opts.Export = export.DefaultOptions()
	}

	logger := opts.Logger.With().Str("component", "tui").Logger()

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	// ASCII frames render on every terminal
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Thinking

	var md *markdownRenderer
	if opts.Markdown {
		md = newMarkdownRenderer(theme.IsDark)
	}

	m := Model{
		ctrl: conversation.New(opts.Service,
			conversation.WithPort(opts.Port),
			conversation.WithLogger(opts.Logger),
		),
		service:        opts.Service,
		opts:           opts,
		theme:          theme,
		logger:         logger,
		viewport:       vp,
		input:          ti,
		spinner:        sp,
		help:           help.New(),
		keyMap:         DefaultKeyMap(),
		markdown:       md,
		health:         serviceChecking,
		clipboardWrite: clipboard.WriteAll,
	}
	m.setSize(80, 24)
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the startup health check.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, healthCmd(m.service, HealthCheckTimeout))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case queryResultMsg:
		return m.handleQueryResult(msg)

	case healthMsg:
		return m.handleHealth(msg), nil

	case exportCompleteMsg:
		if msg.Err != nil {
			m.statusMsg = "Export failed: " + msg.Err.Error()
			m.logger.Warn().Err(msg.Err).Msg("export failed")
		} else {
			m.statusMsg = "Exported to " + msg.Path
		}
		return m, nil

	case copyCompleteMsg:
		if msg.Err != nil {
			m.statusMsg = "Failed to copy: " + msg.Err.Error()
		} else {
			m.statusMsg = "Copied answer to clipboard (" + formatChars(msg.Chars) + ")"
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Cursor blink and other component messages
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case m.showHelp:
		if matches(msg, m.keyMap.Close, m.keyMap.Help) {
			m.showHelp = false
		}
		return m, nil

	case matches(msg, m.keyMap.Help) && m.input.Value() == "":
		m.showHelp = true
		return m, nil

	case matches(msg, m.keyMap.Submit):
		return m.submit()

	case matches(msg, m.keyMap.Copy):
		return m.copyLastAnswer()

	case matches(msg, m.keyMap.Export):
		return m.exportTranscript()

	case matches(msg, m.keyMap.Clear):
		if m.ctrl.Busy() {
			return m, nil
		}
		m.input.Reset()
		m.ctrl.SetPendingInput("")
		return m, nil

	case matches(msg, m.keyMap.Up, m.keyMap.Down, m.keyMap.PageUp, m.keyMap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// Input is disabled while a query is outstanding
	if m.ctrl.Busy() {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetPendingInput(m.input.Value())
	return m, cmd
}

// submit starts a query cycle for the pending input.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.ctrl.Busy() {
		m.ctrl.SetPendingInput(m.input.Value())
	}
	query, ok := m.ctrl.Begin()
	if !ok {
		return m, nil
	}

	m.input.Reset()
	m.input.Blur()
	m.statusMsg = ""
	m.refreshTranscript()

	return m, tea.Batch(m.spinner.Tick, queryCmd(m.service, query))
}

// handleQueryResult appends the answer or error turn and re-enables input.
func (m Model) handleQueryResult(msg queryResultMsg) (tea.Model, tea.Cmd) {
	m.ctrl.Resolve(msg.Response, msg.Err)
	m.input.Focus()
	m.refreshTranscript()
	return m, textinput.Blink
}

func (m Model) handleHealth(msg healthMsg) Model {
	switch {
	case msg.Err != nil:
		m.health = serviceUnreachable
		m.healthDetail = msg.Err.Error()
		m.logger.Info().Err(msg.Err).Msg("health check failed")
	case msg.Status.IsHealthy():
		m.health = serviceHealthy
		m.healthDetail = ""
	default:
		m.health = serviceUnhealthy
		if msg.Status != nil {
			m.healthDetail = msg.Status.Error
		}
	}
	return m
}

func (m Model) copyLastAnswer() (tea.Model, tea.Cmd) {
	turn, ok := m.ctrl.LastAnswer()
	if !ok || turn.Content == "" {
		m.statusMsg = "No answer to copy"
		return m, nil
	}
	return m, copyCmd(m.clipboardWrite, turn.Content)
}

func (m Model) exportTranscript() (tea.Model, tea.Cmd) {
	if m.ctrl.Len() == 0 {
		m.statusMsg = "Nothing to export yet"
		return m, nil
	}
	m.statusMsg = "Exporting transcript..."
	doc := export.NewDocument(m.ctrl, m.opts.ServiceURL)
	return m, exportCmd(doc, m.opts.ExportFormat, m.opts.Export)
}

// =============================================================================
// LAYOUT
// =============================================================================

// Rendered heights of the fixed areas in View.
const (
	headerHeight    = 3 // bordered title line
	inputAreaHeight = 2 // separator + input line
	statusBarHeight = 1
)

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	vpHeight := height - headerHeight - inputAreaHeight - statusBarHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	if width < 1 {
		width = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.help.Width = width

	const promptLen = 2 // "> "
	inputWidth := width - 4 - promptLen
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.refreshTranscript()
}

// refreshTranscript re-renders the transcript and scrolls to the newest turn.
func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Controller returns the conversation controller.
func (m Model) Controller() *conversation.Controller {
	return m.ctrl
}

// Busy reports whether a query is outstanding.
func (m Model) Busy() bool {
	return m.ctrl.Busy()
}

// ShowingHelp reports whether the help overlay is open.
func (m Model) ShowingHelp() bool {
	return m.showHelp
}

// StatusMessage returns the transient status bar message.
func (m Model) StatusMessage() string {
	return m.statusMsg
}
