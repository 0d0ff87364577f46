// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/semchat/internal/export"
	"github.com/jeranaias/semchat/internal/logging"
	"github.com/jeranaias/semchat/internal/model"
	"github.com/jeranaias/semchat/internal/queryapi"
	"github.com/jeranaias/semchat/internal/ui/styles"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// TEST HELPERS
// =============================================================================

type fakeService struct {
	queries []string
	resp    *queryapi.QueryResponse
	err     error
	panics  bool

	health    *queryapi.HealthStatus
	healthErr error
}

func (f *fakeService) Query(_ context.Context, text string) (*queryapi.QueryResponse, error) {
	f.queries = append(f.queries, text)
	if f.panics {
		panic("transport exploded")
	}
	return f.resp, f.err
}

func (f *fakeService) Health(_ context.Context) (*queryapi.HealthStatus, error) {
	return f.health, f.healthErr
}

func answer(text, source, queryType string) *queryapi.QueryResponse {
	return &queryapi.QueryResponse{
		Response: text,
		Metadata: queryapi.Metadata{Source: source, QueryType: queryType},
	}
}

func newTestModel(svc *fakeService) Model {
	return New(Options{
		Service:        svc,
		ServiceURL:     queryapi.DefaultBaseURL,
		Theme:          styles.NewTheme("dark"),
		ShowProvenance: true,
		ShowSimilarity: true,
		Logger:         logging.Nop(),
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// findMsg runs cmd, expanding batches, and returns the first message of type T.
// Only commands that return immediately are run.
func findMsg[T any](t *testing.T, cmd tea.Cmd) (T, bool) {
	t.Helper()
	var zero T
	if cmd == nil {
		return zero, false
	}
	switch msg := cmd().(type) {
	case T:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if found, ok := findMsg[T](t, c); ok {
				return found, true
			}
		}
	}
	return zero, false
}

// submit types text, presses enter and returns the model plus the query command.
func submit(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m = typeText(t, m, text)
	return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

// runQuery executes the batched query command and feeds its result back.
func runQuery(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	result, ok := findMsg[queryResultMsg](t, cmd)
	require.True(t, ok, "expected a query result")
	m, _ = update(t, m, result)
	return m
}

// =============================================================================
// SUBMIT CYCLE
// =============================================================================

func TestSubmit_AnswerCycle(t *testing.T) {
	svc := &fakeService{resp: answer("It is sunny.", "llm", "timesensitive")}
	m := newTestModel(svc)

	m = typeText(t, m, "  what's the weather?  ")
	assert.Equal(t, "  what's the weather?  ", m.Controller().PendingInput())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.Busy())
	assert.Empty(t, m.input.Value())
	require.Equal(t, 1, m.Controller().Len())
	assert.Contains(t, m.View(), "Thinking...")

	m = runQuery(t, m, cmd)
	assert.False(t, m.Busy())
	assert.Equal(t, []string{"what's the weather?"}, svc.queries)

	turns := m.Controller().Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "what's the weather?", turns[0].Content)
	assert.Equal(t, "It is sunny.", turns[1].Content)
	assert.Equal(t, "llm", turns[1].Source)

	view := m.View()
	assert.Contains(t, view, "It is sunny.")
	assert.Contains(t, view, "Source:")
	assert.Contains(t, view, "Time-Sensitive")
	assert.NotContains(t, view, "Thinking...")
}

func TestSubmit_BlankInputIsNoop(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)

	m, cmd := submit(t, m, "   ")
	assert.Nil(t, cmd)
	assert.False(t, m.Busy())
	assert.Equal(t, 0, m.Controller().Len())
	assert.Empty(t, svc.queries)
}

func TestSubmit_IgnoredWhileBusy(t *testing.T) {
	svc := &fakeService{resp: answer("first", "cache", "evergreen")}
	m := newTestModel(svc)

	m, cmd := submit(t, m, "first question")
	require.True(t, m.Busy())

	// Typing and enter are both ignored while the query is outstanding
	m = typeText(t, m, "second")
	m, second := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, second)
	assert.Equal(t, 1, m.Controller().Len())
	assert.Empty(t, m.input.Value())

	m = runQuery(t, m, cmd)
	assert.Equal(t, 2, m.Controller().Len())
	assert.Equal(t, []string{"first question"}, svc.queries)
}

func TestSubmit_ErrorTurn(t *testing.T) {
	svc := &fakeService{err: &queryapi.ServiceError{Status: 500}}
	m := newTestModel(svc)

	m, cmd := submit(t, m, "hello")
	m = runQuery(t, m, cmd)

	last := m.Controller().Turns()[1]
	assert.True(t, last.IsError())
	assert.Equal(t,
		"Error: HTTP error! status: 500. Please make sure the backend server is running on port 8000.",
		last.Content)
	assert.False(t, m.Busy())
	assert.NotContains(t, m.View(), "Source:")
}

func TestSubmit_PanicBecomesErrorTurn(t *testing.T) {
	svc := &fakeService{panics: true}
	m := newTestModel(svc)

	m, cmd := submit(t, m, "boom")
	m = runQuery(t, m, cmd)

	assert.False(t, m.Busy())
	last := m.Controller().Turns()[1]
	assert.True(t, last.IsError())
	assert.Contains(t, last.Content, "transport exploded")
}

func TestSubmit_NoServiceConfigured(t *testing.T) {
	m := New(Options{Theme: styles.NewTheme("dark"), Logger: logging.Nop()})

	m, cmd := submit(t, m, "hello")
	m = runQuery(t, m, cmd)

	last := m.Controller().Turns()[1]
	assert.True(t, last.IsError())
	assert.Contains(t, last.Content, "no query service configured")
}

// =============================================================================
// PROVENANCE
// =============================================================================

func TestProvenance_SimilarityShownForCacheHits(t *testing.T) {
	score := 0.934
	resp := answer("Paris.", "cache", "evergreen")
	resp.Metadata.SimilarityScore = &score
	m := newTestModel(&fakeService{resp: resp})

	m, cmd := submit(t, m, "capital of france")
	m = runQuery(t, m, cmd)

	view := m.View()
	assert.Contains(t, view, "Evergreen")
	assert.Contains(t, view, "0.93")
}

func TestRenderProvenance(t *testing.T) {
	m := newTestModel(&fakeService{})

	full := m.renderProvenance(model.NewAnswerTurn("Sunny", "llm", model.QueryTypeTimeSensitive, nil))
	assert.Contains(t, full, "Source:")
	assert.Contains(t, full, "llm")
	assert.Contains(t, full, "Type:")
	assert.Contains(t, full, "Time-Sensitive")

	sourceOnly := m.renderProvenance(model.NewAnswerTurn("Paris", "llm", "", nil))
	assert.Contains(t, sourceOnly, "llm")
	assert.NotContains(t, sourceOnly, "Type:")
	assert.NotContains(t, sourceOnly, "Evergreen")

	assert.Empty(t, m.renderProvenance(model.NewAnswerTurn("Paris", "", "", nil)))
}

func TestProvenance_UnclassifiedAnswerHasNoType(t *testing.T) {
	m := newTestModel(&fakeService{resp: answer("Paris.", "llm", "")})

	m, cmd := submit(t, m, "capital of france")
	m = runQuery(t, m, cmd)

	view := m.View()
	assert.Contains(t, view, "Source:")
	assert.NotContains(t, view, "Type:")
	assert.NotContains(t, view, "Evergreen")
}

func TestProvenance_Hidden(t *testing.T) {
	svc := &fakeService{resp: answer("Paris.", "cache", "evergreen")}
	m := New(Options{Service: svc, Theme: styles.NewTheme("dark"), Logger: logging.Nop()})

	m, cmd := submit(t, m, "capital of france")
	m = runQuery(t, m, cmd)

	assert.Contains(t, m.View(), "Paris.")
	assert.NotContains(t, m.View(), "Source:")
}

func TestMarkdownRendering(t *testing.T) {
	svc := &fakeService{resp: answer("# Heading\n\nSome **bold** text.", "llm", "")}
	m := New(Options{
		Service:  svc,
		Theme:    styles.NewTheme("dark"),
		Markdown: true,
		Logger:   logging.Nop(),
	})

	m, cmd := submit(t, m, "format me")
	m = runQuery(t, m, cmd)

	view := m.View()
	assert.Contains(t, view, "Heading")
	assert.NotContains(t, view, "**bold**")
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealth(t *testing.T) {
	tests := []struct {
		name string
		svc  *fakeService
		want string
	}{
		{"healthy", &fakeService{health: &queryapi.HealthStatus{Status: "healthy"}}, "service healthy"},
		{"unhealthy", &fakeService{health: &queryapi.HealthStatus{Status: "unhealthy", Error: "redis down"}}, "service unhealthy"},
		{"unreachable", &fakeService{healthErr: errors.New("connection refused")}, "service unreachable"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModel(tc.svc)
			assert.Contains(t, m.View(), "checking service")

			msg := healthCmd(tc.svc, HealthCheckTimeout)()
			m, _ = update(t, m, msg)
			assert.Contains(t, m.View(), tc.want)
		})
	}
}

func TestHealth_FailureDoesNotBlockSubmit(t *testing.T) {
	svc := &fakeService{healthErr: errors.New("down"), resp: answer("ok", "llm", "")}
	m := newTestModel(svc)
	m, _ = update(t, m, healthCmd(svc, HealthCheckTimeout)())

	m, cmd := submit(t, m, "still works?")
	require.NotNil(t, cmd)
	m = runQuery(t, m, cmd)
	assert.Equal(t, 2, m.Controller().Len())
}

// =============================================================================
// KEYS
// =============================================================================

func TestHelpToggle(t *testing.T) {
	m := newTestModel(&fakeService{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.True(t, m.ShowingHelp())
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.ShowingHelp())
}

func TestHelpKey_TypesIntoNonEmptyInput(t *testing.T) {
	m := newTestModel(&fakeService{})
	m = typeText(t, m, "why")
	m = typeText(t, m, "?")

	assert.False(t, m.ShowingHelp())
	assert.Equal(t, "why?", m.Controller().PendingInput())
}

func TestClearInput(t *testing.T) {
	svc := &fakeService{resp: answer("a", "llm", "")}
	m := newTestModel(svc)

	m, cmd := submit(t, m, "keep me")
	m = runQuery(t, m, cmd)
	m = typeText(t, m, "draft")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, m.input.Value())
	assert.Empty(t, m.Controller().PendingInput())
	assert.Equal(t, 2, m.Controller().Len(), "transcript is never cleared")
}

func TestQuit(t *testing.T) {
	m := newTestModel(&fakeService{})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCopyLastAnswer(t *testing.T) {
	svc := &fakeService{resp: answer("copy this", "cache", "")}
	m := newTestModel(svc)

	var copied string
	m.clipboardWrite = func(s string) error {
		copied = s
		return nil
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Nil(t, cmd)
	assert.Equal(t, "No answer to copy", m.StatusMessage())

	m, qcmd := submit(t, m, "question")
	m = runQuery(t, m, qcmd)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "copy this", copied)
	assert.Contains(t, m.StatusMessage(), "Copied answer")
}

func TestCopyLastAnswer_Failure(t *testing.T) {
	svc := &fakeService{resp: answer("copy this", "cache", "")}
	m := newTestModel(svc)
	m.clipboardWrite = func(string) error { return errors.New("no clipboard") }

	m, qcmd := submit(t, m, "question")
	m = runQuery(t, m, qcmd)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.StatusMessage(), "no clipboard")
}

func TestExportTranscript(t *testing.T) {
	dir := t.TempDir()
	svc := &fakeService{resp: answer("Exported answer", "llm", "timesensitive")}
	m := New(Options{
		Service:      svc,
		ServiceURL:   queryapi.DefaultBaseURL,
		Theme:        styles.NewTheme("dark"),
		Export:       &export.Options{OutputDir: dir, IncludeMetadata: true},
		ExportFormat: export.FormatJSON,
		Logger:       logging.Nop(),
	})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.Equal(t, "Nothing to export yet", m.StatusMessage())

	m, qcmd := submit(t, m, "export me")
	m = runQuery(t, m, qcmd)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	done, ok := cmd().(exportCompleteMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)
	assert.Equal(t, dir, filepath.Dir(done.Path))
	assert.True(t, strings.HasSuffix(done.Path, ".json"))

	data, err := os.ReadFile(done.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Exported answer")

	m, _ = update(t, m, done)
	assert.Contains(t, m.StatusMessage(), "Exported to")
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(&fakeService{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, m.viewport.Width)
	assert.Equal(t, 40-headerHeight-inputAreaHeight-statusBarHeight, m.viewport.Height)
	assert.Contains(t, m.View(), Title)
}

func TestStatusBarShowsStats(t *testing.T) {
	svc := &fakeService{resp: answer("a", "cache", "evergreen")}
	m := newTestModel(svc)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 30})
	assert.Contains(t, m.View(), "No queries answered yet")

	m, cmd := submit(t, m, "q")
	m = runQuery(t, m, cmd)
	assert.Contains(t, m.View(), "1 answered")
}
