// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation implements the client-side conversation controller.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/semchat/internal/model"
	"github.com/jeranaias/semchat/internal/queryapi"
)

// DefaultPort is named in error turns when no port is configured.
const DefaultPort = "8000"

// =============================================================================
// CONTROLLER STATE
// =============================================================================

// State represents the controller's position in the submit cycle.
type State int

const (
	StateIdle             State = iota // Ready for a submission
	StateAwaitingResponse              // One request outstanding
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting-response"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Querier sends one query to the answering service.
// *queryapi.Client satisfies it.
type Querier interface {
	Query(ctx context.Context, text string) (*queryapi.QueryResponse, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns one conversation: its transcript, the pending input and the
// busy flag. It is not safe for concurrent use; a single goroutine (the TUI
// update loop or a CLI command) owns it. Only Querier.Query may run elsewhere.
type Controller struct {
	querier    Querier
	transcript *model.Transcript
	logger     zerolog.Logger
	port       string

	pendingInput string
	busy         bool
	requestStart time.Time

	stats *Stats
}

// Option configures a Controller.
type Option func(*Controller)

// WithPort sets the port named in error turns.
func WithPort(port string) Option {
	return func(c *Controller) {
		if port != "" {
			c.port = port
		}
	}
}

// WithLogger sets the controller's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger.With().Str("component", "conversation").Logger()
	}
}

// New creates a controller with an empty transcript in the idle state.
func New(querier Querier, opts ...Option) *Controller {
	c := &Controller{
		querier:    querier,
		transcript: model.NewTranscript(),
		logger:     zerolog.Nop(),
		port:       DefaultPort,
		stats:      NewStats(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// INPUT
// =============================================================================

// SetPendingInput replaces the pending input verbatim.
func (c *Controller) SetPendingInput(text string) {
	c.pendingInput = text
}

// PendingInput returns the text that the next Submit would send.
func (c *Controller) PendingInput() string {
	return c.pendingInput
}

// Busy reports whether a request is outstanding.
func (c *Controller) Busy() bool {
	return c.busy
}

// State returns the current controller state.
func (c *Controller) State() State {
	if c.busy {
		return StateAwaitingResponse
	}
	return StateIdle
}

// CanSubmit reports whether Submit would start a cycle.
func (c *Controller) CanSubmit() bool {
	return !c.busy && strings.TrimSpace(c.pendingInput) != ""
}

// =============================================================================
// SUBMIT CYCLE
// =============================================================================

// Submit runs one full cycle: Begin, one Query call, Resolve.
// It returns the appended assistant turn and true, or a zero Turn and false
// when nothing was submitted (blank input, or a request already outstanding).
// A panic inside the querier is recovered into an error turn.
func (c *Controller) Submit(ctx context.Context) (turn model.Turn, submitted bool) {
	query, ok := c.Begin()
	if !ok {
		return model.Turn{}, false
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("query panicked")
			turn, submitted = c.Resolve(nil, fmt.Errorf("%v", r)), true
		}
	}()

	resp, err := c.querier.Query(ctx, query)
	return c.Resolve(resp, err), true
}

// Begin starts a cycle. It trims the pending input, clears it, marks the
// controller busy and appends the user turn. It returns the query to send,
// or false when the input is blank or a request is already outstanding; in
// that case nothing changes.
func (c *Controller) Begin() (string, bool) {
	if c.busy {
		c.logger.Debug().Msg("submit ignored: request outstanding")
		return "", false
	}

	query := strings.TrimSpace(c.pendingInput)
	if query == "" {
		return "", false
	}

	c.pendingInput = ""
	c.busy = true
	c.requestStart = time.Now()
	c.transcript.Append(model.NewUserTurn(query))
	c.stats.recordSubmit()

	c.logger.Debug().Int("turns", c.transcript.Len()).Msg("query submitted")
	return query, true
}

// Resolve completes the outstanding cycle with the result of the query and
// appends the assistant turn. Any error, or an answer whose provenance is
// inconsistent, becomes an error turn. busy is cleared last. Resolve without
// a preceding Begin is ignored and returns a zero Turn.
func (c *Controller) Resolve(resp *queryapi.QueryResponse, err error) model.Turn {
	if !c.busy {
		c.logger.Warn().Msg("resolve without outstanding request")
		return model.Turn{}
	}
	defer func() { c.busy = false }()

	latency := time.Since(c.requestStart)

	if err == nil && resp == nil {
		err = &queryapi.MalformedResponseError{Reason: "empty response"}
	}

	var answer model.Turn
	if err == nil {
		answer = model.NewAnswerTurn(
			resp.Response,
			resp.Metadata.Source,
			model.QueryType(resp.Metadata.QueryType),
			resp.Metadata.SimilarityScore,
		)
		if verr := answer.Validate(); verr != nil {
			err = &queryapi.MalformedResponseError{Reason: verr.Error()}
		}
	}

	if err != nil {
		turn := c.transcript.Append(model.NewErrorTurn(FormatError(err, c.port)))
		c.stats.recordError(queryapi.KindOf(err), latency)
		c.logger.Info().Err(err).Str("kind", string(queryapi.KindOf(err))).Msg("query failed")
		return turn
	}

	turn := c.transcript.Append(answer)
	c.stats.recordAnswer(turn, latency)
	c.logger.Debug().
		Str("source", turn.Source).
		Str("query_type", turn.QueryType.String()).
		Dur("latency", latency).
		Msg("query answered")
	return turn
}

// FormatError renders the user-visible text of an error turn.
func FormatError(err error, port string) string {
	if port == "" {
		port = DefaultPort
	}
	return fmt.Sprintf("Error: %s. Please make sure the backend server is running on port %s.", err.Error(), port)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Turns returns a copy of the transcript in conversation order.
func (c *Controller) Turns() []model.Turn {
	return c.transcript.Turns()
}

// Len returns the number of turns in the transcript.
func (c *Controller) Len() int {
	return c.transcript.Len()
}

// Transcript returns the underlying append-only transcript.
func (c *Controller) Transcript() *model.Transcript {
	return c.transcript
}

// LastAnswer returns the most recent answered assistant turn.
func (c *Controller) LastAnswer() (model.Turn, bool) {
	return c.transcript.LastAnswer()
}

// Stats returns a snapshot of the session statistics.
func (c *Controller) Stats() Stats {
	return c.stats.Snapshot()
}

// Port returns the port named in error turns.
func (c *Controller) Port() string {
	return c.port
}
