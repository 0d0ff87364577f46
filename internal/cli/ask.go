// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/semchat/internal/conversation"
	"github.com/jeranaias/semchat/internal/model"
)

// maxStdinQuestion bounds a question read from stdin.
const maxStdinQuestion = 64 * 1024

var errNoQuestion = errors.New("no question given; usage: semchat ask <question>")

// AskResult is the --json payload of "semchat ask".
type AskResult struct {
	Query           string   `json:"query"`
	Answer          string   `json:"answer"`
	Source          string   `json:"source,omitempty"`
	QueryType       string   `json:"query_type,omitempty"`
	Label           string   `json:"label,omitempty"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
	Error           bool     `json:"error"`
}

func (a *App) newAskCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask one question and print the answer",
		Long: `Ask sends one question to the query service and prints the answer followed
by its provenance. The exit status is 1 when the question could not be
answered. With no arguments the question is read from stdin.`,
		Example: `  semchat ask "What is the capital of France?"
  semchat ask --json what is the weather in Paris today
  echo "explain DNS" | semchat ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, args, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as JSON")
	return cmd
}

func (a *App) runAsk(cmd *cobra.Command, args []string, jsonOut bool) error {
	question := strings.Join(args, " ")
	if strings.TrimSpace(question) == "" {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxStdinQuestion))
		if err != nil {
			return errors.Wrap(err, "failed to read question from stdin")
		}
		question = string(data)
	}
	if strings.TrimSpace(question) == "" {
		return errNoQuestion
	}

	client := a.newClient()
	ctrl := a.newController(client)
	ctrl.SetPendingInput(question)

	turn, ok := ctrl.Submit(cmd.Context())
	if !ok {
		return errNoQuestion
	}

	if jsonOut {
		result := newAskResult(strings.TrimSpace(question), turn)
		resp := NewJSONResponse("ask", result)
		if turn.IsError() {
			resp = NewJSONErrorResponse("ask", turn.Content, result)
		}
		if err := resp.Write(cmd.OutOrStdout()); err != nil {
			return err
		}
	} else if turn.IsError() {
		a.printTurn(cmd.ErrOrStderr(), turn)
	} else {
		a.printTurn(cmd.OutOrStdout(), turn)
	}

	if turn.IsError() {
		return &ExitError{Code: 1}
	}
	return nil
}

func newAskResult(query string, turn model.Turn) AskResult {
	result := AskResult{
		Query:  query,
		Answer: turn.Content,
		Error:  turn.IsError(),
	}
	if turn.IsAnswer() {
		result.Source = turn.Source
		result.QueryType = turn.QueryType.String()
		if turn.HasQueryType() {
			result.Label = conversation.DerivePresentation(turn).Label
		}
		result.SimilarityScore = turn.SimilarityScore
	}
	return result
}
