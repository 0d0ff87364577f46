// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversation turns and transcripts.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/semchat/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the speaker of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// QUERY TYPE
// =============================================================================

// QueryType is the service's classification of a query.
// The zero value means the classification is absent.
type QueryType string

const (
	QueryTypeTimeSensitive QueryType = "timesensitive"
	QueryTypeEvergreen     QueryType = "evergreen"
)

// String returns the raw classification value.
func (q QueryType) String() string {
	return string(q)
}

// IsTimeSensitive reports whether the classification is time-sensitive.
func (q QueryType) IsTimeSensitive() bool {
	return q == QueryTypeTimeSensitive
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is one entry in a transcript. Turns are values; once appended to a
// Transcript they are never modified.
type Turn struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Provenance (answered assistant turns only)
	Source          string    `json:"source,omitempty"`
	QueryType       QueryType `json:"query_type,omitempty"`
	SimilarityScore *float64  `json:"similarity_score,omitempty"`

	// Failed marks an assistant turn that reports a failed request.
	Failed bool `json:"error,omitempty"`
}

// NewUserTurn creates a user turn carrying the submitted query text.
func NewUserTurn(content string) Turn {
	return Turn{
		ID:        generateID(),
		Role:      RoleUser,
		Timestamp: time.Now(),
		Content:   content,
	}
}

// NewAnswerTurn creates an assistant turn for a successful answer.
// score may be nil when the service did not report one.
func NewAnswerTurn(content, source string, queryType QueryType, score *float64) Turn {
	return Turn{
		ID:              generateID(),
		Role:            RoleAssistant,
		Timestamp:       time.Now(),
		Content:         content,
		Source:          source,
		QueryType:       queryType,
		SimilarityScore: score,
	}
}

// NewErrorTurn creates an assistant turn describing a failed request.
// Error turns never carry provenance.
func NewErrorTurn(content string) Turn {
	return Turn{
		ID:        generateID(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		Content:   content,
		Failed:    true,
	}
}

// =============================================================================
// TURN METHODS
// =============================================================================

// IsUser returns true for user turns.
func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}

// IsAnswer returns true for assistant turns carrying an answer.
func (t Turn) IsAnswer() bool {
	return t.Role == RoleAssistant && !t.Failed
}

// IsError returns true for assistant turns reporting a failure.
func (t Turn) IsError() bool {
	return t.Role == RoleAssistant && t.Failed
}

// HasQueryType returns true when the service classified the query.
func (t Turn) HasQueryType() bool {
	return t.QueryType != ""
}

// Validate checks the turn's structural invariants. An assistant turn with
// a query type must also carry a source.
func (t Turn) Validate() error {
	switch t.Role {
	case RoleUser:
		if t.Source != "" || t.QueryType != "" || t.Failed {
			return fmt.Errorf("user turn carries assistant fields")
		}
	case RoleAssistant:
		if t.Failed && (t.Source != "" || t.QueryType != "" || t.SimilarityScore != nil) {
			return fmt.Errorf("error turn carries provenance")
		}
		if !t.Failed && t.QueryType != "" && t.Source == "" {
			return fmt.Errorf("query type without a source")
		}
	default:
		return fmt.Errorf("unknown role %q", t.Role)
	}
	return nil
}

// Preview returns a one-line preview of the turn content.
func (t Turn) Preview(maxWidth int) string {
	return util.Preview(t.Content, maxWidth)
}

// FormatScore returns the similarity score formatted for display, or "" when absent.
func (t Turn) FormatScore() string {
	if t.SimilarityScore == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *t.SimilarityScore)
}

// generateID creates a unique turn identifier.
func generateID() string {
	return uuid.NewString()
}
