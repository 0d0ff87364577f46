// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the append-only, ordered record of a session's turns.
// Insertion order is conversation order; turns are never reordered or removed.
type Transcript struct {
	ID        string
	StartedAt time.Time

	turns []Turn
}

// NewTranscript creates an empty transcript for a new session.
func NewTranscript() *Transcript {
	return &Transcript{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		turns:     make([]Turn, 0, 16),
	}
}

// Append adds a turn to the end of the transcript and returns it.
func (t *Transcript) Append(turn Turn) Turn {
	t.turns = append(t.turns, turn)
	return turn
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// IsEmpty returns true if no turn has been appended yet.
func (t *Transcript) IsEmpty() bool {
	return len(t.turns) == 0
}

// Turns returns a copy of the turns in conversation order.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// LastAnswer returns the most recent successfully answered assistant turn.
func (t *Transcript) LastAnswer() (Turn, bool) {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if t.turns[i].IsAnswer() {
			return t.turns[i], true
		}
	}
	return Turn{}, false
}
