// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation implements the client-side conversation controller.
//
// A Controller holds the transcript, the pending input and a busy flag. Each
// submission appends the user's turn immediately, makes exactly one request,
// then appends either the answer (with its source and query type) or an
// error turn. The busy flag is cleared on every exit path.
//
// # Key Types
//
//   - Controller: SetPendingInput, Submit, Begin/Resolve
//   - Presentation: label and emphasis for a turn's query type
//   - Stats: per-session counters by source, query type and error kind
//
// # Usage
//
// Blocking, for CLI commands:
//
//	c := conversation.New(client, conversation.WithPort(client.Port()))
//	c.SetPendingInput("What is the capital of France?")
//	turn, _ := c.Submit(ctx)
//
// Split, for event loops that run the request elsewhere:
//
//	query, ok := c.Begin()
//	// ... later, on the owning goroutine:
//	turn := c.Resolve(resp, err)
package conversation
