// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversation turns and transcripts.
//
// # Key Types
//
//   - Turn: One user query or assistant reply, with optional provenance
//     (source, query type, similarity score)
//   - Transcript: Append-only ordered record of a session's turns
//   - Role: Turn speaker (user, assistant)
//   - QueryType: Service classification (timesensitive, evergreen)
//
// A Transcript lives for one session and is never persisted.
//
// # Usage
//
//	tr := model.NewTranscript()
//	tr.Append(model.NewUserTurn("What is the capital of France?"))
//	tr.Append(model.NewAnswerTurn("Paris.", "cache", model.QueryTypeEvergreen, nil))
package model
