// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/semchat/internal/queryapi"
)

// =============================================================================
// QUERY MESSAGES
// =============================================================================

// queryResultMsg carries the outcome of one query back into Update.
type queryResultMsg struct {
	Response *queryapi.QueryResponse
	Err      error
}

// =============================================================================
// SERVICE MESSAGES
// =============================================================================

// serviceState is the result of the startup health check.
type serviceState int

const (
	serviceChecking serviceState = iota
	serviceHealthy
	serviceUnhealthy
	serviceUnreachable
)

// String returns the header text for the state.
func (s serviceState) String() string {
	switch s {
	case serviceHealthy:
		return "service healthy"
	case serviceUnhealthy:
		return "service unhealthy"
	case serviceUnreachable:
		return "service unreachable"
	default:
		return "checking service..."
	}
}

// healthMsg carries the outcome of the startup health check.
type healthMsg struct {
	Status *queryapi.HealthStatus
	Err    error
}

// =============================================================================
// ACTION MESSAGES
// =============================================================================

// exportCompleteMsg reports the result of a transcript export.
type exportCompleteMsg struct {
	Path string
	Err  error
}

// copyCompleteMsg reports the result of a clipboard copy.
type copyCompleteMsg struct {
	Chars int
	Err   error
}
