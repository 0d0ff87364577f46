// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package queryapi is the HTTP client for the semantic-cache query service.
//
// The service answers questions at POST /api/query and reports its own state
// at GET /health. The client never retries and never asks the service to
// bypass its cache.
//
// # Key Types
//
//   - Client: Service client (Query, Health)
//   - QueryResponse: Validated answer with provenance Metadata
//   - HealthStatus: Health report (status, redis, API key)
//   - TransportError, ServiceError, MalformedResponseError: failure classes
//
// # Usage
//
//	client := queryapi.NewClient("http://localhost:8000").WithLogger(logger)
//	resp, err := client.Query(ctx, "What is the capital of France?")
//	if err != nil {
//	    switch queryapi.KindOf(err) { ... }
//	}
//	fmt.Println(resp.Response, resp.Metadata.Source)
package queryapi
