// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package queryapi

// =============================================================================
// WIRE TYPES
// =============================================================================

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query        string `json:"query"`
	ForceRefresh bool   `json:"forceRefresh"`
}

// Metadata describes the provenance of an answer.
type Metadata struct {
	// Source is where the answer came from, e.g. "cache" or "llm".
	Source string `json:"source"`

	// QueryType is the service's classification; empty when absent.
	QueryType string `json:"query_type,omitempty"`

	// SimilarityScore is reported for semantic cache hits only.
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
}

// QueryResponse is a validated answer from the service.
type QueryResponse struct {
	Response string   `json:"response"`
	Metadata Metadata `json:"metadata"`
}

// wireResponse mirrors QueryResponse with pointers so missing fields can be
// told apart from empty ones.
type wireResponse struct {
	Response *string `json:"response"`
	Metadata *struct {
		Source          *string  `json:"source"`
		QueryType       *string  `json:"query_type"`
		SimilarityScore *float64 `json:"similarity_score"`
	} `json:"metadata"`
}

// validate converts the wire form into a QueryResponse.
func (w *wireResponse) validate() (*QueryResponse, error) {
	if w.Response == nil {
		return nil, &MalformedResponseError{Reason: "missing response field"}
	}
	if w.Metadata == nil {
		return nil, &MalformedResponseError{Reason: "missing metadata"}
	}
	if w.Metadata.Source == nil {
		return nil, &MalformedResponseError{Reason: "missing metadata.source"}
	}

	out := &QueryResponse{
		Response: *w.Response,
		Metadata: Metadata{
			Source:          *w.Metadata.Source,
			SimilarityScore: w.Metadata.SimilarityScore,
		},
	}
	if w.Metadata.QueryType != nil {
		out.Metadata.QueryType = *w.Metadata.QueryType
	}
	return out, nil
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status           string `json:"status"`
	RedisConnected   bool   `json:"redis_connected"`
	APIKeyConfigured bool   `json:"api_key_configured"`
	Error            string `json:"error,omitempty"`
}

// IsHealthy returns true when the service reports itself healthy.
func (h *HealthStatus) IsHealthy() bool {
	return h != nil && h.Status == "healthy"
}
