// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/semchat/internal/model"
	"github.com/jeranaias/semchat/internal/queryapi"
)

// SourceCache is the source value the service reports for cache hits.
const SourceCache = "cache"

// unclassified keys answers that arrived without a query type.
const unclassified = "unclassified"

// Stats tracks cumulative statistics for a conversation session.
type Stats struct {
	// Submitted is the number of cycles started.
	Submitted int `json:"submitted"`
	// Answered is the number of answered assistant turns.
	Answered int `json:"answered"`
	// Errors is the number of error turns.
	Errors int `json:"errors"`

	BySource    map[string]int `json:"by_source"`
	ByQueryType map[string]int `json:"by_query_type"`
	ByErrorKind map[string]int `json:"by_error_kind"`

	// TotalLatency is the summed wall time of completed cycles.
	TotalLatency time.Duration `json:"total_latency_ns"`
	// LastLatency is the wall time of the most recent cycle.
	LastLatency time.Duration `json:"last_latency_ns"`
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{
		BySource:    make(map[string]int),
		ByQueryType: make(map[string]int),
		ByErrorKind: make(map[string]int),
	}
}

func (s *Stats) recordSubmit() {
	s.Submitted++
}

func (s *Stats) recordAnswer(turn model.Turn, latency time.Duration) {
	s.Answered++
	s.BySource[turn.Source]++
	key := turn.QueryType.String()
	if key == "" {
		key = unclassified
	}
	s.ByQueryType[key]++
	s.recordLatency(latency)
}

func (s *Stats) recordError(kind queryapi.Kind, latency time.Duration) {
	s.Errors++
	if kind == queryapi.KindNone {
		kind = queryapi.KindUnknown
	}
	s.ByErrorKind[string(kind)]++
	s.recordLatency(latency)
}

func (s *Stats) recordLatency(latency time.Duration) {
	s.LastLatency = latency
	s.TotalLatency += latency
}

// Snapshot returns a deep copy.
func (s *Stats) Snapshot() Stats {
	out := *s
	out.BySource = cloneCounts(s.BySource)
	out.ByQueryType = cloneCounts(s.ByQueryType)
	out.ByErrorKind = cloneCounts(s.ByErrorKind)
	return out
}

// Completed returns the number of finished cycles.
func (s Stats) Completed() int {
	return s.Answered + s.Errors
}

// CacheHits returns the number of answers served from the cache.
func (s Stats) CacheHits() int {
	return s.BySource[SourceCache]
}

// CacheHitRate returns cache hits as a percentage of answers.
func (s Stats) CacheHitRate() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.CacheHits()) / float64(s.Answered) * 100
}

// AverageLatency returns the mean latency of completed cycles.
func (s Stats) AverageLatency() time.Duration {
	n := s.Completed()
	if n == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(n)
}

// Summary returns a human-readable one-line summary.
func (s Stats) Summary() string {
	if s.Completed() == 0 {
		return "No queries answered yet"
	}

	parts := []string{fmt.Sprintf("%d answered", s.Answered)}
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.Errors))
	}
	if s.Answered > 0 {
		parts = append(parts, fmt.Sprintf("%.0f%% from cache", s.CacheHitRate()))
	}
	if sources := formatCounts(s.BySource); sources != "" {
		parts = append(parts, "sources: "+sources)
	}
	if types := formatCounts(s.ByQueryType); types != "" {
		parts = append(parts, "types: "+types)
	}
	return strings.Join(parts, " | ")
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// formatCounts renders counts as "a=1, b=2" in key order.
func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, ", ")
}
