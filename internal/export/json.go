// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/semchat/internal/conversation"
	"github.com/jeranaias/semchat/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports transcripts to JSON format.
// JSON exports always include the complete transcript and statistics.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// jsonTurn adds the derived presentation label to a turn.
type jsonTurn struct {
	model.Turn
	Label string `json:"label,omitempty"`
}

type jsonDocument struct {
	SessionID  string             `json:"session_id"`
	Title      string             `json:"title"`
	ServiceURL string             `json:"service_url,omitempty"`
	StartedAt  *time.Time         `json:"started_at,omitempty"`
	ExportedAt time.Time          `json:"exported_at"`
	Turns      []jsonTurn         `json:"turns"`
	Stats      conversation.Stats `json:"stats"`
}

// Export converts a document to indented JSON.
func (e *JSONExporter) Export(doc *Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	out := jsonDocument{
		SessionID:  doc.SessionID,
		Title:      doc.Title,
		ServiceURL: doc.ServiceURL,
		ExportedAt: e.options.now(),
		Turns:      make([]jsonTurn, 0, len(doc.Turns)),
		Stats:      doc.Stats,
	}
	if doc.Transcript != nil {
		started := doc.Transcript.StartedAt
		out.StartedAt = &started
	}
	for _, t := range doc.Turns {
		jt := jsonTurn{Turn: t}
		if t.IsAnswer() && t.HasQueryType() {
			jt.Label = conversation.DerivePresentation(t).Label
		}
		out.Turns = append(out.Turns, jt)
	}

	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
