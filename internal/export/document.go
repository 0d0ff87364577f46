// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"github.com/jeranaias/semchat/internal/conversation"
	"github.com/jeranaias/semchat/internal/model"
	"github.com/jeranaias/semchat/internal/util"
)

// Document is a snapshot of a session ready for export.
type Document struct {
	SessionID  string
	Title      string
	ServiceURL string
	Transcript *model.Transcript
	Turns      []model.Turn
	Stats      conversation.Stats
}

// NewDocument snapshots the controller's transcript and statistics.
// The title is a preview of the first user turn.
func NewDocument(c *conversation.Controller, serviceURL string) *Document {
	turns := c.Turns()
	title := "Semantic Cache Chat"
	for _, t := range turns {
		if t.IsUser() {
			title = util.Preview(t.Content, 60)
			break
		}
	}

	return &Document{
		SessionID:  c.Transcript().ID,
		Title:      title,
		ServiceURL: serviceURL,
		Transcript: c.Transcript(),
		Turns:      turns,
		Stats:      c.Stats(),
	}
}

func (d *Document) validate() error {
	if d == nil {
		return errNilDocument
	}
	if len(d.Turns) == 0 {
		return errEmptyDocument
	}
	return nil
}
