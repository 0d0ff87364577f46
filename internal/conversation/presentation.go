// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import "github.com/jeranaias/semchat/internal/model"

// Emphasis is the visual weight given to a provenance label.
type Emphasis int

const (
	EmphasisDefault Emphasis = iota
	EmphasisAlert
)

// String returns the emphasis name.
func (e Emphasis) String() string {
	if e == EmphasisAlert {
		return "alert"
	}
	return "default"
}

// Labels for query types.
const (
	LabelTimeSensitive = "Time-Sensitive"
	LabelEvergreen     = "Evergreen"
)

// Presentation is how a turn's query type is displayed.
type Presentation struct {
	Label    string
	Emphasis Emphasis
}

// DerivePresentation maps a turn's query type to its label and emphasis.
// It is total: any value other than timesensitive, including an absent one,
// is presented as evergreen.
func DerivePresentation(turn model.Turn) Presentation {
	return PresentationFor(turn.QueryType)
}

// PresentationFor is DerivePresentation keyed on the query type alone.
func PresentationFor(qt model.QueryType) Presentation {
	if qt.IsTimeSensitive() {
		return Presentation{Label: LabelTimeSensitive, Emphasis: EmphasisAlert}
	}
	return Presentation{Label: LabelEvergreen, Emphasis: EmphasisDefault}
}
