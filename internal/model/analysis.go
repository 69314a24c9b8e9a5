// Package model defines the core data types returned by the AI backends.
// Struct tags use the exact camelCase field names the frontend and the
// AI response schemas agree on, so a result can be decoded straight from
// the model output and re-encoded for API responses unchanged.
package model

import "fmt"

// Severity ranks a watch-out called out in a document.
// Go doesn't have enums, so we use typed string constants plus a Valid method.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AllSeverities is the ordered domain of Severity, used for schemas.
var AllSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// Sentiment is the overall tone of an analyzed document.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

var AllSentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	default:
		return false
	}
}

// WatchOut is a risk call-out extracted from a document.
type WatchOut struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// DocumentAnalysis is the structured summary of one uploaded document.
// It is created once per successful analysis and never mutated afterwards.
type DocumentAnalysis struct {
	Summary            string     `json:"summary"`
	KeyInsights        []string   `json:"keyInsights"`
	DataInterpretation string     `json:"dataInterpretation"`
	WatchOuts          []WatchOut `json:"watchOuts"`
	Sentiment          Sentiment  `json:"sentiment"`
}

// Validate reports the first field that falls outside its declared domain.
// Slices are normalized to empty (not nil) so they encode as [] instead of null.
func (d *DocumentAnalysis) Validate() error {
	if d.Summary == "" {
		return fmt.Errorf("summary is empty")
	}
	if !d.Sentiment.Valid() {
		return fmt.Errorf("sentiment %q is not one of positive, neutral, negative", d.Sentiment)
	}
	for i, w := range d.WatchOuts {
		if w.Title == "" {
			return fmt.Errorf("watchOuts[%d] has no title", i)
		}
		if !w.Severity.Valid() {
			return fmt.Errorf("watchOuts[%d] severity %q is not one of low, medium, high", i, w.Severity)
		}
	}
	if d.KeyInsights == nil {
		d.KeyInsights = []string{}
	}
	if d.WatchOuts == nil {
		d.WatchOuts = []WatchOut{}
	}
	return nil
}
