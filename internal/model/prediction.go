package model

import (
	"fmt"
	"strings"
)

// Trend is the direction a market prediction calls for a symbol.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

var AllTrends = []Trend{TrendBullish, TrendBearish, TrendNeutral}

func (t Trend) Valid() bool {
	switch t {
	case TrendBullish, TrendBearish, TrendNeutral:
		return true
	default:
		return false
	}
}

// GroundingSource is a citation returned by a search-grounded model.
// URIs are passed through as-is; nothing checks that they resolve.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// StockPrediction is the structured market outlook for one ticker symbol.
type StockPrediction struct {
	Symbol       string            `json:"symbol"`
	CurrentTrend Trend             `json:"currentTrend"`
	PriceTarget  string            `json:"priceTarget"`
	Rationale    string            `json:"rationale"`
	Catalysts    []string          `json:"catalysts"`
	Risks        []string          `json:"risks"`
	Sources      []GroundingSource `json:"sources"`
}

// Validate checks enum domains and fills empty slices.
func (p *StockPrediction) Validate() error {
	if p.Symbol == "" {
		return fmt.Errorf("symbol is empty")
	}
	if !p.CurrentTrend.Valid() {
		return fmt.Errorf("currentTrend %q is not one of bullish, bearish, neutral", p.CurrentTrend)
	}
	if p.Catalysts == nil {
		p.Catalysts = []string{}
	}
	if p.Risks == nil {
		p.Risks = []string{}
	}
	if p.Sources == nil {
		p.Sources = []GroundingSource{}
	}
	return nil
}

// NormalizeSymbol trims and uppercases a free-form ticker.
// No exchange lookup happens: "btc" becomes "BTC" and that's it.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// MergeSources appends extra citations to base, dropping entries without a
// URI and any URI already present. Order of first appearance is kept.
func MergeSources(base []GroundingSource, extra ...GroundingSource) []GroundingSource {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]GroundingSource, 0, len(base)+len(extra))
	for _, s := range append(append([]GroundingSource{}, base...), extra...) {
		uri := strings.TrimSpace(s.URI)
		if uri == "" {
			continue
		}
		if _, ok := seen[uri]; ok {
			continue
		}
		seen[uri] = struct{}{}
		title := strings.TrimSpace(s.Title)
		if title == "" {
			title = uri
		}
		out = append(out, GroundingSource{Title: title, URI: uri})
	}
	return out
}
