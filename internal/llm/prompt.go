package llm

import (
	"fmt"
	"strings"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
)

const documentPrompt = `You are a senior analyst reviewing the attached document.

Produce a structured analysis with:
- summary: a concise executive summary of the whole document
- keyInsights: the most important takeaways, ordered by importance
- dataInterpretation: what the figures, tables and metrics in the document actually mean
- watchOuts: risks, red flags or caveats a reader must not miss, each with a title,
  a description and a severity of low, medium or high
- sentiment: the overall tone of the document, one of positive, neutral or negative

Base every statement on the document itself. Do not invent figures.`

// buildMarketPrompt asks for a search-grounded outlook on one ticker.
// The JSON shape is spelled out in the prompt because grounded calls can't
// always be combined with a response schema on the provider side.
func buildMarketPrompt(symbol string) string {
	return fmt.Sprintf(`Search the web for the latest news, filings and analyst coverage of the ticker symbol "%s"
and produce a market prediction.

Respond with a single JSON object and nothing else, using exactly this shape:
{
  "symbol": "%s",
  "currentTrend": one of %s,
  "priceTarget": "a price target with currency, e.g. \"$150\"",
  "rationale": "why you expect this trend, citing what you found",
  "catalysts": ["upcoming events or drivers that could move the price"],
  "risks": ["factors that could invalidate the prediction"],
  "sources": [{"title": "source title", "uri": "https://..."}]
}

Only include sources you actually consulted.`, symbol, symbol, quoteList(trendValues()))
}

func trendValues() []string {
	out := make([]string, len(model.AllTrends))
	for i, t := range model.AllTrends {
		out[i] = string(t)
	}
	return out
}

func severityValues() []string {
	out := make([]string, len(model.AllSeverities))
	for i, s := range model.AllSeverities {
		out[i] = string(s)
	}
	return out
}

func sentimentValues() []string {
	out := make([]string, len(model.AllSentiments))
	for i, s := range model.AllSentiments {
		out[i] = string(s)
	}
	return out
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
