package llm

// JSON-schema style maps shared by the Anthropic tool input schema and the
// OpenAI function parameters. Both SDKs accept a plain map here, the same way
// the raw schema is passed for a tool definition.

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func enumProp(description string, values []string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "enum": values, "description": description}
}

func stringListProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": description,
	}
}

var documentRequired = []string{"summary", "keyInsights", "dataInterpretation", "watchOuts", "sentiment"}

func documentSchemaProperties() map[string]interface{} {
	return map[string]interface{}{
		"summary":            stringProp("Concise executive summary of the document."),
		"keyInsights":        stringListProp("Most important takeaways, ordered by importance."),
		"dataInterpretation": stringProp("Interpretation of the figures and metrics in the document."),
		"watchOuts": map[string]interface{}{
			"type":        "array",
			"description": "Risks and caveats the reader must not miss.",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":       stringProp("Short name of the risk."),
					"description": stringProp("What the risk is and why it matters."),
					"severity":    enumProp("How serious the risk is.", severityValues()),
				},
				"required": []string{"title", "description", "severity"},
			},
		},
		"sentiment": enumProp("Overall tone of the document.", sentimentValues()),
	}
}

var marketRequired = []string{"symbol", "currentTrend", "priceTarget", "rationale", "catalysts", "risks", "sources"}

func marketSchemaProperties() map[string]interface{} {
	return map[string]interface{}{
		"symbol":       stringProp("The ticker symbol, uppercase."),
		"currentTrend": enumProp("Expected direction of the price.", trendValues()),
		"priceTarget":  stringProp("Price target with currency, e.g. \"$150\"."),
		"rationale":    stringProp("Why this trend is expected, citing the sources consulted."),
		"catalysts":    stringListProp("Upcoming drivers that could move the price."),
		"risks":        stringListProp("Factors that could invalidate the prediction."),
		"sources": map[string]interface{}{
			"type":        "array",
			"description": "Web pages consulted while researching the prediction.",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title": stringProp("Title of the page."),
					"uri":   stringProp("URL of the page."),
				},
				"required": []string{"title", "uri"},
			},
		},
	}
}
