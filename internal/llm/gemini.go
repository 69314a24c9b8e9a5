package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
)

// GeminiClient is a thin wrapper around the official genai client.
// Documents go out as inline data with a response schema (structured output);
// market predictions go out with the Google Search tool for grounding.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a Gemini-backed client. An empty apiKey lets the
// SDK fall back to GEMINI_API_KEY / GOOGLE_API_KEY from the environment.
// baseURL is only set in tests, to point the SDK at a local server.
func NewGeminiClient(ctx context.Context, apiKey, modelName, baseURL string) (*GeminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiClient{cli: cli, model: modelName}, nil
}

func (g *GeminiClient) ProviderName() string { return "gemini" }
func (g *GeminiClient) ModelName() string    { return g.model }

// AnalyzeDocument sends the document bytes as inline data. The SDK base64
// encodes Blob.Data on the wire, so the raw bytes are passed through untouched.
func (g *GeminiClient) AnalyzeDocument(ctx context.Context, doc DocumentInput) (*Response, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(doc.Data, doc.MIMEType),
			genai.NewPartFromText(documentPrompt),
		}, genai.RoleUser),
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   documentSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	payload, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	return &Response{Payload: payload}, nil
}

// PredictMarket asks for a grounded prediction. The citations come from the
// grounding metadata of the candidate, not from the model's own text.
func (g *GeminiClient) PredictMarket(ctx context.Context, symbol string) (*Response, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(buildMarketPrompt(symbol), genai.RoleUser),
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	payload, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	return &Response{Payload: payload, Sources: groundingSources(resp)}, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String())
}

func groundingSources(resp *genai.GenerateContentResponse) []model.GroundingSource {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	gm := resp.Candidates[0].GroundingMetadata
	if gm == nil {
		return nil
	}
	var sources []model.GroundingSource
	for _, chunk := range gm.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, model.GroundingSource{
			Title: chunk.Web.Title,
			URI:   chunk.Web.URI,
		})
	}
	return sources
}

// documentSchema mirrors model.DocumentAnalysis in genai's schema dialect.
func documentSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	strList := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: desc}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary":            str("Concise executive summary of the document."),
			"keyInsights":        strList("Most important takeaways, ordered by importance."),
			"dataInterpretation": str("Interpretation of the figures and metrics in the document."),
			"watchOuts": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       str("Short name of the risk."),
						"description": str("What the risk is and why it matters."),
						"severity":    {Type: genai.TypeString, Enum: severityValues()},
					},
					Required:         []string{"title", "description", "severity"},
					PropertyOrdering: []string{"title", "description", "severity"},
				},
			},
			"sentiment": {Type: genai.TypeString, Enum: sentimentValues()},
		},
		Required:         documentRequired,
		PropertyOrdering: documentRequired,
	}
}
