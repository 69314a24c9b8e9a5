package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
)

// OpenAIClient implements the Client interface using OpenAI chat completions.
// Chat completions can't take PDF uploads, so only market predictions are
// served here; config validation keeps it off the document path.
//
// Market predictions need a search-preview model (gpt-4o-search-preview and
// friends). Those models search the web on every call but reject tools, so
// the JSON shape travels in the prompt and the reply goes through ExtractJSON.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI-powered client. baseURL is empty in
// production and points at a stand-in server in tests.
func NewOpenAIClient(apiKey string, modelName string, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &citationRecorder{next: &http.Client{}}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  modelName,
	}
}

func (o *OpenAIClient) ProviderName() string { return "openai" }
func (o *OpenAIClient) ModelName() string    { return o.model }

func (o *OpenAIClient) AnalyzeDocument(_ context.Context, _ DocumentInput) (*Response, error) {
	return nil, fmt.Errorf("%w: openai chat completions cannot read document uploads", ErrUnsupported)
}

func (o *OpenAIClient) PredictMarket(ctx context.Context, symbol string) (*Response, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: "You are a market research assistant. Produce grounded, sourced market predictions as a single JSON object.",
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: buildMarketPrompt(symbol),
		},
	}

	var sources []model.GroundingSource
	ctx = context.WithValue(ctx, citationSinkKey{}, &sources)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("openai API call: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}
	payload, err := ExtractJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return &Response{Payload: payload, Sources: sources}, nil
}

// go-openai does not decode message annotations, so the url_citation entries
// the search models attach are read off the raw response body instead.

type citationSinkKey struct{}

// citationRecorder wraps the HTTP client go-openai uses. When the request
// context carries a sink it copies the response body, records the citations,
// and hands the SDK an untouched body.
type citationRecorder struct {
	next openai.HTTPDoer
}

func (c *citationRecorder) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.next.Do(req)
	if err != nil {
		return resp, err
	}
	sink, ok := req.Context().Value(citationSinkKey{}).(*[]model.GroundingSource)
	if !ok || resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading openai response: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	*sink = urlCitations(body)
	return resp, nil
}

type annotatedCompletion struct {
	Choices []struct {
		Message struct {
			Annotations []struct {
				Type        string `json:"type"`
				URLCitation struct {
					Title string `json:"title"`
					URL   string `json:"url"`
				} `json:"url_citation"`
			} `json:"annotations"`
		} `json:"message"`
	} `json:"choices"`
}

// urlCitations returns the url_citation annotations of the first choice.
// A body that doesn't decode yields no citations; the SDK reports the error.
func urlCitations(body []byte) []model.GroundingSource {
	var completion annotatedCompletion
	if err := json.Unmarshal(body, &completion); err != nil || len(completion.Choices) == 0 {
		return nil
	}
	var sources []model.GroundingSource
	for _, a := range completion.Choices[0].Message.Annotations {
		if a.Type != "url_citation" || a.URLCitation.URL == "" {
			continue
		}
		sources = append(sources, model.GroundingSource{Title: a.URLCitation.Title, URI: a.URLCitation.URL})
	}
	return sources
}
