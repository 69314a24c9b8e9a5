package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
)

const (
	submitAnalysisTool   = "submit_analysis"
	submitPredictionTool = "submit_prediction"
)

// AnthropicClient implements the Client interface using Claude.
// Documents are attached as base64 document blocks; market predictions use
// Claude's built-in web_search tool. Both return their result by calling a
// custom "submit" tool so we get clean JSON instead of free-form text.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a new Claude-powered client. baseURL is empty in
// production and points at a stand-in server in tests. SDK retries are off:
// each operation makes exactly one outbound call.
func NewAnthropicClient(apiKey string, modelName string, baseURL string) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client: &client,
		model:  modelName,
	}
}

func (a *AnthropicClient) ProviderName() string { return "anthropic" }
func (a *AnthropicClient) ModelName() string    { return a.model }

func (a *AnthropicClient) AnalyzeDocument(ctx context.Context, doc DocumentInput) (*Response, error) {
	docBlock, err := documentBlock(doc)
	if err != nil {
		return nil, err
	}

	submitTool := anthropic.ToolParam{
		Name:        submitAnalysisTool,
		Description: param.NewOpt("Submit the structured analysis of the attached document. Call this tool exactly once."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: documentSchemaProperties(),
			Required:   documentRequired,
		},
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				docBlock,
				anthropic.NewTextBlock(documentPrompt+"\n\nCall the "+submitAnalysisTool+" tool with your analysis."),
			),
		},
		Tools: []anthropic.ToolUnionParam{{OfTool: &submitTool}},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	payload, _, err := submittedPayload(message, submitAnalysisTool)
	if err != nil {
		return nil, err
	}
	return &Response{Payload: payload}, nil
}

// PredictMarket makes one Messages call with web_search + submit_prediction.
// Web searches run server-side within that single call, so there's no
// client-side agentic loop here.
func (a *AnthropicClient) PredictMarket(ctx context.Context, symbol string) (*Response, error) {
	submitTool := anthropic.ToolParam{
		Name:        submitPredictionTool,
		Description: param.NewOpt("Submit the market prediction once your research is complete. Include every web page you relied on in sources."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: marketSchemaProperties(),
			Required:   marketRequired,
		},
	}

	tools := []anthropic.ToolUnionParam{
		{OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{}},
		{OfTool: &submitTool},
	}

	prompt := buildMarketPrompt(symbol) + "\n\nWhen done, call the " + submitPredictionTool + " tool with that object."
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: tools,
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	payload, sources, err := submittedPayload(message, submitPredictionTool)
	if err != nil {
		return nil, err
	}
	return &Response{Payload: payload, Sources: sources}, nil
}

// documentBlock picks the Claude content block for the upload's mime type.
func documentBlock(doc DocumentInput) (anthropic.ContentBlockParamUnion, error) {
	encoded := base64.StdEncoding.EncodeToString(doc.Data)
	mime := strings.ToLower(doc.MIMEType)

	switch {
	case mime == "application/pdf":
		return anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: encoded}), nil
	case strings.HasPrefix(mime, "text/"):
		return anthropic.NewDocumentBlock(anthropic.PlainTextSourceParam{Data: string(doc.Data)}), nil
	case strings.HasPrefix(mime, "image/"):
		return anthropic.NewImageBlockBase64(mime, encoded), nil
	default:
		return anthropic.ContentBlockParamUnion{}, fmt.Errorf("%w: anthropic cannot read %q documents", ErrUnsupported, doc.MIMEType)
	}
}

// submittedPayload returns the input Claude passed to the submit tool. When
// the model answered in plain text instead, we try to pull JSON from it.
// Pages returned by server-side web searches come back as grounding sources.
func submittedPayload(message *anthropic.Message, toolName string) (json.RawMessage, []model.GroundingSource, error) {
	var (
		text    strings.Builder
		input   json.RawMessage
		sources []model.GroundingSource
	)

	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.ToolUseBlock:
			if b.Name != toolName || input != nil {
				continue
			}
			inputBytes, err := json.Marshal(b.Input)
			if err != nil {
				return nil, nil, fmt.Errorf("marshaling tool input: %w", err)
			}
			input = inputBytes
		case anthropic.WebSearchToolResultBlock:
			// An error result carries no array and adds nothing.
			for _, r := range b.Content.OfWebSearchResultBlockArray {
				if r.URL == "" {
					continue
				}
				sources = append(sources, model.GroundingSource{Title: r.Title, URI: r.URL})
			}
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		}
	}

	if input != nil {
		return input, sources, nil
	}
	if text.Len() == 0 {
		return nil, nil, ErrEmptyResponse
	}
	payload, err := ExtractJSON(text.String())
	if err != nil {
		return nil, nil, err
	}
	return payload, sources, nil
}
