// Package llm provides a provider-agnostic interface over the generative-AI
// backends that read documents and produce market predictions. Each backend
// returns the model's raw JSON plus any citations it collected; decoding and
// schema validation happen one layer up, in the service package.
package llm

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
)

var (
	// ErrEmptyResponse means the backend answered but produced no usable output.
	ErrEmptyResponse = errors.New("llm: empty response from model")

	// ErrUnsupported is returned by backends that can't serve an operation.
	ErrUnsupported = errors.New("llm: operation not supported by provider")
)

// DocumentInput is one document forwarded to a backend as inline bytes.
// The backend never inspects Data; MIMEType is trusted as given.
type DocumentInput struct {
	Data     []byte
	MIMEType string
}

// Response is the raw model output of one call.
type Response struct {
	// Payload is the JSON object produced by the model, not yet validated.
	Payload json.RawMessage
	// Sources are citations taken from the backend's grounding data.
	Sources []model.GroundingSource
}

// Client is the interface every AI backend implements.
//
// Go interface design tip: keep interfaces small. Both operations live here
// because every provider shares its connection and model settings across them.
type Client interface {
	AnalyzeDocument(ctx context.Context, doc DocumentInput) (*Response, error)
	PredictMarket(ctx context.Context, symbol string) (*Response, error)
	ProviderName() string
	ModelName() string
}
