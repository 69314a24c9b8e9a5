package llm

import (
	"bytes"
	"encoding/json"
)

// ExtractJSON pulls the JSON object out of a model's text answer. Models
// asked for "only JSON" still wrap it in ```json fences or add a sentence
// before it, so we strip fences and fall back to the outermost {...} span.
func ExtractJSON(text string) (json.RawMessage, error) {
	b := bytes.TrimSpace([]byte(text))
	if len(b) == 0 {
		return nil, ErrEmptyResponse
	}

	if bytes.HasPrefix(b, []byte("```")) {
		b = bytes.TrimPrefix(b, []byte("```json"))
		b = bytes.TrimPrefix(b, []byte("```JSON"))
		b = bytes.TrimPrefix(b, []byte("```"))
		b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
		b = bytes.TrimSpace(b)
	}

	if json.Valid(b) {
		return json.RawMessage(b), nil
	}

	start := bytes.IndexByte(b, '{')
	end := bytes.LastIndexByte(b, '}')
	if start >= 0 && end > start && json.Valid(b[start:end+1]) {
		return json.RawMessage(b[start : end+1]), nil
	}

	// Hand back the raw text so the caller's decoder reports the real problem.
	return json.RawMessage(b), nil
}
