// Package service contains the request adapter that turns user input into
// exactly one AI backend call and the backend's JSON into typed results.
//
// Every call goes through the same steps:
//
//	1. Validate and normalize the input (InvalidInput on failure)
//	2. Wait for the process-wide call limiter (cost guard)
//	3. Call the configured backend under the request timeout (TransportError)
//	4. Decode and validate the JSON against the result schema (SchemaMismatch)
//	5. Record the call in the ledger (best effort, never fails the request)
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Takita08/Marko-Docu-Ai/internal/llm"
	"github.com/Takita08/Marko-Docu-Ai/internal/model"
	"github.com/Takita08/Marko-Docu-Ai/internal/storage"
	"github.com/Takita08/Marko-Docu-Ai/internal/trace"
)

// Options tunes the analyzer. Zero values mean "no limit" for RatePerMinute
// and a 90 second timeout.
type Options struct {
	RequestTimeout time.Duration
	RatePerMinute  int
}

// Analyzer is the request adapter. It holds no per-request state, so one
// instance is shared by every session and the CLI.
type Analyzer struct {
	docClient    llm.Client
	marketClient llm.Client
	limiter      *rate.Limiter
	calls        storage.CallRepository // nil disables the ledger
	timeout      time.Duration
	logger       *zap.Logger
}

// NewAnalyzer wires the analyzer to its backends.
func NewAnalyzer(clients *llm.Pair, opts Options, calls storage.CallRepository, logger *zap.Logger) *Analyzer {
	// Convert rate per minute into a token bucket. rate.Every returns a
	// rate.Limit from the interval between events.
	limit := rate.Inf
	if opts.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RatePerMinute))
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &Analyzer{
		docClient:    clients.Document,
		marketClient: clients.Market,
		limiter:      rate.NewLimiter(limit, 1),
		calls:        calls,
		timeout:      timeout,
		logger:       logger,
	}
}

// AnalyzeDocument forwards the raw document bytes to the document backend and
// returns the validated analysis. fileName is only used for the ledger and logs.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, fileName string, payload []byte, mimeType string) (*model.DocumentAnalysis, error) {
	if len(payload) == 0 {
		return nil, inputError("the uploaded file is empty")
	}
	if mimeType == "" {
		return nil, inputError("the document type could not be determined")
	}

	var analysis *model.DocumentAnalysis
	err := a.call(ctx, model.KindDocument, fileName, a.docClient, func(ctx context.Context) error {
		resp, err := a.docClient.AnalyzeDocument(ctx, llm.DocumentInput{Data: payload, MIMEType: mimeType})
		if err != nil {
			return classify(err)
		}
		analysis, err = decodeDocument(resp.Payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// PredictMarket normalizes the symbol and asks the market backend for a
// search-grounded prediction.
func (a *Analyzer) PredictMarket(ctx context.Context, symbol string) (*model.StockPrediction, error) {
	symbol = model.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, inputError("enter a ticker symbol")
	}

	var prediction *model.StockPrediction
	err := a.call(ctx, model.KindMarket, symbol, a.marketClient, func(ctx context.Context) error {
		resp, err := a.marketClient.PredictMarket(ctx, symbol)
		if err != nil {
			return classify(err)
		}
		prediction, err = decodePrediction(resp, symbol)
		return err
	})
	if err != nil {
		return nil, err
	}
	return prediction, nil
}

// call runs one backend round trip with the limiter, timeout, span, log line
// and ledger record around it. fn must return an *Error on failure.
func (a *Analyzer) call(ctx context.Context, kind model.CallKind, subject string, client llm.Client, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ctx, span := trace.StartSpan(ctx, "analyzer."+string(kind),
		attribute.String("ai.provider", client.ProviderName()),
		attribute.String("ai.model", client.ModelName()),
		attribute.String("ai.subject", subject),
	)
	defer span.End()

	// Blocks until a token is available or the deadline hits.
	if err := a.limiter.Wait(ctx); err != nil {
		return transportError(err, "too many analysis requests right now, try again shortly")
	}

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Milliseconds()

	a.record(kind, subject, client, err, duration)

	fields := []zap.Field{
		zap.String("kind", string(kind)),
		zap.String("subject", subject),
		zap.String("provider", client.ProviderName()),
		zap.Int64("duration_ms", duration),
	}
	if err != nil {
		span.RecordError(err)
		var aerr *Error
		if errors.As(err, &aerr) {
			fields = append(fields, zap.String("error_kind", string(aerr.Kind)), zap.NamedError("cause", aerr.Err))
		}
		a.logger.Warn("analysis call failed", append(fields, zap.String("message", err.Error()))...)
		return err
	}

	a.logger.Info("analysis call succeeded", fields...)
	return nil
}

// record writes the ledger row. It uses a fresh context so a timed-out or
// cancelled request still gets recorded.
func (a *Analyzer) record(kind model.CallKind, subject string, client llm.Client, callErr error, durationMs int64) {
	if a.calls == nil {
		return
	}

	call := &model.AnalysisCall{
		Kind:       kind,
		Subject:    subject,
		Provider:   client.ProviderName(),
		Model:      client.ModelName(),
		Success:    callErr == nil,
		DurationMs: &durationMs,
	}
	var aerr *Error
	if errors.As(callErr, &aerr) {
		k := string(aerr.Kind)
		call.ErrorKind = &k
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.calls.Create(ctx, call); err != nil {
		a.logger.Error("recording analysis call", zap.Error(err))
	}
}

// classify maps a backend error onto the adapter's error taxonomy.
func classify(err error) *Error {
	switch {
	case errors.Is(err, llm.ErrEmptyResponse):
		return schemaError(err, "the AI service returned an empty response")
	case errors.Is(err, llm.ErrUnsupported):
		return &Error{Kind: KindInvalidInput, Message: "this document type is not supported by the configured AI provider", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return transportError(err, "the AI service did not respond in time")
	case errors.Is(err, context.Canceled):
		return transportError(err, "the request was cancelled")
	default:
		return transportError(err, "the AI service request failed: %v", err)
	}
}

func decodeDocument(payload json.RawMessage) (*model.DocumentAnalysis, error) {
	if len(payload) == 0 {
		return nil, schemaError(llm.ErrEmptyResponse, "the AI service returned an empty response")
	}
	var d model.DocumentAnalysis
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, schemaError(err, "the AI service returned a response that could not be read")
	}
	if err := d.Validate(); err != nil {
		return nil, schemaError(err, "the AI response did not match the expected format: %v", err)
	}
	return &d, nil
}

// decodePrediction merges grounding citations (first) with any sources the
// model listed itself, de-duplicated by URI.
func decodePrediction(resp *llm.Response, symbol string) (*model.StockPrediction, error) {
	if len(resp.Payload) == 0 {
		return nil, schemaError(llm.ErrEmptyResponse, "the AI service returned an empty response")
	}
	var p model.StockPrediction
	if err := json.Unmarshal(resp.Payload, &p); err != nil {
		return nil, schemaError(err, "the AI service returned a response that could not be read")
	}

	p.Symbol = model.NormalizeSymbol(p.Symbol)
	if p.Symbol == "" {
		p.Symbol = symbol
	}
	p.Sources = model.MergeSources(resp.Sources, p.Sources...)

	if err := p.Validate(); err != nil {
		return nil, schemaError(err, "the AI response did not match the expected format: %v", err)
	}
	return &p, nil
}
