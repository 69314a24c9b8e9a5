package viewstate

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
)

// Adapter is what the controller needs from the request adapter.
// service.Analyzer satisfies it.
type Adapter interface {
	AnalyzeDocument(ctx context.Context, fileName string, payload []byte, mimeType string) (*model.DocumentAnalysis, error)
	PredictMarket(ctx context.Context, symbol string) (*model.StockPrediction, error)
}

// Controller owns one State. The mutex guards transitions only; it is never
// held across the outbound call, so State() keeps answering (with
// isAnalyzing=true) while a submission is in flight.
type Controller struct {
	mu      sync.Mutex
	state   State
	adapter Adapter
	logger  *zap.Logger
}

// NewController starts idle in the given mode.
func NewController(adapter Adapter, mode Mode, logger *zap.Logger) *Controller {
	return &Controller{
		state:   Initial(mode),
		adapter: adapter,
		logger:  logger,
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// dispatch applies one event atomically. A rejected event leaves the state
// as it was and returns the reason.
func (c *Controller) dispatch(e Event) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := Allowed(c.state, e); err != nil {
		return c.state, err
	}
	c.state = Reduce(c.state, e)
	return c.state, nil
}

// SubmitDocument runs the document pipeline in sequence: enter Submitting,
// read the upload to bytes, call the adapter, then resolve. A failure in
// either suspending step ends in the Failed phase with a display message.
func (c *Controller) SubmitDocument(ctx context.Context, fileName string, r io.Reader, mimeType string) (State, error) {
	if s, err := c.dispatch(SubmitDocument{FileName: fileName}); err != nil {
		return s, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		c.logger.Warn("reading uploaded document", zap.String("file", fileName), zap.Error(err))
		return c.resolve(Failed{Message: fmt.Sprintf("could not read %s: %v", fileName, err)})
	}

	analysis, err := c.adapter.AnalyzeDocument(ctx, fileName, data, mimeType)
	if err != nil {
		return c.resolve(Failed{Message: err.Error()})
	}
	if analysis == nil {
		return c.resolve(Failed{Message: emptyResultMessage})
	}
	return c.resolve(Resolved{Result: DocumentResult{Analysis: analysis}})
}

// emptyResultMessage is shown when an adapter reports success without a value.
const emptyResultMessage = "the AI service returned an empty response"

// SubmitTicker runs the market pipeline. A blank symbol is rejected with
// ErrInvalidInput and the state stays Idle.
func (c *Controller) SubmitTicker(ctx context.Context, symbol string) (State, error) {
	if s, err := c.dispatch(SubmitTicker{Symbol: symbol}); err != nil {
		return s, err
	}

	prediction, err := c.adapter.PredictMarket(ctx, symbol)
	if err != nil {
		return c.resolve(Failed{Message: err.Error()})
	}
	if prediction == nil {
		return c.resolve(Failed{Message: emptyResultMessage})
	}
	return c.resolve(Resolved{Result: StockResult{Prediction: prediction}})
}

// Reset clears the result, error and file name. Mode is kept.
func (c *Controller) Reset() (State, error) {
	return c.dispatch(Reset{})
}

// SwitchMode resets and then sets the mode.
func (c *Controller) SwitchMode(mode Mode) (State, error) {
	return c.dispatch(SwitchMode{Mode: mode})
}

// resolve applies an adapter outcome. Only Submitting accepts it, and the
// controller is the only one that issued the submit, so a rejection here
// means a bug rather than a user error.
func (c *Controller) resolve(e Event) (State, error) {
	s, err := c.dispatch(e)
	if err != nil {
		c.logger.Error("resolving submission", zap.Error(err))
	}
	return s, nil
}
