// Package viewstate holds the finite state machine that sequences one
// client's view: idle, submitting, displaying a result, or showing an error.
//
// Reduce is a pure function (State, Event) -> State, so every transition can
// be tested without a server or an AI backend. Controller owns one State and
// runs the submit pipeline against the request adapter.
package viewstate

import (
	"fmt"
	"strings"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
)

// Mode selects which input the view offers. It is orthogonal to Phase and
// survives Reset.
type Mode string

const (
	ModeDoc   Mode = "doc"
	ModeStock Mode = "stock"
)

// ParseMode accepts "doc"/"stock" in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDoc, ModeStock:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q: must be doc or stock", s)
	}
}

// Phase is derived from State, never stored.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseDisplaying Phase = "displaying"
	PhaseFailed     Phase = "failed"
)

// Result is a tagged variant: nil, DocumentResult or StockResult. Holding
// one field instead of two nullable ones means a document result and a stock
// result can never be on screen together.
type Result interface {
	isResult()
}

type DocumentResult struct {
	Analysis *model.DocumentAnalysis
}

type StockResult struct {
	Prediction *model.StockPrediction
}

func (DocumentResult) isResult() {}
func (StockResult) isResult()    {}

// State is the whole view of one client. The zero value is not valid;
// start from Initial.
type State struct {
	Mode      Mode
	Analyzing bool
	Result    Result
	Error     string
	FileName  string
}

// Initial returns the idle state for the given mode (doc when empty).
func Initial(mode Mode) State {
	if mode == "" {
		mode = ModeDoc
	}
	return State{Mode: mode}
}

// Phase derives the current phase.
func (s State) Phase() Phase {
	switch {
	case s.Analyzing:
		return PhaseSubmitting
	case s.Result != nil:
		return PhaseDisplaying
	case s.Error != "":
		return PhaseFailed
	default:
		return PhaseIdle
	}
}

// View is the flat JSON shape clients render. Absent values encode as null.
type View struct {
	Phase       Phase                   `json:"phase"`
	IsAnalyzing bool                    `json:"isAnalyzing"`
	Result      *model.DocumentAnalysis `json:"result"`
	StockResult *model.StockPrediction  `json:"stockResult"`
	Error       *string                 `json:"error"`
	FileName    *string                 `json:"fileName"`
	ActiveMode  Mode                    `json:"activeMode"`
}

func (s State) View() View {
	v := View{
		Phase:       s.Phase(),
		IsAnalyzing: s.Analyzing,
		ActiveMode:  s.Mode,
	}
	switch r := s.Result.(type) {
	case DocumentResult:
		v.Result = r.Analysis
	case StockResult:
		v.StockResult = r.Prediction
	}
	if s.Error != "" {
		msg := s.Error
		v.Error = &msg
	}
	if s.FileName != "" {
		name := s.FileName
		v.FileName = &name
	}
	return v
}
