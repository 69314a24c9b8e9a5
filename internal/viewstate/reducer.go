package viewstate

import (
	"errors"
	"strings"
)

// Event is anything that can move the state machine.
type Event interface {
	isEvent()
}

// User events.
type (
	SubmitDocument struct{ FileName string }
	SubmitTicker   struct{ Symbol string }
	Reset          struct{}
	SwitchMode     struct{ Mode Mode }
)

// Adapter resolution events.
type (
	Resolved struct{ Result Result }
	Failed   struct{ Message string }
)

func (SubmitDocument) isEvent() {}
func (SubmitTicker) isEvent()   {}
func (Reset) isEvent()          {}
func (SwitchMode) isEvent()     {}
func (Resolved) isEvent()       {}
func (Failed) isEvent()         {}

// Reasons an event is not accepted in the current state.
var (
	ErrBusy         = errors.New("an analysis is already running")
	ErrNotAllowed   = errors.New("reset or switch mode before submitting again")
	ErrWrongMode    = errors.New("this input is not available in the current mode")
	ErrInvalidInput = errors.New("enter a ticker symbol")
	ErrNotPending   = errors.New("no analysis is running")
	ErrNoResult     = errors.New("no result to display")
	ErrUnknownEvent = errors.New("unknown event")
)

// Allowed reports why e would leave s unchanged, or nil if e applies.
func Allowed(s State, e Event) error {
	phase := s.Phase()

	switch ev := e.(type) {
	case SubmitDocument:
		if err := canSubmit(phase); err != nil {
			return err
		}
		if s.Mode != ModeDoc {
			return ErrWrongMode
		}
		return nil
	case SubmitTicker:
		if err := canSubmit(phase); err != nil {
			return err
		}
		if s.Mode != ModeStock {
			return ErrWrongMode
		}
		if strings.TrimSpace(ev.Symbol) == "" {
			return ErrInvalidInput
		}
		return nil
	case Reset:
		if phase == PhaseSubmitting {
			return ErrBusy
		}
		return nil
	case SwitchMode:
		if phase == PhaseSubmitting {
			return ErrBusy
		}
		if _, err := ParseMode(string(ev.Mode)); err != nil {
			return err
		}
		return nil
	case Resolved:
		if phase != PhaseSubmitting {
			return ErrNotPending
		}
		switch r := ev.Result.(type) {
		case DocumentResult:
			if r.Analysis == nil {
				return ErrNoResult
			}
		case StockResult:
			if r.Prediction == nil {
				return ErrNoResult
			}
		default:
			return ErrNoResult
		}
		return nil
	case Failed:
		if phase != PhaseSubmitting {
			return ErrNotPending
		}
		return nil
	default:
		return ErrUnknownEvent
	}
}

func canSubmit(p Phase) error {
	switch p {
	case PhaseIdle, PhaseFailed:
		return nil
	case PhaseSubmitting:
		return ErrBusy
	default:
		return ErrNotAllowed
	}
}

// Reduce applies e to s. Events that are not allowed return s unchanged.
func Reduce(s State, e Event) State {
	if Allowed(s, e) != nil {
		return s
	}

	switch ev := e.(type) {
	case SubmitDocument:
		s.Analyzing = true
		s.FileName = ev.FileName
		s.Error = ""
	case SubmitTicker:
		s.Analyzing = true
		s.Error = ""
	case Resolved:
		s.Analyzing = false
		s.Result = ev.Result
		s.Error = ""
	case Failed:
		s.Analyzing = false
		s.Result = nil
		s.Error = ev.Message
		if s.Error == "" {
			s.Error = "the analysis failed"
		}
	case Reset:
		s = Initial(s.Mode)
	case SwitchMode:
		mode, _ := ParseMode(string(ev.Mode))
		s = Initial(mode)
	}
	return s
}
