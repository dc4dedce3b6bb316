package types

import "time"

// Intent is the coarse routing category detected from user input.
type Intent string

const (
	IntentUnknown   Intent = "unknown"
	IntentSupport   Intent = "seeking_support"
	IntentSolutions Intent = "seeking_solutions"
	IntentOther     Intent = "other"
)

func (i Intent) String() string {
	return string(i)
}

// Known reports whether the intent can be used as a routing key.
func (i Intent) Known() bool {
	switch i {
	case IntentSupport, IntentSolutions, IntentOther:
		return true
	default:
		return false
	}
}

// TurnError records a recovered failure from one stage of a turn. Errors are
// accumulated on the conversation state and never dropped.
type TurnError struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func NewTurnError(stage string, err error) TurnError {
	return TurnError{
		Stage:   stage,
		Message: err.Error(),
		At:      time.Now(),
	}
}
