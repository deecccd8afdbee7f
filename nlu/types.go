package nlu

import (
	"context"

	"github.com/tbxark/formbot/types"
)

const (
	IntentGreet   = "greet"
	IntentRequest = "request_restaurant"
	IntentInform  = "inform"
	IntentAffirm  = "affirm"
	IntentDeny    = "deny"
	IntentStop    = "stop"
)

// Interpreter turns the text of a user turn into an intent and entities.
type Interpreter interface {
	Parse(ctx context.Context, req *types.TurnRequest) (types.Message, error)
}
