package form

import (
	"slices"

	"github.com/tbxark/formbot/types"
)

// Strategy is one way of filling a slot from the latest user message.
// The set of strategies is closed: FromEntity, FromIntent and FromText.
type Strategy interface {
	Match(msg types.Message) (types.Value, bool)
	strategy()
}

// FromEntity takes the first entity of type Entity. When Intents is not
// empty the latest intent must be one of them.
type FromEntity struct {
	Entity  string
	Intents []string
}

// FromIntent sets a fixed value when the latest intent is Intent.
type FromIntent struct {
	Intent string
	Value  types.Value
}

// FromText takes the whole user text, optionally restricted to Intents.
type FromText struct {
	Intents []string
}

func (FromEntity) strategy() {}
func (FromIntent) strategy() {}
func (FromText) strategy()   {}

func (s FromEntity) Match(msg types.Message) (types.Value, bool) {
	if !intentAllowed(s.Intents, msg.Intent) {
		return types.Null(), false
	}
	value, ok := msg.FirstEntity(s.Entity)
	if !ok {
		return types.Null(), false
	}
	return types.String(value), true
}

func (s FromIntent) Match(msg types.Message) (types.Value, bool) {
	if msg.Intent == "" || msg.Intent != s.Intent {
		return types.Null(), false
	}
	return s.Value, true
}

func (s FromText) Match(msg types.Message) (types.Value, bool) {
	if !intentAllowed(s.Intents, msg.Intent) || msg.Text == "" {
		return types.Null(), false
	}
	return types.String(msg.Text), true
}

func intentAllowed(allowed []string, intent string) bool {
	return len(allowed) == 0 || slices.Contains(allowed, intent)
}

func Entity(entity string, intents ...string) Strategy {
	return FromEntity{Entity: entity, Intents: intents}
}

func Intent(intent string, value types.Value) Strategy {
	return FromIntent{Intent: intent, Value: value}
}

func Text(intents ...string) Strategy {
	return FromText{Intents: intents}
}
