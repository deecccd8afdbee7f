package form

import (
	"strconv"
	"strings"

	"github.com/tbxark/formbot/types"
)

// Outcome is the result of validating one candidate value. A null Value
// means the slot has to be requested again; Template, when set, is the
// message explaining why.
type Outcome struct {
	Value    types.Value
	Template string
}

// Validator checks a candidate value for one slot. Implementations are pure.
// The set is closed: Categorical, PositiveInt, TriStateBool and Passthrough.
type Validator interface {
	Validate(value types.Value) Outcome
	validator()
}

// Categorical accepts values found in Reference, ignoring case, and
// normalises them to the reference spelling.
type Categorical struct {
	Reference []string
	Template  string
}

type PositiveInt struct {
	Template string
}

// TriStateBool maps text cues to booleans. Text without a cue is kept as is.
type TriStateBool struct{}

type Passthrough struct{}

func (Categorical) validator()  {}
func (PositiveInt) validator()  {}
func (TriStateBool) validator() {}
func (Passthrough) validator()  {}

func (c Categorical) Validate(value types.Value) Outcome {
	candidate := strings.ToLower(value.Text())
	for _, ref := range c.Reference {
		if strings.ToLower(ref) == candidate && !value.IsNull() {
			return Outcome{Value: types.String(ref)}
		}
	}
	return Outcome{Value: types.Null(), Template: c.Template}
}

func (p PositiveInt) Validate(value types.Value) Outcome {
	s, ok := value.Str()
	if !ok {
		return Outcome{Value: types.Null(), Template: p.Template}
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return Outcome{Value: types.Null(), Template: p.Template}
	}
	return Outcome{Value: value}
}

func (TriStateBool) Validate(value types.Value) Outcome {
	if _, ok := value.Boolean(); ok {
		return Outcome{Value: value}
	}
	s, ok := value.Str()
	if !ok {
		return Outcome{Value: value}
	}
	switch {
	case strings.Contains(s, "out"):
		return Outcome{Value: types.Bool(true)}
	case strings.Contains(s, "in"):
		return Outcome{Value: types.Bool(false)}
	default:
		return Outcome{Value: value}
	}
}

func (Passthrough) Validate(value types.Value) Outcome {
	return Outcome{Value: value}
}
