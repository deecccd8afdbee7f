package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/tbxark/formbot/responder"
	"github.com/tbxark/formbot/types"
)

var (
	ErrExtractionFailure = errors.New("failed to extract requested slot")
	ErrIncomplete        = errors.New("required slots are not filled")
)

// ExtractionFailure rejects a turn in which nothing could be extracted for
// the requested slot. The host is expected to re-prompt.
type ExtractionFailure struct {
	Form string
	Slot string
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("failed to validate slot %s with action %s", e.Slot, e.Form)
}

func (e *ExtractionFailure) Unwrap() error {
	return ErrExtractionFailure
}

// Form collects a fixed set of slots across turns.
type Form interface {
	Name() string
	RequiredSlots() []string
	SlotMapping() map[string][]Strategy
	Fields() []types.FieldInfo
	JsonSchema() (string, error)

	Extract(ctx context.Context, slot string, tracker *types.Tracker) ([]types.Event, error)
	Validate(ctx context.Context, slot string, events []types.Event, tracker *types.Tracker, r responder.Responder) ([]types.Event, error)
	Submit(ctx context.Context, tracker *types.Tracker, r responder.Responder) ([]types.Event, error)
}

// Manager receives the outcome of a form.
type Manager interface {
	Cancel(ctx context.Context, tracker *types.Tracker) error
	Submit(ctx context.Context, tracker *types.Tracker) error
}

// Missing lists the required slots of f that are still null.
func Missing(f Form, tracker *types.Tracker) []types.FieldInfo {
	var missing []types.FieldInfo
	for _, field := range f.Fields() {
		if tracker.Slot(field.Slot).IsNull() {
			missing = append(missing, field)
		}
	}
	return missing
}
