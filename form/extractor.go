package form

import (
	"context"
	"log/slog"

	"github.com/tbxark/formbot/types"
)

// Extractor maps the current turn to candidate events for a slot.
type Extractor interface {
	Extract(ctx context.Context, slot string, strategies []Strategy, tracker *types.Tracker) ([]types.Event, error)
}

// MappingExtractor evaluates strategies in order against the latest message
// and stops at the first match.
type MappingExtractor struct{}

func (MappingExtractor) Extract(ctx context.Context, slot string, strategies []Strategy, tracker *types.Tracker) ([]types.Event, error) {
	for i, s := range strategies {
		value, ok := s.Match(tracker.LatestMessage)
		if !ok {
			continue
		}
		slog.Debug("Extracted slot", "slot", slot, "strategy", i, "value", value)
		return []types.Event{types.SlotSet(slot, value)}, nil
	}
	return nil, nil
}

var _ Extractor = MappingExtractor{}
