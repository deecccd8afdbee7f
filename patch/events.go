package patch

import (
	"fmt"
	"strings"

	"github.com/tbxark/formbot/types"
)

// SlotPath is the JSON pointer of a slot inside the slot document.
func SlotPath(slot string) string {
	return "/" + escapeJSONPointer(slot)
}

func escapeJSONPointer(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// FromEvents converts slot-set events into replace operations. Other events
// are not slot mutations and are skipped.
func FromEvents(events []types.Event) []Operation {
	ops := make([]Operation, 0, len(events))
	for _, e := range events {
		if !e.IsSlot() {
			continue
		}
		ops = append(ops, Operation{Op: OperationReplace, Path: SlotPath(e.Name), Value: e.Value})
	}
	return ops
}

// AllowedSlots builds the allowed path set for the given slot names.
func AllowedSlots(slots []string) map[string]bool {
	allowed := make(map[string]bool, len(slots))
	for _, s := range slots {
		allowed[SlotPath(s)] = true
	}
	return allowed
}

// ApplyEvents applies the slot-set events to slots. Every slot named by an
// event must be one of required.
func ApplyEvents(slots map[string]types.Value, events []types.Event, required []string) (map[string]types.Value, error) {
	if slots == nil {
		slots = map[string]types.Value{}
	}
	ops := FromEvents(events)
	if err := CheckOperations(ops, AllowedSlots(required)); err != nil {
		return nil, fmt.Errorf("invalid slot events: %w", err)
	}
	return applySlots(slots, ops)
}
