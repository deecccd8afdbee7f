package patch

import (
	"github.com/tbxark/formbot/types"
)

// PrefillOperations returns add operations for the non-null initial values
// of the given slots, in slot order. Slots not listed are ignored.
func PrefillOperations(initial map[string]types.Value, slots []string) []Operation {
	ops := make([]Operation, 0, len(initial))
	for _, name := range slots {
		value, ok := initial[name]
		if !ok || value.IsNull() {
			continue
		}
		ops = append(ops, Operation{Op: OperationAdd, Path: SlotPath(name), Value: value})
	}
	return ops
}

// Prefill writes initial values into slots that are still unset.
func Prefill(slots, initial map[string]types.Value, required []string) (map[string]types.Value, error) {
	if slots == nil {
		slots = map[string]types.Value{}
	}
	pending := make(map[string]types.Value, len(initial))
	for name, value := range initial {
		if slots[name].IsNull() {
			pending[name] = value
		}
	}
	return applySlots(slots, PrefillOperations(pending, required))
}
